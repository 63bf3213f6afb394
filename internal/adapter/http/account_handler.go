package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"smartloans/internal/adapter/middleware"
	"smartloans/internal/usecase/auth"
	"smartloans/internal/usecase/transfer"
)

type AccountHandler struct {
	accounts  *auth.Usecase
	transfers *transfer.Usecase
}

func NewAccountHandler(accounts *auth.Usecase, transfers *transfer.Usecase) *AccountHandler {
	return &AccountHandler{accounts: accounts, transfers: transfers}
}

// OpenAccount creates the caller's account, seeding the balance from the
// ledger so the database mirror starts out authoritative.
func (h *AccountHandler) OpenAccount(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	dto, err := h.accounts.OpenAccount(c.Request().Context(), p)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	dto, err := h.accounts.GetAccount(c.Request().Context(), p.UserID)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}

// RefreshBalance re-reads the caller's ledger balance and persists it.
func (h *AccountHandler) RefreshBalance(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	acc, err := h.accounts.GetAccount(c.Request().Context(), p.UserID)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	balance, err := h.transfers.RefreshBalance(c.Request().Context(), acc.AccountID)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"account_id": acc.AccountID,
		"balance":    balance,
	})
}

type transferReq struct {
	ToAccountID uint64          `json:"to_account_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// Transfer moves value from the caller's account to another account. The
// ledger executes the movement; the database only mirrors the outcome.
func (h *AccountHandler) Transfer(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	acc, err := h.accounts.GetAccount(c.Request().Context(), p.UserID)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	dto, err := h.transfers.Transfer(c.Request().Context(), transfer.TransferInput{
		FromAccountID: acc.AccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
	})
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}
