package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smartloans/internal/adapter/middleware"
	"smartloans/internal/usecase/auth"
	"smartloans/internal/usecase/loan"
	"smartloans/internal/usecase/sweep"
)

// AdminHandler serves the back-office surface: user and loan administration
// plus the overdue sweep in both modes.
type AdminHandler struct {
	users *auth.Usecase
	loans *loan.Usecase
	sweep *sweep.Usecase
}

func NewAdminHandler(users *auth.Usecase, loans *loan.Usecase, sweep *sweep.Usecase) *AdminHandler {
	return &AdminHandler{users: users, loans: loans, sweep: sweep}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	dtos, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *AdminHandler) ListAccounts(c echo.Context) error {
	dtos, err := h.users.ListAccounts(c.Request().Context())
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *AdminHandler) ListLoans(c echo.Context) error {
	dtos, err := h.loans.List(c.Request().Context())
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dtos)
}

// ApproveLoan disburses the principal on the ledger, then marks the loan
// APPROVED once the transfer is confirmed.
func (h *AdminHandler) ApproveLoan(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	dto, err := h.loans.Approve(c.Request().Context(), p.UserID, loanID)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) RejectLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	dto, err := h.loans.Reject(c.Request().Context(), loanID)
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) DeleteLoan(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	if err := h.loans.Delete(c.Request().Context(), p.Address, loanID); err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing principal"})
	}
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}
	if err := h.users.DeleteUser(c.Request().Context(), userID, p.Address); err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.NoContent(http.StatusNoContent)
}

// OverdueReport lists overdue approved loans with the 10% penalty applied.
// It never mutates anything.
func (h *AdminHandler) OverdueReport(c echo.Context) error {
	report, err := h.sweep.Report(c.Request().Context())
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count": len(report),
		"loans": report,
	})
}

// CollectOverdue runs a forced-collection pass immediately.
func (h *AdminHandler) CollectOverdue(c echo.Context) error {
	result, err := h.sweep.Collect(c.Request().Context())
	if err != nil {
		code, body := jsonError(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, result)
}
