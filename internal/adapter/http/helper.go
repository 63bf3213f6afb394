package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"smartloans/internal/domain/account"
	"smartloans/internal/domain/ledger"
	domainLoan "smartloans/internal/domain/loan"
	"smartloans/internal/domain/user"
	"smartloans/internal/usecase/auth"
	"smartloans/internal/usecase/loan"
	"smartloans/internal/usecase/transfer"
)

// statusFor maps domain errors to HTTP codes. Unknown errors are 500 so the
// recover middleware's contract stays simple: anything unmapped is a bug.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainLoan.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainLoan.ErrAlreadyProcessed),
		errors.Is(err, domainLoan.ErrActiveLoanExists),
		errors.Is(err, domainLoan.ErrInvalidState),
		errors.Is(err, account.ErrAlreadyExists),
		errors.Is(err, user.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domainLoan.ErrUnknownRate),
		errors.Is(err, domainLoan.ErrUnknownTerm),
		errors.Is(err, loan.ErrNonPositivePayment),
		errors.Is(err, loan.ErrExcessPayment),
		errors.Is(err, transfer.ErrNonPositiveAmount),
		errors.Is(err, transfer.ErrSameAccount),
		errors.Is(err, ledger.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrTransferRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(err error) (int, ErrorResponse) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	return code, ErrorResponse{Error: msg}
}

// ---- helpers ----

func parseUintParam(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
