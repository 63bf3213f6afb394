package transfer

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
)

type TransferInput struct {
	FromAccountID uint64          `json:"from_account_id"`
	ToAccountID   uint64          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type TransferDTO struct {
	ConfirmationID string          `json:"confirmation_id"`
	FromAccountID  uint64          `json:"from_account_id"`
	ToAccountID    uint64          `json:"to_account_id"`
	Amount         decimal.Decimal `json:"amount"`
	FromBalance    decimal.Decimal `json:"from_balance"`
	ToBalance      decimal.Decimal `json:"to_balance"`
}
