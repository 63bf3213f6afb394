package sweep

import (
	"time"

	"github.com/shopspring/decimal"
)

type OverdueLoan struct {
	LoanID           string          `json:"loan_id"`
	AccountID        uint64          `json:"account_id"`
	UserID           uint64          `json:"user_id"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Penalty          decimal.Decimal `json:"penalty"`
	TotalDue         decimal.Decimal `json:"total_due"`
	EndDate          time.Time       `json:"end_date"`
	Status           string          `json:"status"`
}

type CollectedLoan struct {
	LoanID         string          `json:"loan_id"`
	AccountID      uint64          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	ConfirmationID string          `json:"confirmation_id"`
}

type SkippedLoan struct {
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

type CollectResult struct {
	Collected []CollectedLoan `json:"collected"`
	Skipped   []SkippedLoan   `json:"skipped"`
}
