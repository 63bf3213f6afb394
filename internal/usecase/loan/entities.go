package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePayment = errors.New("payment must be positive")
	ErrExcessPayment      = errors.New("payment exceeds remaining balance")
)

type RequestLoanInput struct {
	Principal decimal.Decimal `json:"principal"`
	Rate      string          `json:"rate"`
	Term      int             `json:"term"`
}

type LoanDTO struct {
	LoanID           string          `json:"loan_id"`
	AccountID        uint64          `json:"account_id"`
	Principal        decimal.Decimal `json:"principal"`
	Rate             string          `json:"rate"`
	Term             int             `json:"term"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Installment      decimal.Decimal `json:"installment"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ApproveDTO struct {
	Loan            LoanDTO         `json:"loan"`
	ApprovalID      string          `json:"approval_id"`
	ConfirmationID  string          `json:"confirmation_id"`
	AdminBalance    decimal.Decimal `json:"admin_balance"`
	BorrowerBalance decimal.Decimal `json:"borrower_balance"`
}

type RepayDTO struct {
	Loan            LoanDTO         `json:"loan"`
	ConfirmationID  string          `json:"confirmation_id"`
	Paid            bool            `json:"paid"`
	BorrowerBalance decimal.Decimal `json:"borrower_balance"`
}
