package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPaid     Status = "paid"
)

var (
	ErrNotFound         = errors.New("loan not found")
	ErrInvalidState     = errors.New("loan is not in the required status")
	ErrAlreadyProcessed = errors.New("loan already processed")
	ErrActiveLoanExists = errors.New("borrower already has an active loan")
	ErrUnknownRate      = errors.New("interest rate outside the allowed set")
	ErrUnknownTerm      = errors.New("term outside the allowed set")
	ErrUnknownStatus    = errors.New("unknown loan status")
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool { return s == StatusRejected || s == StatusPaid }

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusPaid:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// Rate is an interest rate in percent, drawn from a closed set.
type Rate struct{ d decimal.Decimal }

var allowedRates = []decimal.Decimal{
	decimal.RequireFromString("1"),
	decimal.RequireFromString("1.5"),
	decimal.RequireFromString("2"),
	decimal.RequireFromString("2.5"),
	decimal.RequireFromString("3"),
}

func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, ErrUnknownRate
	}
	for _, a := range allowedRates {
		if d.Equal(a) {
			return Rate{d: a}, nil
		}
	}
	return Rate{}, ErrUnknownRate
}

func (r Rate) Decimal() decimal.Decimal { return r.d }
func (r Rate) String() string           { return r.d.String() }

// Multiplier returns 1 + rate/100, the factor applied to principal.
func (r Rate) Multiplier() decimal.Decimal {
	return decimal.NewFromInt(1).Add(r.d.Div(decimal.NewFromInt(100)))
}

// Term is a loan duration counted in platform periods (closed set 1..5).
// The length of one period is deployment configuration, not a loan field.
type Term int

func ParseTerm(n int) (Term, error) {
	if n < 1 || n > 5 {
		return 0, ErrUnknownTerm
	}
	return Term(n), nil
}

func (t Term) Periods() int { return int(t) }

type Loan struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID    string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	AccountID uint64          `gorm:"index:idx_loans_account_active" json:"account_id"`
	Principal decimal.Decimal `gorm:"type:decimal(38,18)" json:"principal"`
	// Rate is the percent value; writes must come through ParseRate.
	Rate decimal.Decimal `gorm:"type:decimal(6,4)" json:"rate"`
	Term int             `gorm:"column:term_periods" json:"term"`
	// RemainingBalance = principal × (1 + rate/100) at creation, monotonically
	// non-increasing afterwards, clamped at zero.
	RemainingBalance decimal.Decimal `gorm:"type:decimal(38,18)" json:"remaining_balance"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `gorm:"index:idx_loans_end_date" json:"end_date"`
	Status           Status          `gorm:"type:enum('pending','approved','rejected','paid');default:'pending'" json:"status"`
	StateUpdatedAt   time.Time       `gorm:"autoCreateTime" json:"state_updated_at"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
	DeletedBy        string          `gorm:"size:42" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Installment is the per-period payment implied by the current remaining
// balance. Display only; repayments may be any amount up to the remainder.
func (l *Loan) Installment() decimal.Decimal {
	if l.Term <= 0 {
		return decimal.Zero
	}
	return l.RemainingBalance.Div(decimal.NewFromInt(int64(l.Term)))
}

// Overdue reports whether the loan is approved and past its end date.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Status == StatusApproved && l.EndDate.Before(now)
}
