package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// GetActiveByAccountID returns the account's non-terminal loan, if any.
	GetActiveByAccountID(ctx context.Context, accountID uint64) (*Loan, error)
	// FindOverdue lists approved loans whose end date has passed.
	FindOverdue(ctx context.Context, now time.Time) ([]Loan, error)
	List(ctx context.Context) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, id uint64, deletedBy string) error
}
