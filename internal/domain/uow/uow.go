package uow

import (
	"context"

	"smartloans/internal/domain/account"
	"smartloans/internal/domain/approval"
	"smartloans/internal/domain/loan"
	"smartloans/internal/domain/user"
)

type Repos struct {
	Users     user.Repository
	Accounts  account.Repository
	Loans     loan.Repository
	Approvals approval.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
