package loanmock

import (
	"context"
	"time"

	domain "smartloans/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies loan.Repository.
// Fill in the function fields a test needs; unfilled getters return ErrNotFound.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetActiveByAccountIDFn func(ctx context.Context, accountID uint64) (*domain.Loan, error)
	FindOverdueFn          func(ctx context.Context, now time.Time) ([]domain.Loan, error)
	ListFn                 func(ctx context.Context) ([]domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	DeleteFn               func(ctx context.Context, id uint64, deletedBy string) error

	// Saved records every Save for assertion convenience.
	Saved []domain.Loan
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetActiveByAccountID(ctx context.Context, accountID uint64) (*domain.Loan, error) {
	if m.GetActiveByAccountIDFn != nil {
		return m.GetActiveByAccountIDFn(ctx, accountID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) FindOverdue(ctx context.Context, now time.Time) ([]domain.Loan, error) {
	if m.FindOverdueFn != nil {
		return m.FindOverdueFn(ctx, now)
	}
	return nil, nil
}

func (m *Repo) List(ctx context.Context) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	m.Saved = append(m.Saved, *l)
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64, deletedBy string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, deletedBy)
	}
	return nil
}
