package accountmock

import (
	"context"

	domain "smartloans/internal/domain/account"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies account.Repository.
type Repo struct {
	CreateFn  func(ctx context.Context, a *domain.Account) error
	GetByIDFn func(ctx context.Context, id uint64) (*domain.Account, error)
	// GetByIDForUpdateFn falls back to GetByIDFn when nil.
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Account, error)
	GetByUserIDFn      func(ctx context.Context, userID uint64) (*domain.Account, error)
	SaveFn             func(ctx context.Context, a *domain.Account) error
	ListFn             func(ctx context.Context) ([]domain.Account, error)
	DeleteFn           func(ctx context.Context, id uint64) error

	// Saved records every Save for assertion convenience.
	Saved []domain.Account
}

func (m *Repo) Create(ctx context.Context, a *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Account, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *Repo) GetByUserID(ctx context.Context, userID uint64) (*domain.Account, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, a *domain.Account) error {
	m.Saved = append(m.Saved, *a)
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) List(ctx context.Context) ([]domain.Account, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
