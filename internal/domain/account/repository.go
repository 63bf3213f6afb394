package account

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uint64) (*Account, error)
	// GetByIDForUpdate takes a row lock; call it inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Account, error)
	GetByUserID(ctx context.Context, userID uint64) (*Account, error)
	Save(ctx context.Context, a *Account) error
	List(ctx context.Context) ([]Account, error)
	Delete(ctx context.Context, id uint64) error
}
