package transfer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"smartloans/internal/domain/account"
	"smartloans/internal/domain/ledger"
	"smartloans/internal/domain/uow"
	"smartloans/internal/domain/user"
)

// Usecase moves value between two accounts through the external ledger and
// reconciles both cached balances from post-transfer ledger truth.
type Usecase struct {
	users    user.Repository
	accounts account.Repository
	uow      uow.UnitOfWork
	ledger   ledger.Client
}

func NewUsecase(users user.Repository, accounts account.Repository, tx uow.UnitOfWork, lc ledger.Client) *Usecase {
	return &Usecase{users: users, accounts: accounts, uow: tx, ledger: lc}
}

// Transfer submits from→to for amount and, once the ledger confirms, persists
// both refreshed balances in one transaction. The cached-balance precondition
// is advisory: a stale cache can let an under-funded transfer through, which
// the ledger then rejects. No local row changes happen on any ledger failure.
func (u *Usecase) Transfer(ctx context.Context, in TransferInput) (*TransferDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if in.FromAccountID == in.ToAccountID {
		return nil, ErrSameAccount
	}

	from, err := u.accounts.GetByID(ctx, in.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := u.accounts.GetByID(ctx, in.ToAccountID)
	if err != nil {
		return nil, err
	}
	if in.Amount.GreaterThan(from.Balance) {
		return nil, account.ErrInsufficientFunds
	}

	fromUser, err := u.users.GetByID(ctx, from.UserID)
	if err != nil {
		return nil, err
	}
	toUser, err := u.users.GetByID(ctx, to.UserID)
	if err != nil {
		return nil, err
	}

	// The confirmation wait is the one slow, blocking step; it must stay
	// outside any database transaction.
	confirmation, err := u.ledger.Transfer(ctx, fromUser.Address, toUser.Address, in.Amount)
	if err != nil {
		return nil, fmt.Errorf("ledger transfer: %w", err)
	}

	// Reconcile from the ledger, never by local arithmetic: on-chain fees,
	// rounding, or concurrent external activity would make deltas drift.
	fromBal, err := u.ledger.BalanceOf(ctx, fromUser.Address)
	if err != nil {
		return nil, fmt.Errorf("refresh sender balance: %w", err)
	}
	toBal, err := u.ledger.BalanceOf(ctx, toUser.Address)
	if err != nil {
		return nil, fmt.Errorf("refresh receiver balance: %w", err)
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		from.Balance = fromBal
		if err := r.Accounts.Save(ctx, from); err != nil {
			return err
		}
		to.Balance = toBal
		return r.Accounts.Save(ctx, to)
	})
	if err != nil {
		return nil, err
	}

	return &TransferDTO{
		ConfirmationID: confirmation,
		FromAccountID:  from.ID,
		ToAccountID:    to.ID,
		Amount:         in.Amount,
		FromBalance:    fromBal,
		ToBalance:      toBal,
	}, nil
}

// RefreshBalance re-reads one account's ledger balance and persists it.
func (u *Usecase) RefreshBalance(ctx context.Context, accountID uint64) (decimal.Decimal, error) {
	acc, err := u.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	owner, err := u.users.GetByID(ctx, acc.UserID)
	if err != nil {
		return decimal.Zero, err
	}
	bal, err := u.ledger.BalanceOf(ctx, owner.Address)
	if err != nil {
		return decimal.Zero, err
	}
	acc.Balance = bal
	if err := u.accounts.Save(ctx, acc); err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}
