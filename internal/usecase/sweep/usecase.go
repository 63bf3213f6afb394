package sweep

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	domainAccount "smartloans/internal/domain/account"
	"smartloans/internal/domain/ledger"
	domainLoan "smartloans/internal/domain/loan"
	"smartloans/internal/domain/uow"
	domainUser "smartloans/internal/domain/user"
	"smartloans/internal/usecase/transfer"
)

var penaltyRate = decimal.RequireFromString("0.10")

// TransferEngine is the slice of the transfer usecase the sweep needs.
type TransferEngine interface {
	Transfer(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error)
}

// Usecase scans approved loans past their end date. Report lists them with
// the 10% penalty applied; Collect forcibly moves penalty + outstanding
// balance (clamped to whatever the borrower actually holds) to the admin
// account, one loan at a time.
type Usecase struct {
	loans    domainLoan.Repository
	accounts domainAccount.Repository
	users    domainUser.Repository
	uow      uow.UnitOfWork
	engine   TransferEngine
	ledger   ledger.Client

	adminUserID uint64
	now         func() time.Time
}

func NewUsecase(loans domainLoan.Repository, accounts domainAccount.Repository, users domainUser.Repository,
	tx uow.UnitOfWork, engine TransferEngine, lc ledger.Client, adminUserID uint64) *Usecase {
	return &Usecase{
		loans:       loans,
		accounts:    accounts,
		users:       users,
		uow:         tx,
		engine:      engine,
		ledger:      lc,
		adminUserID: adminUserID,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func penalty(remaining decimal.Decimal) decimal.Decimal { return remaining.Mul(penaltyRate) }

// Report lists overdue loans without mutating anything.
func (u *Usecase) Report(ctx context.Context) ([]OverdueLoan, error) {
	overdue, err := u.loans.FindOverdue(ctx, u.now())
	if err != nil {
		return nil, err
	}
	out := make([]OverdueLoan, 0, len(overdue))
	for i := range overdue {
		l := &overdue[i]
		p := penalty(l.RemainingBalance)
		entry := OverdueLoan{
			LoanID:           l.LoanID,
			AccountID:        l.AccountID,
			RemainingBalance: l.RemainingBalance,
			Penalty:          p,
			TotalDue:         l.RemainingBalance.Add(p),
			EndDate:          l.EndDate,
			Status:           string(l.Status),
		}
		if acc, err := u.accounts.GetByID(ctx, l.AccountID); err == nil {
			entry.UserID = acc.UserID
		}
		out = append(out, entry)
	}
	return out, nil
}

// Collect runs the forced-collection pass. A failing loan is skipped and the
// batch continues; its state is never altered on failure.
func (u *Usecase) Collect(ctx context.Context) (*CollectResult, error) {
	overdue, err := u.loans.FindOverdue(ctx, u.now())
	if err != nil {
		return nil, err
	}

	res := &CollectResult{}
	for i := range overdue {
		l := &overdue[i]
		collected, err := u.collectOne(ctx, l)
		if err != nil {
			log.Printf("sweep: skip loan %s: %v", l.LoanID, err)
			res.Skipped = append(res.Skipped, SkippedLoan{LoanID: l.LoanID, Reason: err.Error()})
			continue
		}
		res.Collected = append(res.Collected, *collected)
	}
	return res, nil
}

func (u *Usecase) collectOne(ctx context.Context, l *domainLoan.Loan) (*CollectedLoan, error) {
	acc, err := u.accounts.GetByID(ctx, l.AccountID)
	if err != nil {
		return nil, err
	}
	owner, err := u.users.GetByID(ctx, acc.UserID)
	if err != nil {
		return nil, err
	}

	// Authoritative balance, not the cache: forced collection takes what is
	// actually there.
	available, err := u.ledger.BalanceOf(ctx, owner.Address)
	if err != nil {
		return nil, err
	}
	// Refresh the cache even when the ledger reports zero, so a broke
	// borrower's stale balance does not linger.
	if !available.Equal(acc.Balance) {
		acc.Balance = available
		if err := u.accounts.Save(ctx, acc); err != nil {
			return nil, err
		}
	}

	total := l.RemainingBalance.Add(penalty(l.RemainingBalance))
	if total.GreaterThan(available) {
		total = available
	}
	if !total.IsPositive() {
		return nil, domainAccount.ErrInsufficientFunds
	}

	adminAcc, err := u.accounts.GetByUserID(ctx, u.adminUserID)
	if err != nil {
		return nil, err
	}

	res, err := u.engine.Transfer(ctx, transfer.TransferInput{
		FromAccountID: acc.ID,
		ToAccountID:   adminAcc.ID,
		Amount:        total,
	})
	if err != nil {
		return nil, err
	}

	var out *CollectedLoan
	err = u.uow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *domainLoan.Loan) error {
		// Freshness check: an overlapping sweep or a late repayment may have
		// settled the loan while the transfer confirmed.
		if locked.Status != domainLoan.StatusApproved {
			return domainLoan.ErrAlreadyProcessed
		}
		now := u.now()
		locked.RemainingBalance = decimal.Zero
		locked.Status = domainLoan.StatusPaid
		locked.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, locked); err != nil {
			return err
		}
		borrower, err := r.Accounts.GetByID(ctx, locked.AccountID)
		if err != nil {
			return err
		}
		borrower.ActiveLoan = false
		borrower.Balance = res.FromBalance
		if err := r.Accounts.Save(ctx, borrower); err != nil {
			return err
		}
		out = &CollectedLoan{
			LoanID:         locked.LoanID,
			AccountID:      locked.AccountID,
			Amount:         total,
			ConfirmationID: res.ConfirmationID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
