package loan

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	domainAccount "smartloans/internal/domain/account"
	domainApproval "smartloans/internal/domain/approval"
	domainLoan "smartloans/internal/domain/loan"
	"smartloans/internal/domain/uow"
	"smartloans/internal/usecase/transfer"
	"smartloans/pkg/id"
)

// TransferEngine is the slice of the transfer usecase the state machine needs.
type TransferEngine interface {
	Transfer(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error)
}

type Usecase struct {
	loans    domainLoan.Repository
	accounts domainAccount.Repository
	uow      uow.UnitOfWork
	engine   TransferEngine

	// adminUserID identifies the counterparty account that funds approvals
	// and receives repayments.
	adminUserID uint64
	// termUnit is the length of one loan period.
	termUnit time.Duration

	now func() time.Time
}

func NewUsecase(loans domainLoan.Repository, accounts domainAccount.Repository, tx uow.UnitOfWork,
	engine TransferEngine, adminUserID uint64, termUnit time.Duration) *Usecase {
	return &Usecase{
		loans:       loans,
		accounts:    accounts,
		uow:         tx,
		engine:      engine,
		adminUserID: adminUserID,
		termUnit:    termUnit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) endDate(from time.Time, term domainLoan.Term) time.Time {
	return from.Add(time.Duration(term.Periods()) * u.termUnit)
}

// Request creates a PENDING loan for userID's account. The balance check is
// advisory only: it fast-fails obviously hopeless requests against the cache.
func (u *Usecase) Request(ctx context.Context, userID uint64, in RequestLoanInput) (*LoanDTO, error) {
	rate, err := domainLoan.ParseRate(in.Rate)
	if err != nil {
		return nil, err
	}
	term, err := domainLoan.ParseTerm(in.Term)
	if err != nil {
		return nil, err
	}
	if !in.Principal.IsPositive() {
		return nil, ErrNonPositivePayment
	}

	acc, err := u.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc.ActiveLoan {
		return nil, domainLoan.ErrActiveLoanExists
	}
	if in.Principal.GreaterThan(acc.Balance) {
		return nil, domainAccount.ErrInsufficientFunds
	}

	now := u.now()
	l := &domainLoan.Loan{
		LoanID:           id.NewID32(),
		AccountID:        acc.ID,
		Principal:        in.Principal,
		Rate:             rate.Decimal(),
		Term:             term.Periods(),
		RemainingBalance: in.Principal.Mul(rate.Multiplier()),
		StartDate:        now,
		EndDate:          u.endDate(now, term),
		Status:           domainLoan.StatusPending,
		StateUpdatedAt:   now,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// Re-check under a row lock. The flag and the row must agree: at most
		// one non-terminal loan, even when two requests race on one account.
		locked, err := r.Accounts.GetByIDForUpdate(ctx, acc.ID)
		if err != nil {
			return err
		}
		if locked.ActiveLoan {
			return domainLoan.ErrActiveLoanExists
		}
		if _, err := r.Loans.GetActiveByAccountID(ctx, locked.ID); err == nil {
			return domainLoan.ErrActiveLoanExists
		} else if !errors.Is(err, domainLoan.ErrNotFound) {
			return err
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		locked.ActiveLoan = true
		return r.Accounts.Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// Approve disburses principal admin→borrower on the ledger, then flips the
// loan PENDING→APPROVED. The status is re-checked under a row lock right
// before committing, so a concurrent approval surfaces as ErrAlreadyProcessed
// instead of a second disbursement.
func (u *Usecase) Approve(ctx context.Context, adminUserID uint64, loanID string) (*ApproveDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != domainLoan.StatusPending {
		return nil, domainLoan.ErrAlreadyProcessed
	}

	adminAcc, err := u.accounts.GetByUserID(ctx, adminUserID)
	if err != nil {
		return nil, err
	}
	if l.Principal.GreaterThan(adminAcc.Balance) {
		return nil, domainAccount.ErrInsufficientFunds
	}

	// Blocking ledger step happens before, and outside of, the local commit.
	res, err := u.engine.Transfer(ctx, transfer.TransferInput{
		FromAccountID: adminAcc.ID,
		ToAccountID:   l.AccountID,
		Amount:        l.Principal,
	})
	if err != nil {
		return nil, err
	}

	var dto *ApproveDTO
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *domainLoan.Loan) error {
		if locked.Status != domainLoan.StatusPending {
			return domainLoan.ErrAlreadyProcessed
		}
		now := u.now()
		locked.Status = domainLoan.StatusApproved
		// Disbursement starts the clock, not the request.
		locked.StartDate = now
		locked.EndDate = u.endDate(now, domainLoan.Term(locked.Term))
		locked.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, locked); err != nil {
			return err
		}

		a := &domainApproval.Approval{
			ApprovalID:     id.NewID32(),
			LoanID:         locked.ID,
			AdminID:        adminUserID,
			ConfirmationID: res.ConfirmationID,
			ApprovalDate:   now,
		}
		if err := r.Approvals.Create(ctx, a); err != nil {
			return err
		}

		dto = &ApproveDTO{
			Loan:            *toDTO(locked),
			ApprovalID:      a.ApprovalID,
			ConfirmationID:  res.ConfirmationID,
			AdminBalance:    res.FromBalance,
			BorrowerBalance: res.ToBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Reject flips PENDING→REJECTED and frees the borrower for a new request.
// No ledger interaction.
func (u *Usecase) Reject(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *domainLoan.Loan) error {
		if locked.Status != domainLoan.StatusPending {
			return domainLoan.ErrAlreadyProcessed
		}
		now := u.now()
		locked.Status = domainLoan.StatusRejected
		locked.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, locked); err != nil {
			return err
		}
		acc, err := r.Accounts.GetByID(ctx, locked.AccountID)
		if err != nil {
			return err
		}
		acc.ActiveLoan = false
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		dto = toDTO(locked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Repay moves payment borrower→admin on the ledger and reduces the remaining
// balance. Full repayment (remainder reaches zero) marks the loan PAID and
// clears the borrower's active-loan flag; partial payments leave it APPROVED.
func (u *Usecase) Repay(ctx context.Context, userID uint64, loanID string, payment decimal.Decimal) (*RepayDTO, error) {
	if !payment.IsPositive() {
		return nil, ErrNonPositivePayment
	}

	acc, err := u.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.AccountID != acc.ID {
		return nil, domainLoan.ErrNotFound
	}
	if l.Status != domainLoan.StatusApproved {
		return nil, domainLoan.ErrInvalidState
	}
	if payment.GreaterThan(l.RemainingBalance) {
		return nil, ErrExcessPayment
	}
	if payment.GreaterThan(acc.Balance) {
		return nil, domainAccount.ErrInsufficientFunds
	}

	adminAcc, err := u.accounts.GetByUserID(ctx, u.adminUserID)
	if err != nil {
		return nil, err
	}

	res, err := u.engine.Transfer(ctx, transfer.TransferInput{
		FromAccountID: acc.ID,
		ToAccountID:   adminAcc.ID,
		Amount:        payment,
	})
	if err != nil {
		return nil, err
	}

	var dto *RepayDTO
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *domainLoan.Loan) error {
		if locked.Status != domainLoan.StatusApproved {
			return domainLoan.ErrAlreadyProcessed
		}
		now := u.now()
		locked.RemainingBalance = locked.RemainingBalance.Sub(payment)
		paid := !locked.RemainingBalance.IsPositive()
		if paid {
			locked.RemainingBalance = decimal.Zero
			locked.Status = domainLoan.StatusPaid
			locked.StateUpdatedAt = now
		}
		if err := r.Loans.Save(ctx, locked); err != nil {
			return err
		}
		if paid {
			borrower, err := r.Accounts.GetByID(ctx, locked.AccountID)
			if err != nil {
				return err
			}
			borrower.ActiveLoan = false
			if err := r.Accounts.Save(ctx, borrower); err != nil {
				return err
			}
		}
		dto = &RepayDTO{
			Loan:            *toDTO(locked),
			ConfirmationID:  res.ConfirmationID,
			Paid:            paid,
			BorrowerBalance: res.FromBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Get returns the loan projection for its owning borrower.
func (u *Usecase) Get(ctx context.Context, userID uint64, loanID string) (*LoanDTO, error) {
	acc, err := u.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.AccountID != acc.ID {
		return nil, domainLoan.ErrNotFound
	}
	return toDTO(l), nil
}

// List returns every loan; admin listings only.
func (u *Usecase) List(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out, nil
}

// Delete removes a loan (administrative, soft delete). A non-terminal loan
// also frees the borrower's active-loan flag.
func (u *Usecase) Delete(ctx context.Context, deletedBy string, loanID string) error {
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *domainLoan.Loan) error {
		if !locked.Status.Terminal() {
			acc, err := r.Accounts.GetByID(ctx, locked.AccountID)
			if err != nil {
				return err
			}
			acc.ActiveLoan = false
			if err := r.Accounts.Save(ctx, acc); err != nil {
				return err
			}
		}
		return r.Loans.Delete(ctx, locked.ID, deletedBy)
	})
}

func toDTO(l *domainLoan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:           l.LoanID,
		AccountID:        l.AccountID,
		Principal:        l.Principal,
		Rate:             l.Rate.String(),
		Term:             l.Term,
		RemainingBalance: l.RemainingBalance,
		Installment:      l.Installment(),
		StartDate:        l.StartDate,
		EndDate:          l.EndDate,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
	}
}
