package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	accountDomain "smartloans/internal/domain/account"
	"smartloans/internal/domain/ledger"
	loanDomain "smartloans/internal/domain/loan"
	"smartloans/internal/domain/uow"
	"smartloans/internal/testutil/accountmock"
	"smartloans/internal/testutil/approvalmock"
	"smartloans/internal/testutil/loanmock"
	"smartloans/internal/testutil/uowmock"
	"smartloans/internal/usecase/transfer"
)

const (
	adminUserID    = uint64(1)
	borrowerUserID = uint64(2)
	termUnit       = time.Minute
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// mockEngine satisfies TransferEngine.
type mockEngine struct {
	TransferFn func(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error)
	Calls      []transfer.TransferInput
}

func (m *mockEngine) Transfer(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error) {
	m.Calls = append(m.Calls, in)
	if m.TransferFn != nil {
		return m.TransferFn(ctx, in)
	}
	return nil, errors.New("mockEngine: not implemented")
}

type fixture struct {
	loans    *loanmock.Repo
	accounts *accountmock.Repo
	apprs    *approvalmock.Repo
	engine   *mockEngine
	uc       *Usecase

	adminAccount    accountDomain.Account
	borrowerAccount accountDomain.Account
	loan            *loanDomain.Loan
}

// newFixture wires an admin account (id 10), a borrower account (id 20) and
// optionally one loan, against function-backed mocks with a passthrough UoW.
func newFixture(t *testing.T, l *loanDomain.Loan) *fixture {
	t.Helper()
	f := &fixture{
		loans:  &loanmock.Repo{},
		apprs:  &approvalmock.Repo{},
		engine: &mockEngine{},
		adminAccount: accountDomain.Account{
			ID: 10, UserID: adminUserID, Balance: dec("1000"), IsActive: true,
		},
		borrowerAccount: accountDomain.Account{
			ID: 20, UserID: borrowerUserID, Balance: dec("500"), IsActive: true,
		},
		loan: l,
	}
	f.accounts = &accountmock.Repo{
		GetByIDFn: func(ctx context.Context, id uint64) (*accountDomain.Account, error) {
			switch id {
			case 10:
				a := f.adminAccount
				return &a, nil
			case 20:
				a := f.borrowerAccount
				return &a, nil
			}
			return nil, accountDomain.ErrNotFound
		},
		GetByUserIDFn: func(ctx context.Context, userID uint64) (*accountDomain.Account, error) {
			switch userID {
			case adminUserID:
				a := f.adminAccount
				return &a, nil
			case borrowerUserID:
				a := f.borrowerAccount
				return &a, nil
			}
			return nil, accountDomain.ErrNotFound
		},
	}
	if l != nil {
		f.loans.GetByLoanIDFn = func(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
			if loanID == l.LoanID {
				cp := *l
				return &cp, nil
			}
			return nil, loanDomain.ErrNotFound
		}
		f.loans.GetByLoanIDForUpdateFn = f.loans.GetByLoanIDFn
	}
	repos := uow.Repos{Loans: f.loans, Accounts: f.accounts, Approvals: f.apprs}
	f.uc = NewUsecase(f.loans, f.accounts, uowmock.Passthrough(repos), f.engine, adminUserID, termUnit)
	return f
}

func pendingLoan() *loanDomain.Loan {
	return &loanDomain.Loan{
		ID: 7, LoanID: "cccccccccccccccccccccccccccccccc", AccountID: 20,
		Principal: dec("100"), Rate: dec("2"), Term: 5,
		RemainingBalance: dec("102"),
		Status:           loanDomain.StatusPending,
	}
}

func approvedLoan(remaining string) *loanDomain.Loan {
	l := pendingLoan()
	l.Status = loanDomain.StatusApproved
	l.RemainingBalance = dec(remaining)
	return l
}

// ----- Request -----

func TestRequest_ComputesInterestTermAndInstallment(t *testing.T) {
	f := newFixture(t, nil)
	var created *loanDomain.Loan
	f.loans.CreateFn = func(ctx context.Context, l *loanDomain.Loan) error { created = l; return nil }

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return start }

	dto, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{
		Principal: dec("100"), Rate: "2", Term: 5,
	})
	if err != nil {
		t.Fatalf("Request err: %v", err)
	}
	if !dto.RemainingBalance.Equal(dec("102")) {
		t.Fatalf("remaining = %s, want 102", dto.RemainingBalance)
	}
	if !dto.Installment.Equal(dec("20.4")) {
		t.Fatalf("installment = %s, want 20.4", dto.Installment)
	}
	if dto.Status != string(loanDomain.StatusPending) {
		t.Fatalf("status = %s", dto.Status)
	}
	if want := start.Add(5 * termUnit); !created.EndDate.Equal(want) {
		t.Fatalf("end date = %v, want %v", created.EndDate, want)
	}
	if len(created.LoanID) != 32 {
		t.Fatalf("loan id length %d", len(created.LoanID))
	}
	// flag must mirror the new pending loan
	if len(f.accounts.Saved) != 1 || !f.accounts.Saved[0].ActiveLoan {
		t.Fatalf("active-loan flag not set: %+v", f.accounts.Saved)
	}
}

func TestRequest_RejectsUnknownRateAndTerm(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{Principal: dec("10"), Rate: "2.75", Term: 3}); !errors.Is(err, loanDomain.ErrUnknownRate) {
		t.Fatalf("rate err = %v", err)
	}
	if _, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{Principal: dec("10"), Rate: "2", Term: 6}); !errors.Is(err, loanDomain.ErrUnknownTerm) {
		t.Fatalf("term err = %v", err)
	}
}

func TestRequest_BlockedByActiveLoanFlag(t *testing.T) {
	f := newFixture(t, nil)
	f.borrowerAccount.ActiveLoan = true
	_, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{Principal: dec("10"), Rate: "2", Term: 3})
	if !errors.Is(err, loanDomain.ErrActiveLoanExists) {
		t.Fatalf("err = %v", err)
	}
}

func TestRequest_BlockedByExistingPendingRow(t *testing.T) {
	// Flag says free, but a pending row exists: the tx-level re-check wins.
	f := newFixture(t, nil)
	f.loans.GetActiveByAccountIDFn = func(ctx context.Context, accountID uint64) (*loanDomain.Loan, error) {
		return pendingLoan(), nil
	}
	_, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{Principal: dec("10"), Rate: "2", Term: 3})
	if !errors.Is(err, loanDomain.ErrActiveLoanExists) {
		t.Fatalf("err = %v", err)
	}
}

func TestRequest_LockedRecheckCatchesConcurrentRequest(t *testing.T) {
	// The pre-tx snapshot shows no active loan, but by the time the row lock
	// is taken a concurrent request has flipped the flag. The locked read
	// must win and no second loan row may be created.
	f := newFixture(t, nil)
	f.accounts.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*accountDomain.Account, error) {
		a := f.borrowerAccount
		a.ActiveLoan = true
		return &a, nil
	}
	f.loans.CreateFn = func(ctx context.Context, l *loanDomain.Loan) error {
		t.Fatal("Create called despite locked account showing an active loan")
		return nil
	}
	_, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{Principal: dec("10"), Rate: "2", Term: 3})
	if !errors.Is(err, loanDomain.ErrActiveLoanExists) {
		t.Fatalf("err = %v", err)
	}
	if len(f.accounts.Saved) != 0 {
		t.Fatalf("account saved %d times, want 0", len(f.accounts.Saved))
	}
}

func TestRequest_AdvisoryBalanceCheck(t *testing.T) {
	f := newFixture(t, nil)
	f.borrowerAccount.Balance = dec("50")
	_, err := f.uc.Request(context.Background(), borrowerUserID, RequestLoanInput{Principal: dec("100"), Rate: "2", Term: 3})
	if !errors.Is(err, accountDomain.ErrInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
}

// ----- Approve -----

func TestApprove_DisbursesAndAdvancesState(t *testing.T) {
	l := pendingLoan()
	f := newFixture(t, l)
	f.engine.TransferFn = func(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error) {
		return &transfer.TransferDTO{
			ConfirmationID: "0xfeed",
			FromBalance:    dec("900"), ToBalance: dec("600"),
		}, nil
	}
	approvedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return approvedAt }

	dto, err := f.uc.Approve(context.Background(), adminUserID, l.LoanID)
	if err != nil {
		t.Fatalf("Approve err: %v", err)
	}
	if dto.Loan.Status != string(loanDomain.StatusApproved) {
		t.Fatalf("status = %s", dto.Loan.Status)
	}
	if dto.ConfirmationID != "0xfeed" {
		t.Fatalf("confirmation = %s", dto.ConfirmationID)
	}
	// disbursement resets the clock
	if want := approvedAt.Add(5 * termUnit); !dto.Loan.EndDate.Equal(want) {
		t.Fatalf("end date = %v, want %v", dto.Loan.EndDate, want)
	}
	if len(f.engine.Calls) != 1 {
		t.Fatalf("engine calls = %d", len(f.engine.Calls))
	}
	if c := f.engine.Calls[0]; c.FromAccountID != 10 || c.ToAccountID != 20 || !c.Amount.Equal(dec("100")) {
		t.Fatalf("disbursement call = %+v", c)
	}
	if len(f.apprs.Created) != 1 || f.apprs.Created[0].ConfirmationID != "0xfeed" {
		t.Fatalf("approval audit row: %+v", f.apprs.Created)
	}
}

func TestApprove_InsufficientAdminBalanceLeavesLoanPending(t *testing.T) {
	l := pendingLoan()
	f := newFixture(t, l)
	f.adminAccount.Balance = dec("50")

	_, err := f.uc.Approve(context.Background(), adminUserID, l.LoanID)
	if !errors.Is(err, accountDomain.ErrInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
	if len(f.engine.Calls) != 0 {
		t.Fatalf("no ledger call may happen")
	}
	if len(f.loans.Saved) != 0 {
		t.Fatalf("loan must stay pending, saved: %+v", f.loans.Saved)
	}
}

func TestApprove_AlreadyProcessed(t *testing.T) {
	for _, st := range []loanDomain.Status{loanDomain.StatusApproved, loanDomain.StatusRejected, loanDomain.StatusPaid} {
		l := pendingLoan()
		l.Status = st
		f := newFixture(t, l)
		_, err := f.uc.Approve(context.Background(), adminUserID, l.LoanID)
		if !errors.Is(err, loanDomain.ErrAlreadyProcessed) {
			t.Fatalf("status %s: err = %v", st, err)
		}
		if len(f.engine.Calls) != 0 {
			t.Fatalf("status %s: transfer must never re-execute", st)
		}
	}
}

func TestApprove_RecheckUnderLockCatchesRace(t *testing.T) {
	l := pendingLoan()
	f := newFixture(t, l)
	f.engine.TransferFn = func(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error) {
		// A concurrent approval wins while we wait for confirmation.
		l.Status = loanDomain.StatusApproved
		return &transfer.TransferDTO{ConfirmationID: "0xfeed"}, nil
	}
	_, err := f.uc.Approve(context.Background(), adminUserID, l.LoanID)
	if !errors.Is(err, loanDomain.ErrAlreadyProcessed) {
		t.Fatalf("err = %v", err)
	}
	if len(f.loans.Saved) != 0 {
		t.Fatalf("lost-update race must not commit")
	}
}

func TestApprove_LedgerFailureAborts(t *testing.T) {
	l := pendingLoan()
	f := newFixture(t, l)
	f.engine.TransferFn = func(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error) {
		return nil, ledger.ErrUnavailable
	}
	_, err := f.uc.Approve(context.Background(), adminUserID, l.LoanID)
	if !errors.Is(err, ledger.ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if len(f.loans.Saved) != 0 || len(f.apprs.Created) != 0 {
		t.Fatalf("approval must abort with no status change")
	}
}

// ----- Reject -----

func TestReject_ClearsActiveLoanFlag(t *testing.T) {
	l := pendingLoan()
	f := newFixture(t, l)
	f.borrowerAccount.ActiveLoan = true

	dto, err := f.uc.Reject(context.Background(), l.LoanID)
	if err != nil {
		t.Fatalf("Reject err: %v", err)
	}
	if dto.Status != string(loanDomain.StatusRejected) {
		t.Fatalf("status = %s", dto.Status)
	}
	if len(f.accounts.Saved) != 1 || f.accounts.Saved[0].ActiveLoan {
		t.Fatalf("flag not cleared: %+v", f.accounts.Saved)
	}
	if len(f.engine.Calls) != 0 {
		t.Fatalf("reject must not touch the ledger")
	}
}

func TestReject_NonPending(t *testing.T) {
	l := approvedLoan("102")
	f := newFixture(t, l)
	if _, err := f.uc.Reject(context.Background(), l.LoanID); !errors.Is(err, loanDomain.ErrAlreadyProcessed) {
		t.Fatalf("err = %v", err)
	}
}

// ----- Repay -----

func TestRepay_FullPaymentMarksPaid(t *testing.T) {
	l := approvedLoan("102")
	f := newFixture(t, l)
	f.borrowerAccount.Balance = dec("200")
	f.engine.TransferFn = func(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error) {
		return &transfer.TransferDTO{ConfirmationID: "0xabc", FromBalance: dec("98")}, nil
	}

	dto, err := f.uc.Repay(context.Background(), borrowerUserID, l.LoanID, dec("102"))
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if !dto.Paid || dto.Loan.Status != string(loanDomain.StatusPaid) {
		t.Fatalf("dto = %+v", dto)
	}
	if !dto.Loan.RemainingBalance.IsZero() {
		t.Fatalf("remaining = %s", dto.Loan.RemainingBalance)
	}
	if c := f.engine.Calls[0]; c.FromAccountID != 20 || c.ToAccountID != 10 || !c.Amount.Equal(dec("102")) {
		t.Fatalf("repayment call = %+v", c)
	}
	// account flag cleared
	var flagCleared bool
	for _, a := range f.accounts.Saved {
		if a.ID == 20 && !a.ActiveLoan {
			flagCleared = true
		}
	}
	if !flagCleared {
		t.Fatalf("active-loan flag must clear on full repayment")
	}
}

func TestRepay_PartialPaymentStaysApproved(t *testing.T) {
	l := approvedLoan("102")
	f := newFixture(t, l)
	f.engine.TransferFn = func(ctx context.Context, in transfer.TransferInput) (*transfer.TransferDTO, error) {
		return &transfer.TransferDTO{ConfirmationID: "0xabc"}, nil
	}

	dto, err := f.uc.Repay(context.Background(), borrowerUserID, l.LoanID, dec("20.4"))
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if dto.Paid || dto.Loan.Status != string(loanDomain.StatusApproved) {
		t.Fatalf("dto = %+v", dto)
	}
	if !dto.Loan.RemainingBalance.Equal(dec("81.6")) {
		t.Fatalf("remaining = %s", dto.Loan.RemainingBalance)
	}
}

func TestRepay_Validations(t *testing.T) {
	l := approvedLoan("102")

	t.Run("non-positive", func(t *testing.T) {
		f := newFixture(t, l)
		if _, err := f.uc.Repay(context.Background(), borrowerUserID, l.LoanID, dec("0")); !errors.Is(err, ErrNonPositivePayment) {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("exceeds remaining", func(t *testing.T) {
		f := newFixture(t, l)
		if _, err := f.uc.Repay(context.Background(), borrowerUserID, l.LoanID, dec("150")); !errors.Is(err, ErrExcessPayment) {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("exceeds cached balance", func(t *testing.T) {
		f := newFixture(t, l)
		f.borrowerAccount.Balance = dec("10")
		if _, err := f.uc.Repay(context.Background(), borrowerUserID, l.LoanID, dec("50")); !errors.Is(err, accountDomain.ErrInsufficientFunds) {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("not owner", func(t *testing.T) {
		f := newFixture(t, l)
		if _, err := f.uc.Repay(context.Background(), adminUserID, l.LoanID, dec("10")); !errors.Is(err, loanDomain.ErrNotFound) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestRepay_OnPaidLoanFailsWithoutTransfer(t *testing.T) {
	l := approvedLoan("0")
	l.Status = loanDomain.StatusPaid
	f := newFixture(t, l)

	_, err := f.uc.Repay(context.Background(), borrowerUserID, l.LoanID, dec("10"))
	if !errors.Is(err, loanDomain.ErrInvalidState) {
		t.Fatalf("err = %v", err)
	}
	if len(f.engine.Calls) != 0 {
		t.Fatalf("repeated repayment must never re-execute a transfer")
	}
}

// ----- Get -----

func TestGet_OwnerOnly(t *testing.T) {
	l := approvedLoan("102")
	f := newFixture(t, l)

	dto, err := f.uc.Get(context.Background(), borrowerUserID, l.LoanID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if dto.LoanID != l.LoanID {
		t.Fatalf("got %s", dto.LoanID)
	}
	if _, err := f.uc.Get(context.Background(), adminUserID, l.LoanID); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("foreign owner err = %v", err)
	}
}
