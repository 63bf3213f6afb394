package approval

import "context"

type Repository interface {
	Create(ctx context.Context, a *Approval) error
	GetByLoanID(ctx context.Context, loanNumericID uint64) (*Approval, error)
	GetByApprovalID(ctx context.Context, approvalID string) (*Approval, error)
}
