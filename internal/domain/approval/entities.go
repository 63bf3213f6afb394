package approval

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("approval not found")

// Approval is the audit record written when a pending loan is approved and
// the disbursement is confirmed on the external ledger.
type Approval struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	ApprovalID string `gorm:"column:approval_id;type:char(32);not null;uniqueIndex:ux_approvals_approval_id_active"`
	// FK to loans.id (numeric); one approval per loan
	LoanID  uint64 `gorm:"column:loan_id;not null;index;uniqueIndex:ux_approvals_loan_active"`
	AdminID uint64 `gorm:"column:admin_id;not null"`
	// ConfirmationID is the ledger transaction hash of the disbursement.
	ConfirmationID string         `gorm:"column:confirmation_id;size:66;not null"`
	ApprovalDate   time.Time      `gorm:"column:approval_date;not null"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Approval) TableName() string { return "approvals" }
