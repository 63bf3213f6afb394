package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrAlreadyExists     = errors.New("account already exists for user")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account mirrors a user's external-ledger balance. Balance is a cache
// refreshed from the ledger after every mutating transfer; it is used for
// advisory pre-checks only and never authorizes a transfer on its own.
type Account struct {
	ID         uint64          `gorm:"primaryKey;column:id" json:"account_id"`
	UserID     uint64          `gorm:"uniqueIndex:ux_accounts_user_active" json:"user_id"`
	Balance    decimal.Decimal `gorm:"type:decimal(38,18)" json:"balance"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	ActiveLoan bool            `gorm:"default:false" json:"active_loan"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Account) TableName() string { return "accounts" }
