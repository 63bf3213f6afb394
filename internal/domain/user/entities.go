package user

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
	RoleAdmin    Role = "admin"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrUnknownRole   = errors.New("unknown role")
)

// ParseRole rejects anything outside the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBorrower, RoleLender, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

type User struct {
	ID           uint64 `gorm:"primaryKey;column:id" json:"id"`
	Email        string `gorm:"size:255;uniqueIndex:ux_users_email_active" json:"email"`
	Username     string `gorm:"size:64;uniqueIndex:ux_users_username_active" json:"username"`
	FirstName    string `gorm:"size:64" json:"first_name"`
	LastName     string `gorm:"size:64" json:"last_name"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         Role   `gorm:"type:enum('borrower','lender','admin');default:'borrower'" json:"role"`
	// Address is the user's external-ledger address (0x + 40 hex). The
	// platform never holds the matching private key.
	Address   string         `gorm:"size:42;uniqueIndex:ux_users_address_active" json:"address"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
