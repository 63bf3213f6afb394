package auth

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Address   string `json:"address"`
}

type UserDTO struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Address     string `json:"address"`
}

type AccountDTO struct {
	AccountID  uint64          `json:"account_id"`
	UserID     uint64          `json:"user_id"`
	Balance    decimal.Decimal `json:"balance"`
	IsActive   bool            `json:"is_active"`
	ActiveLoan bool            `json:"active_loan"`
}

// Principal is the authenticated identity every core operation receives.
type Principal struct {
	UserID  uint64
	Role    string
	Address string
}
