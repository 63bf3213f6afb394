package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	domainAccount "smartloans/internal/domain/account"
	"smartloans/internal/domain/ledger"
	domainLoan "smartloans/internal/domain/loan"
	"smartloans/internal/domain/uow"
	domainUser "smartloans/internal/domain/user"
)

type Claims struct {
	UserID  uint64 `json:"user_id"`
	Role    string `json:"role"`
	Address string `json:"address"`
	jwt.RegisteredClaims
}

type Usecase struct {
	users    domainUser.Repository
	accounts domainAccount.Repository
	uow      uow.UnitOfWork
	ledger   ledger.Client

	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewUsecase(users domainUser.Repository, accounts domainAccount.Repository, tx uow.UnitOfWork,
	lc ledger.Client, secret string, tokenTTL time.Duration) *Usecase {
	return &Usecase{
		users:    users,
		accounts: accounts,
		uow:      tx,
		ledger:   lc,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the user record. The platform stores only the public
// ledger address, never key material.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	role, err := domainUser.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !ledger.ValidAddress(in.Address) {
		return nil, ledger.ErrInvalidAddress
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	usr := &domainUser.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         role,
		Address:      in.Address,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, err
	}
	return toUserDTO(usr), nil
}

// Login verifies credentials and issues a signed token carrying the
// {user_id, role, address} principal.
func (u *Usecase) Login(ctx context.Context, username, password string) (*TokenDTO, error) {
	usr, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainUser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	claims := Claims{
		UserID:  usr.ID,
		Role:    string(usr.Role),
		Address: usr.Address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usr.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
	if err != nil {
		return nil, err
	}
	return &TokenDTO{AccessToken: signed, TokenType: "bearer", Address: usr.Address}, nil
}

// ParseToken validates a bearer token and returns its principal.
func (u *Usecase) ParseToken(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return u.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return &Principal{UserID: claims.UserID, Role: claims.Role, Address: claims.Address}, nil
}

// OpenAccount creates the user's account, seeding the cached balance from
// the ledger.
func (u *Usecase) OpenAccount(ctx context.Context, p Principal) (*AccountDTO, error) {
	if _, err := u.accounts.GetByUserID(ctx, p.UserID); err == nil {
		return nil, domainAccount.ErrAlreadyExists
	} else if !errors.Is(err, domainAccount.ErrNotFound) {
		return nil, err
	}
	bal, err := u.ledger.BalanceOf(ctx, p.Address)
	if err != nil {
		return nil, err
	}
	acc := &domainAccount.Account{UserID: p.UserID, Balance: bal, IsActive: true}
	if err := u.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	return toAccountDTO(acc), nil
}

func (u *Usecase) GetAccount(ctx context.Context, userID uint64) (*AccountDTO, error) {
	acc, err := u.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAccountDTO(acc), nil
}

// ListUsers / ListAccounts back the admin listings.
func (u *Usecase) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *toUserDTO(&users[i]))
	}
	return out, nil
}

func (u *Usecase) ListAccounts(ctx context.Context) ([]AccountDTO, error) {
	accounts, err := u.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountDTO, 0, len(accounts))
	for i := range accounts {
		out = append(out, *toAccountDTO(&accounts[i]))
	}
	return out, nil
}

// DeleteUser removes a user, their account, and — explicitly cascading — any
// loans, in one transaction. deletedBy is the acting admin's public id trail.
func (u *Usecase) DeleteUser(ctx context.Context, userID uint64, deletedBy string) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		usr, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		acc, err := r.Accounts.GetByUserID(ctx, userID)
		switch {
		case err == nil:
			if l, err := r.Loans.GetActiveByAccountID(ctx, acc.ID); err == nil {
				if err := r.Loans.Delete(ctx, l.ID, deletedBy); err != nil {
					return err
				}
			} else if !errors.Is(err, domainLoan.ErrNotFound) {
				return err
			}
			if err := r.Accounts.Delete(ctx, acc.ID); err != nil {
				return err
			}
		case !errors.Is(err, domainAccount.ErrNotFound):
			return err
		}
		return r.Users.Delete(ctx, usr.ID)
	})
}

func toUserDTO(usr *domainUser.User) *UserDTO {
	return &UserDTO{
		ID:        usr.ID,
		Username:  usr.Username,
		Email:     usr.Email,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Role:      string(usr.Role),
		Address:   usr.Address,
		CreatedAt: usr.CreatedAt,
	}
}

func toAccountDTO(acc *domainAccount.Account) *AccountDTO {
	return &AccountDTO{
		AccountID:  acc.ID,
		UserID:     acc.UserID,
		Balance:    acc.Balance,
		IsActive:   acc.IsActive,
		ActiveLoan: acc.ActiveLoan,
	}
}
