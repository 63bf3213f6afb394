package mysql

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	accountDomain "smartloans/internal/domain/account"
)

// Account carries no enum columns, so the domain model migrates on sqlite as-is.
func openAccountTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&accountDomain.Account{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestAccount_CreateAndGet(t *testing.T) {
	db := openAccountTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc := &accountDomain.Account{UserID: 2, Balance: d("500"), IsActive: true}
	if err := repo.Create(ctx, acc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acc.ID == 0 {
		t.Fatal("Create did not set auto-increment ID")
	}

	byID, err := repo.GetByID(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	byUser, err := repo.GetByUserID(ctx, 2)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if byID.ID != byUser.ID || !byID.Balance.Equal(d("500")) {
		t.Fatalf("mismatched reads: %+v vs %+v", byID, byUser)
	}
}

func TestAccount_GetByIDForUpdate(t *testing.T) {
	db := openAccountTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc := &accountDomain.Account{UserID: 2, Balance: d("500"), IsActive: true}
	if err := repo.Create(ctx, acc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByIDForUpdate(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got.ID != acc.ID || !got.Balance.Equal(d("500")) {
		t.Fatalf("locked read mismatch: %+v", got)
	}
	if _, err := repo.GetByIDForUpdate(ctx, 9999); !errors.Is(err, accountDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAccount_SavePersistsBalanceAndFlag(t *testing.T) {
	db := openAccountTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc := &accountDomain.Account{UserID: 2, Balance: d("500"), IsActive: true}
	if err := repo.Create(ctx, acc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	acc.Balance = d("399.9")
	acc.ActiveLoan = true
	if err := repo.Save(ctx, acc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Balance.Equal(d("399.9")) || !got.ActiveLoan {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestAccount_NotFound(t *testing.T) {
	db := openAccountTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 404); !errors.Is(err, accountDomain.ErrNotFound) {
		t.Fatalf("GetByID err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByUserID(ctx, 404); !errors.Is(err, accountDomain.ErrNotFound) {
		t.Fatalf("GetByUserID err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, 404); !errors.Is(err, accountDomain.ErrNotFound) {
		t.Fatalf("Delete err = %v, want ErrNotFound", err)
	}
}
