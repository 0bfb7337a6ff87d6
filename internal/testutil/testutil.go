// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"finance_wallet/internal/config"
	"finance_wallet/internal/db"
	"finance_wallet/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in the test's temp dir
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBName:         filepath.Join(t.TempDir(), "wallet.db"),
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
	}
	handle, err := db.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(handle))
	t.Cleanup(func() { _ = db.Close(handle) })
	return handle
}

// CreateUser inserts a user whose password is "password123"
func CreateUser(t *testing.T, handle *gorm.DB, username, role string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Username: username, Password: string(hash), Role: role}
	require.NoError(t, handle.Create(u).Error)
	return u
}

// CreateWallet inserts an active wallet with the given balance
func CreateWallet(t *testing.T, handle *gorm.DB, userID uint, balance string) *domain.Wallet {
	t.Helper()
	w := &domain.Wallet{
		UserID:   userID,
		Balance:  decimal.RequireFromString(balance),
		Currency: "USD",
		Status:   domain.WalletActive,
	}
	require.NoError(t, handle.Create(w).Error)
	return w
}

// CreateAccount links a bank account to the user
func CreateAccount(t *testing.T, handle *gorm.DB, userID uint, number string, isDefault bool) *domain.Account {
	t.Helper()
	a := &domain.Account{
		UserID:        userID,
		HolderName:    "Test Holder",
		AccountNumber: number,
		RoutingCode:   "021000021",
		IsDefault:     isDefault,
	}
	require.NoError(t, handle.Create(a).Error)
	return a
}

// Balance reads the wallet balance straight from the table
func Balance(t *testing.T, handle *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var w domain.Wallet
	require.NoError(t, handle.Where("user_id = ?", userID).First(&w).Error)
	return w.Balance
}

// Dec parses a decimal literal
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
