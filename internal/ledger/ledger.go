// Package ledger owns wallet balances and the transactions that move them.
//
// Every operation that touches both a transaction row and a wallet balance
// runs inside one database transaction. Overdraft protection is a
// conditional decrement evaluated by the database, so concurrent sends
// against one wallet cannot take the balance below zero.
package ledger

import (
	"context" // Request scoped cancellation
	"errors"  // Error comparison
	"time"    // Review timestamps

	"finance_wallet/internal/domain" // Importing domain models

	"github.com/google/uuid"        // Public transaction references
	"github.com/shopspring/decimal" // Exact monetary arithmetic
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Upsert clauses
)

// castAmount binds a decimal parameter with the column's precision. SQLite
// still evaluates it as a float, so every stored result and every balance
// comparison is rounded back to the column scale inside the statement.
const castAmount = "CAST(? AS DECIMAL(20,2))"

// maxAmount is the first value that no longer fits decimal(20,2)
var maxAmount = decimal.New(1, 18)

// Ledger is the wallet ledger and transaction review workflow
type Ledger struct {
	db       *gorm.DB // Injected data-access handle
	currency string   // Currency for lazily created wallets
}

// New builds a Ledger on an open database handle
func New(db *gorm.DB, currency string) *Ledger {
	return &Ledger{db: db, currency: currency}
}

// GetWallet returns the user's wallet, creating an empty one on first access
func (l *Ledger) GetWallet(ctx context.Context, userID uint) (*domain.Wallet, error) {
	w, err := ensureWallet(l.db.WithContext(ctx), userID, l.currency)
	if err != nil {
		return nil, domain.Storage("get wallet", err)
	}
	return w, nil
}

// Deposit records a PENDING deposit and credits the wallet in one unit
func (l *Ledger) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*domain.Transaction, *domain.Wallet, error) {
	if !validAmount(amount) {
		return nil, nil, domain.ErrInvalidAmount
	}
	var (
		txn    *domain.Transaction
		wallet *domain.Wallet
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := ensureWallet(tx, userID, l.currency) // Lazily create on first deposit
		if err != nil {
			return domain.Storage("load wallet", err)
		}
		if !w.IsActive() {
			return domain.ErrWalletInactive
		}
		if err := credit(tx, w.ID, amount); err != nil {
			return err // Rollback
		}
		txn = newTransaction(w, domain.TypeDeposit, amount, description)
		if err := tx.Create(txn).Error; err != nil {
			return domain.Storage("create transaction", err)
		}
		wallet, err = loadWallet(tx, w.ID) // Read back the stored balance
		return err
	})
	if err != nil {
		return nil, nil, domain.Classify("deposit", err)
	}
	return txn, wallet, nil
}

// Send records a PENDING withdrawal to one of the user's accounts and
// debits the wallet in one unit
func (l *Ledger) Send(ctx context.Context, userID uint, amount decimal.Decimal, accountID uint, description string) (*domain.Transaction, *domain.Wallet, error) {
	if !validAmount(amount) {
		return nil, nil, domain.ErrInvalidAmount
	}
	var (
		txn    *domain.Transaction
		wallet *domain.Wallet
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrWalletNotFound
			}
			return domain.Storage("load wallet", err)
		}
		if !w.IsActive() {
			return domain.ErrWalletInactive
		}
		var acct domain.Account
		// Only the owner's live accounts are valid targets
		if err := tx.Where("id = ? AND user_id = ?", accountID, userID).First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAccountNotFound
			}
			return domain.Storage("load account", err)
		}
		if err := debit(tx, w.ID, amount); err != nil {
			return err // Insufficient balance or storage failure, rollback
		}
		txn = newTransaction(&w, domain.TypeWithdrawal, amount, description)
		txn.AccountID = &acct.ID
		if err := tx.Create(txn).Error; err != nil {
			return domain.Storage("create transaction", err)
		}
		txn.Account = &acct
		var err error
		wallet, err = loadWallet(tx, w.ID)
		return err
	})
	if err != nil {
		return nil, nil, domain.Classify("send", err)
	}
	return txn, wallet, nil
}

// ReviewInput is an administrator's decision on a pending transaction
type ReviewInput struct {
	TransactionID uint   // Transaction under review
	Status        string // COMPLETED, CANCELLED or REJECTED
	Note          string // Optional reviewer note
	ReviewerID    uint   // Admin user ID, 0 when unknown
}

// ReviewResult reports the outcome of SetStatus
type ReviewResult struct {
	Transaction   *domain.Transaction `json:"transaction"`
	WalletUpdated bool                `json:"wallet_updated"`
	NewBalance    *decimal.Decimal    `json:"new_balance,omitempty"`
}

// SetStatus moves a PENDING transaction to a terminal status.
// Balances were applied when the transaction was created, so COMPLETED
// leaves the wallet alone while CANCELLED and REJECTED reverse the effect.
func (l *Ledger) SetStatus(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	if !domain.IsTerminal(in.Status) {
		return nil, domain.ErrInvalidTransition
	}
	result := &ReviewResult{}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Transaction
		if err := tx.First(&t, in.TransactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTransactionNotFound
			}
			return domain.Storage("load transaction", err)
		}
		if t.Status != domain.StatusPending {
			return domain.ErrInvalidTransition // Terminal states have no way out
		}
		updates := map[string]any{
			"status":      in.Status,
			"note":        in.Note,
			"reviewed_at": time.Now(),
		}
		if in.ReviewerID != 0 {
			updates["reviewed_by"] = in.ReviewerID
		}
		// The status guard makes a concurrent second review a no-op
		res := tx.Model(&domain.Transaction{}).
			Where("id = ? AND status = ?", t.ID, domain.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return domain.Storage("update transaction", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidTransition
		}
		if in.Status != domain.StatusCompleted {
			if err := reverse(tx, &t); err != nil {
				return err
			}
			w, err := loadWallet(tx, t.WalletID)
			if err != nil {
				return err
			}
			result.WalletUpdated = true
			result.NewBalance = &w.Balance
		}
		var updated domain.Transaction
		if err := tx.Preload("Account").First(&updated, t.ID).Error; err != nil {
			return domain.Storage("reload transaction", err)
		}
		result.Transaction = &updated
		return nil
	})
	if err != nil {
		return nil, domain.Classify("set status", err)
	}
	return result, nil
}

// Transaction returns one of the user's transactions, used for status polling
func (l *Ledger) Transaction(ctx context.Context, userID, id uint) (*domain.Transaction, error) {
	var t domain.Transaction
	err := l.db.WithContext(ctx).Preload("Account").
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, domain.Storage("get transaction", err)
	}
	return &t, nil
}

// SetWalletStatus lets an administrator suspend, close or reactivate a wallet
func (l *Ledger) SetWalletStatus(ctx context.Context, userID uint, status string) (*domain.Wallet, error) {
	if !domain.ValidWalletStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	db := l.db.WithContext(ctx)
	res := db.Model(&domain.Wallet{}).Where("user_id = ?", userID).Update("status", status)
	if res.Error != nil {
		return nil, domain.Storage("update wallet status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrWalletNotFound
	}
	var w domain.Wallet
	if err := db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, domain.Storage("load wallet", err)
	}
	return &w, nil
}

// validAmount accepts positive amounts with at most two decimal places
// that fit the balance column
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThan(maxAmount) && amount.Equal(amount.Round(2))
}

func newTransaction(w *domain.Wallet, kind string, amount decimal.Decimal, description string) *domain.Transaction {
	return &domain.Transaction{
		Reference:   uuid.NewString(),
		WalletID:    w.ID,
		UserID:      w.UserID,
		Amount:      amount,
		Fee:         decimal.Zero,
		Currency:    w.Currency,
		Type:        kind,
		Status:      domain.StatusPending,
		Description: description,
	}
}

// ensureWallet reads the wallet or inserts an empty one. The insert ignores
// unique conflicts so two first requests racing each other both succeed.
func ensureWallet(tx *gorm.DB, userID uint, currency string) (*domain.Wallet, error) {
	var w domain.Wallet
	err := tx.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := domain.Wallet{UserID: userID, Balance: decimal.Zero, Currency: currency, Status: domain.WalletActive}
	err = tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func loadWallet(tx *gorm.DB, id uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := tx.First(&w, id).Error; err != nil {
		return nil, domain.Storage("reload wallet", err)
	}
	return &w, nil
}

func credit(tx *gorm.DB, walletID uint, amount decimal.Decimal) error {
	err := tx.Model(&domain.Wallet{}).Where("id = ?", walletID).
		Update("balance", gorm.Expr("ROUND(balance + "+castAmount+", 2)", amount)).Error
	if err != nil {
		return domain.Storage("credit wallet", err)
	}
	return nil
}

// debit decrements only while the balance covers the amount; the check and
// the write are one statement
func debit(tx *gorm.DB, walletID uint, amount decimal.Decimal) error {
	res := tx.Model(&domain.Wallet{}).
		Where("id = ? AND ROUND(balance, 2) >= "+castAmount, walletID, amount).
		Update("balance", gorm.Expr("ROUND(balance - "+castAmount+", 2)", amount))
	if res.Error != nil {
		return domain.Storage("debit wallet", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// reverse undoes the balance effect applied when t was created
func reverse(tx *gorm.DB, t *domain.Transaction) error {
	switch t.Type {
	case domain.TypeDeposit:
		return debit(tx, t.WalletID, t.Amount)
	case domain.TypeWithdrawal:
		return credit(tx, t.WalletID, t.Amount)
	}
	return domain.ErrInvalidTransition
}
