package ledger

import (
	"context" // Request scoped cancellation
	"time"    // Date filters

	"finance_wallet/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact monetary arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TransactionFilter selects transactions for history and admin listings
type TransactionFilter struct {
	UserID   uint       // 0 means every user
	Status   string     // Empty means every status
	Type     string     // Empty means every type
	From     *time.Time // Inclusive lower bound on created_at
	To       *time.Time // Inclusive upper bound on created_at
	Page     int        // 1-based
	PageSize int        // 1..MaxPageSize
}

// Normalize clamps paging to sane values
func (f *TransactionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		f.PageSize = DefaultPageSize
	}
}

// TransactionPage is one page of a listing
type TransactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	Total        int64                `json:"total"`
	TotalPages   int                  `json:"total_pages"`
}

// ListTransactions runs one typed join over transactions, their owners and
// target accounts. Every filter is a bound parameter.
func (l *Ledger) ListTransactions(ctx context.Context, f TransactionFilter) (*TransactionPage, error) {
	if f.Status != "" && !domain.ValidStatus(f.Status) {
		return nil, domain.ErrInvalidInput
	}
	if f.Type != "" && !domain.ValidType(f.Type) {
		return nil, domain.ErrInvalidInput
	}
	f.Normalize()

	var total int64
	if err := l.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, domain.Storage("count transactions", err)
	}
	txs := make([]domain.Transaction, 0, f.PageSize)
	err := l.filtered(ctx, f).
		Joins("User").
		Joins("Account").
		Order("wallet_transactions.created_at DESC").
		Order("wallet_transactions.id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&txs).Error
	if err != nil {
		return nil, domain.Storage("list transactions", err)
	}
	return &TransactionPage{
		Transactions: txs,
		Page:         f.Page,
		PageSize:     f.PageSize,
		Total:        total,
		TotalPages:   int((total + int64(f.PageSize) - 1) / int64(f.PageSize)),
	}, nil
}

// filtered builds a fresh query each call; gorm statements are not safe to
// reuse after Count
func (l *Ledger) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := l.db.WithContext(ctx).Model(&domain.Transaction{})
	if f.UserID != 0 {
		q = q.Where("wallet_transactions.user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("wallet_transactions.status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("wallet_transactions.type = ?", f.Type)
	}
	if f.From != nil {
		q = q.Where("wallet_transactions.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("wallet_transactions.created_at <= ?", *f.To)
	}
	return q
}

// Reconciliation compares a wallet's stored balance with the balance implied
// by its transactions
type Reconciliation struct {
	WalletID   uint            `json:"wallet_id"`
	Balance    decimal.Decimal `json:"balance"`
	Expected   decimal.Decimal `json:"expected"`
	Consistent bool            `json:"consistent"`
}

// Reconcile sums the transactions whose effect is currently applied
// (PENDING and COMPLETED) and compares the result with the stored balance.
// Wallets funded outside the ledger will report a difference.
func (l *Ledger) Reconcile(ctx context.Context, userID uint) (*Reconciliation, error) {
	w, err := l.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Type  string
		Total decimal.NullDecimal
	}
	err = l.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("type, SUM(amount) AS total").
		Where("wallet_id = ? AND status IN ?", w.ID, []string{domain.StatusPending, domain.StatusCompleted}).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.Storage("sum transactions", err)
	}
	expected := decimal.Zero
	for _, r := range rows {
		if !r.Total.Valid {
			continue
		}
		total := r.Total.Decimal.Round(2) // SQLite sums in floating point
		switch r.Type {
		case domain.TypeDeposit:
			expected = expected.Add(total)
		case domain.TypeWithdrawal:
			expected = expected.Sub(total)
		}
	}
	balance := w.Balance.Round(2)
	return &Reconciliation{
		WalletID:   w.ID,
		Balance:    balance,
		Expected:   expected,
		Consistent: expected.Equal(balance),
	}, nil
}
