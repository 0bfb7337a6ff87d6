package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact monetary arithmetic
)

// Wallet statuses
const (
	WalletActive    = "ACTIVE"
	WalletSuspended = "SUSPENDED"
	WalletClosed    = "CLOSED"
)

// Wallet Model
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`                  // Foreign key to User, one wallet per user
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // Wallet balance
	Currency  string          `gorm:"size:3;not null;default:USD" json:"currency"`          // ISO currency code
	Status    string          `gorm:"size:16;not null;default:ACTIVE" json:"status"`        // ACTIVE, SUSPENDED or CLOSED
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsActive reports whether the wallet accepts new transactions
func (w *Wallet) IsActive() bool { return w.Status == WalletActive }

// ValidWalletStatus reports whether s names a wallet status
func ValidWalletStatus(s string) bool {
	switch s {
	case WalletActive, WalletSuspended, WalletClosed:
		return true
	}
	return false
}
