package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact monetary arithmetic
)

// Transaction types
const (
	TypeDeposit    = "DEPOSIT"    // Money into the wallet
	TypeWithdrawal = "WITHDRAWAL" // Money out to a linked account
)

// Transaction statuses
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
)

// Transaction Model
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	Reference   string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`        // Public UUID reference
	WalletID    uint            `gorm:"index;not null" json:"wallet_id"`                      // Owning wallet
	UserID      uint            `gorm:"index;not null" json:"user_id"`                        // Owning user
	AccountID   *uint           `gorm:"index" json:"account_id,omitempty"`                    // Target account for withdrawals
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`            // Amount of the transaction
	Fee         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"fee"`     // Fee charged on top of the amount
	Currency    string          `gorm:"size:3;not null" json:"currency"`                      // Currency of the wallet at creation
	Type        string          `gorm:"size:20;not null;index" json:"type"`                   // DEPOSIT or WITHDRAWAL
	Status      string          `gorm:"size:20;not null;index;default:PENDING" json:"status"` // Lifecycle status
	Description string          `gorm:"size:255" json:"description,omitempty"`                // Free text from the owner
	Note        string          `gorm:"size:255" json:"note,omitempty"`                       // Free text from the reviewer
	ReviewedBy  *uint           `json:"reviewed_by,omitempty"`                                // Admin that moved it out of PENDING
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // Loaded by admin listings
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"` // Loaded by listings
}

// TableName keeps wallet transactions apart from any other ledger table
func (Transaction) TableName() string {
	return "wallet_transactions"
}

// IsTerminal reports whether no further transition is defined out of status
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// ValidType reports whether t names a transaction type
func ValidType(t string) bool {
	return t == TypeDeposit || t == TypeWithdrawal
}

// ValidStatus reports whether s names a transaction status
func ValidStatus(s string) bool {
	return s == StatusPending || IsTerminal(s)
}
