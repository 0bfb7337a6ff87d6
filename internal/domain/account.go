package domain

import (
	"time"

	"gorm.io/gorm"
)

// Account is a bank account linked by its owner as a withdrawal target
type Account struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	HolderName    string         `gorm:"size:100;not null" json:"holder_name"`
	AccountNumber string         `gorm:"size:34;not null" json:"account_number"`
	RoutingCode   string         `gorm:"size:20;not null" json:"routing_code"` // Routing number or IFSC
	BankName      string         `gorm:"size:100" json:"bank_name,omitempty"`
	IsDefault     bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
