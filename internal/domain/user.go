package domain

import "time"

// User roles
const (
	RoleUser  = "user"  // Regular wallet owner
	RoleAdmin = "admin" // Transaction reviewer
)

// User Model
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`                                 // Primary key
	Username   string     `gorm:"size:64;uniqueIndex;not null" json:"username"`         // Unique lower-cased username
	Email      *string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`          // Optional, nil keeps the unique index happy
	Password   string     `gorm:"not null" json:"-"`                                    // Hashed password
	Role       string     `gorm:"size:20;default:user;not null" json:"role"`            // Role: user or admin
	Verified   bool       `gorm:"default:false;not null" json:"verified"`               // Verification status
	VerifiedAt *time.Time `json:"verified_at,omitempty"`                                // When an admin verified the user
	CreatedAt  time.Time  `json:"created_at"`                                           // Registration time
	UpdatedAt  time.Time  `json:"updated_at"`                                           // Last profile change
	Wallet     *Wallet    `gorm:"constraint:OnUpdate:CASCADE;" json:"wallet,omitempty"` // Zero-or-one wallet
}

// IsAdmin reports whether the user may review transactions
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
