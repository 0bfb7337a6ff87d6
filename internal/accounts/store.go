package accounts

import (
	"context" // Request scoped cancellation
	"errors"  // Error comparison
	"strings" // Input trimming

	"finance_wallet/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Input carries the editable fields of a linked bank account
type Input struct {
	HolderName    string `json:"holder_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,alphanum,min=4,max=34"`
	RoutingCode   string `json:"routing_code" binding:"required,alphanum,min=4,max=20"`
	BankName      string `json:"bank_name" binding:"max=100"`
	IsDefault     bool   `json:"is_default"`
}

// Store manages the bank accounts a user links as withdrawal targets
type Store struct {
	db *gorm.DB // Injected data-access handle
}

// NewStore builds a Store on an open database handle
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns the user's accounts, default first
func (s *Store) List(ctx context.Context, userID uint) ([]domain.Account, error) {
	accts := []domain.Account{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("id ASC").
		Find(&accts).Error
	if err != nil {
		return nil, domain.Storage("list accounts", err)
	}
	return accts, nil
}

// Get returns one of the user's accounts
func (s *Store) Get(ctx context.Context, userID, id uint) (*domain.Account, error) {
	return get(s.db.WithContext(ctx), userID, id)
}

// Create links a new account. The user's first account becomes the default.
func (s *Store) Create(ctx context.Context, userID uint, in Input) (*domain.Account, error) {
	acct := &domain.Account{UserID: userID}
	apply(acct, in)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.Account{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return domain.Storage("count accounts", err)
		}
		if existing == 0 {
			acct.IsDefault = true
		}
		if err := tx.Create(acct).Error; err != nil {
			return domain.Storage("create account", err)
		}
		if acct.IsDefault {
			return clearOtherDefaults(tx, userID, acct.ID)
		}
		return nil
	})
	if err != nil {
		return nil, domain.Classify("create account", err)
	}
	return acct, nil
}

// Update replaces the editable fields of an account
func (s *Store) Update(ctx context.Context, userID, id uint, in Input) (*domain.Account, error) {
	var acct *domain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if acct, err = get(tx, userID, id); err != nil {
			return err
		}
		wasDefault := acct.IsDefault
		apply(acct, in)
		acct.IsDefault = in.IsDefault || wasDefault // Unsetting happens by choosing another default
		if err := tx.Save(acct).Error; err != nil {
			return domain.Storage("update account", err)
		}
		if acct.IsDefault && !wasDefault {
			return clearOtherDefaults(tx, userID, acct.ID)
		}
		return nil
	})
	if err != nil {
		return nil, domain.Classify("update account", err)
	}
	return acct, nil
}

// SetDefault makes id the user's only default account
func (s *Store) SetDefault(ctx context.Context, userID, id uint) (*domain.Account, error) {
	var acct *domain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if acct, err = get(tx, userID, id); err != nil {
			return err
		}
		if err := tx.Model(acct).Update("is_default", true).Error; err != nil {
			return domain.Storage("set default", err)
		}
		acct.IsDefault = true
		return clearOtherDefaults(tx, userID, id)
	})
	if err != nil {
		return nil, domain.Classify("set default", err)
	}
	return acct, nil
}

// Delete unlinks an account. Past transactions keep their reference.
func (s *Store) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Account{})
	if res.Error != nil {
		return domain.Storage("delete account", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func get(db *gorm.DB, userID, id uint) (*domain.Account, error) {
	var acct domain.Account
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, domain.Storage("get account", err)
	}
	return &acct, nil
}

func clearOtherDefaults(tx *gorm.DB, userID, keepID uint) error {
	err := tx.Model(&domain.Account{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		Update("is_default", false).Error
	if err != nil {
		return domain.Storage("clear defaults", err)
	}
	return nil
}

func apply(acct *domain.Account, in Input) {
	acct.HolderName = strings.TrimSpace(in.HolderName)
	acct.AccountNumber = strings.TrimSpace(in.AccountNumber)
	acct.RoutingCode = strings.ToUpper(strings.TrimSpace(in.RoutingCode))
	acct.BankName = strings.TrimSpace(in.BankName)
	acct.IsDefault = in.IsDefault
}
