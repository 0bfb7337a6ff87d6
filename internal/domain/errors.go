package domain

import (
	"errors"
	"fmt"
)

// Error is a classified failure surfaced to API callers.
// Compare with errors.Is against the sentinels below.
type Error struct {
	Code    string // Stable machine-readable code
	Message string // Safe to show to clients
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUnauthenticated     = &Error{Code: "UNAUTHENTICATED", Message: "authentication required"}
	ErrInvalidCredentials  = &Error{Code: "INVALID_CREDENTIALS", Message: "invalid credentials"}
	ErrUnauthorized        = &Error{Code: "UNAUTHORIZED", Message: "admin access required"}
	ErrInvalidInput        = &Error{Code: "INVALID_INPUT", Message: "invalid request"}
	ErrInvalidAmount       = &Error{Code: "INVALID_AMOUNT", Message: "amount must be a positive number"}
	ErrInsufficientBalance = &Error{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance"}
	ErrAccountNotFound     = &Error{Code: "ACCOUNT_NOT_FOUND", Message: "account not found"}
	ErrTransactionNotFound = &Error{Code: "TRANSACTION_NOT_FOUND", Message: "transaction not found"}
	ErrWalletNotFound      = &Error{Code: "WALLET_NOT_FOUND", Message: "wallet not found"}
	ErrWalletInactive      = &Error{Code: "WALLET_INACTIVE", Message: "wallet is not active"}
	ErrUserNotFound        = &Error{Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrUserExists          = &Error{Code: "USER_EXISTS", Message: "username or email already exists"}
	ErrInvalidTransition   = &Error{Code: "INVALID_TRANSITION", Message: "transaction status cannot change"}
	ErrStorageFailure      = &Error{Code: "STORAGE_FAILURE", Message: "storage failure"}
)

// Storage wraps a data store failure so callers see ErrStorageFailure
// while the driver error stays reachable through errors.As.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// Classify passes classified errors through and wraps anything else as a
// storage failure. Used on errors returned by gorm's Transaction helper,
// which may carry either our own sentinels or a commit error.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return Storage(op, err)
}
