package api

import (
	"net/http" // HTTP status codes

	"finance_wallet/internal/accounts"   // Account store
	"finance_wallet/internal/domain"     // Error taxonomy
	"finance_wallet/internal/middleware" // Authenticated user ID

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListAccountsHandler returns the caller's linked accounts
func ListAccountsHandler(store *accounts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err, "list accounts", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accounts": list})
	}
}

// CreateAccountHandler links a bank account
func CreateAccountHandler(store *accounts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accounts.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "create account", nil)
			return
		}
		acct, err := store.Create(c.Request.Context(), middleware.UserID(c), req)
		if err != nil {
			respondError(c, err, "create account", nil)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"account": acct})
	}
}

// GetAccountHandler returns one linked account
func GetAccountHandler(store *accounts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			respondError(c, domain.ErrAccountNotFound, "get account", nil)
			return
		}
		acct, err := store.Get(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err, "get account", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": acct})
	}
}

// UpdateAccountHandler replaces a linked account's details
func UpdateAccountHandler(store *accounts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			respondError(c, domain.ErrAccountNotFound, "update account", nil)
			return
		}
		var req accounts.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "update account", nil)
			return
		}
		acct, err := store.Update(c.Request.Context(), middleware.UserID(c), id, req)
		if err != nil {
			respondError(c, err, "update account", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": acct})
	}
}

// DeleteAccountHandler unlinks an account
func DeleteAccountHandler(store *accounts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			respondError(c, domain.ErrAccountNotFound, "delete account", nil)
			return
		}
		if err := store.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
			respondError(c, err, "delete account", nil)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SetDefaultAccountHandler makes an account the caller's default
func SetDefaultAccountHandler(store *accounts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			respondError(c, domain.ErrAccountNotFound, "set default account", nil)
			return
		}
		acct, err := store.SetDefault(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err, "set default account", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": acct})
	}
}
