package api

import (
	"encoding/json" // Raw amount field
	"net/http"      // HTTP status codes
	"time"          // Log timestamps

	"finance_wallet/internal/domain"     // Importing domain models
	"finance_wallet/internal/ledger"     // Wallet ledger
	"finance_wallet/internal/middleware" // Authenticated user ID
	"finance_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// DepositRequest represents a deposit request
type DepositRequest struct {
	Amount      json.RawMessage `json:"amount"`                        // Number or numeric string
	Description string          `json:"description" binding:"max=255"` // Optional description
}

// SendRequest moves money from the wallet to a linked account
type SendRequest struct {
	Amount      json.RawMessage `json:"amount"`                        // Number or numeric string
	AccountID   uint            `json:"account_id" binding:"required"` // Target account owned by the caller
	Description string          `json:"description" binding:"max=255"` // Optional description
}

// walletResponse is the body of deposit and send responses
type walletResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
	Wallet      *domain.Wallet      `json:"wallet"`
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := middleware.UserID(c)      // Get userID from context
		cacheKey := utils.WalletKey(userID) // Cache key for wallet
		var wallet domain.Wallet
		// If found in cache, return it
		if found, err := cache.Get(ctx, cacheKey, &wallet); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		w, err := l.GetWallet(ctx, userID) // Created on first access
		if err != nil {
			respondError(c, err, "get wallet", logrus.Fields{"user_id": userID})
			return
		}
		_ = cache.Set(ctx, cacheKey, w) // Cache the wallet
		invalidateUsers(c, cache)       // The wallet may have just been created
		c.JSON(http.StatusOK, gin.H{"wallet": w, "cached": false})
	}
}

// DepositHandler allows a user to deposit funds into their wallet
func DepositHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		var req DepositRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "deposit", nil)
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			respondError(c, err, "deposit", nil)
			return
		}
		txn, wallet, err := l.Deposit(c.Request.Context(), userID, amount, req.Description)
		if err != nil {
			respondError(c, err, "deposit", logrus.Fields{"user_id": userID, "amount": amount.String()})
			return
		}
		// Log successful deposit
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // User ID
			"amount":    amount.String(),                 // Deposit amount
			"reference": txn.Reference,                   // Transaction reference
			"type":      txn.Type,                        // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Deposit transaction")
		invalidate(c, cache, userID)
		c.JSON(http.StatusCreated, walletResponse{Transaction: txn, Wallet: wallet})
	}
}

// SendHandler moves funds from the wallet to one of the user's accounts
func SendHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		var req SendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "send", nil)
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			respondError(c, err, "send", nil)
			return
		}
		txn, wallet, err := l.Send(c.Request.Context(), userID, amount, req.AccountID, req.Description)
		if err != nil {
			respondError(c, err, "send", logrus.Fields{"user_id": userID, "amount": amount.String(), "account_id": req.AccountID})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"account_id": req.AccountID,
			"amount":     amount.String(),
			"reference":  txn.Reference,
			"type":       txn.Type,
			"timestamp":  time.Now().Format(time.RFC3339),
		}).Info("Send transaction")
		invalidate(c, cache, userID)
		c.JSON(http.StatusCreated, walletResponse{Transaction: txn, Wallet: wallet})
	}
}

// GetTransactionHistoryHandler returns the authenticated user's transactions
func GetTransactionHistoryHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := middleware.UserID(c)
		page, pageSize := pagination(c)
		cacheKey := utils.HistoryKey(userID, page, pageSize) // Redis cache key
		var cached ledger.TransactionPage
		// If found in cache, return it
		if found, err := cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"history": cached, "cached": true})
			return
		}
		result, err := l.ListTransactions(ctx, ledger.TransactionFilter{UserID: userID, Page: page, PageSize: pageSize})
		if err != nil {
			respondError(c, err, "transaction history", logrus.Fields{"user_id": userID})
			return
		}
		_ = cache.Set(ctx, cacheKey, result) // Cache the result
		c.JSON(http.StatusOK, gin.H{"history": result, "cached": false})
	}
}

// GetTransactionHandler returns one transaction, polled by clients waiting on review
func GetTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			respondError(c, domain.ErrTransactionNotFound, "get transaction", nil)
			return
		}
		txn, err := l.Transaction(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err, "get transaction", logrus.Fields{"transaction_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": txn})
	}
}

// invalidate drops the user's cached wallet and listings after a write.
// A cache failure only delays freshness until the TTL, so it is logged.
func invalidate(c *gin.Context, cache *utils.Cache, userID uint) {
	if err := cache.InvalidateUser(c.Request.Context(), userID); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Cache invalidation failed")
	}
}

// invalidateUsers drops the cached admin user listings
func invalidateUsers(c *gin.Context, cache *utils.Cache) {
	if err := cache.DeletePrefix(c.Request.Context(), utils.AdminUsersPrefix); err != nil {
		logrus.WithError(err).Warn("Cache invalidation failed")
	}
}
