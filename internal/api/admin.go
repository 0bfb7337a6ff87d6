package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Date filters

	"finance_wallet/internal/auth"       // Credential service
	"finance_wallet/internal/domain"     // Importing domain models
	"finance_wallet/internal/ledger"     // Wallet ledger
	"finance_wallet/internal/middleware" // Authenticated user ID
	"finance_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint           `json:"id"`               // User ID
	Username string         `json:"username"`         // Username
	Role     string         `json:"role"`             // User role
	Verified bool           `json:"verified"`         // Verification status
	Wallet   *domain.Wallet `json:"wallet,omitempty"` // Associated wallet, nil until first use
}

// usersPage is the cached body of ListUsersHandler
type usersPage struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
}

// ReviewRequest is an admin decision on a pending transaction
type ReviewRequest struct {
	TransactionID uint   `json:"transaction_id" binding:"required"` // Transaction under review
	Status        string `json:"status" binding:"required"`         // COMPLETED, CANCELLED or REJECTED
	Note          string `json:"note" binding:"max=255"`            // Optional reviewer note
}

// WalletStatusRequest changes a wallet's status
type WalletStatusRequest struct {
	Status string `json:"status" binding:"required"` // ACTIVE, SUSPENDED or CLOSED
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(svc *auth.Service, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		// Create a cache key based on pagination parameters
		cacheKey := utils.AdminUsersPrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached usersPage
		// If cached data found, return it
		if found, err := cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"result": cached, "cached": true})
			return
		}
		users, total, err := svc.ListUsers(ctx, page, pageSize)
		if err != nil {
			respondError(c, err, "list users", nil)
			return
		}
		resp := usersPage{
			Users:      make([]UserAdminResponse, len(users)),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		// Map users to response format
		for i, u := range users {
			resp.Users[i] = UserAdminResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Role:     u.Role,     // User role
				Verified: u.Verified, // Verification status
				Wallet:   u.Wallet,   // Associated wallet
			}
		}
		_ = cache.Set(ctx, cacheKey, resp) // Cache the response for future requests
		c.JSON(http.StatusOK, gin.H{"result": resp, "cached": false})
	}
}

// VerifyUserHandler marks a user as verified
func VerifyUserHandler(svc *auth.Service, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			respondError(c, domain.ErrUserNotFound, "verify user", nil)
			return
		}
		user, err := svc.MarkVerified(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "verify user", logrus.Fields{"user_id": id})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  id,
			"admin_id": middleware.UserID(c),
		}).Info("User verified")
		invalidateUsers(c, cache)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// ListTransactionsHandler returns all transactions, with optional filtering by user, status, type, or date
func ListTransactionsHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		filter := ledger.TransactionFilter{
			Status:   strings.ToUpper(c.Query("status")),
			Type:     strings.ToUpper(c.Query("type")),
			Page:     page,
			PageSize: pageSize,
		}
		if v := c.Query("user_id"); v != "" {
			uid, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				respondError(c, domain.ErrInvalidInput, "list transactions", nil)
				return
			}
			filter.UserID = uint(uid) // Filter by user ID
		}
		var err error
		if filter.From, err = parseTime(c.Query("from"), false); err != nil {
			respondError(c, domain.ErrInvalidInput, "list transactions", nil)
			return
		}
		if filter.To, err = parseTime(c.Query("to"), true); err != nil {
			respondError(c, domain.ErrInvalidInput, "list transactions", nil)
			return
		}
		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"user_id", "status", "type", "from", "to"} {
			keyParts = append(keyParts, k+"="+c.Query(k))
		}
		keyParts = append(keyParts, "page="+strconv.Itoa(page), "page_size="+strconv.Itoa(pageSize))
		cacheKey := utils.AdminTransactionsPrefix + strings.Join(keyParts, ":")
		var cached ledger.TransactionPage
		if found, err := cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"result": cached, "cached": true})
			return
		}
		result, err := l.ListTransactions(ctx, filter)
		if err != nil {
			respondError(c, err, "list transactions", nil)
			return
		}
		_ = cache.Set(ctx, cacheKey, result) // Cache the response for future requests
		c.JSON(http.StatusOK, gin.H{"result": result, "cached": false})
	}
}

// ReviewTransactionHandler moves a pending transaction to a terminal status
func ReviewTransactionHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "review transaction", nil)
			return
		}
		adminID := middleware.UserID(c)
		result, err := l.SetStatus(c.Request.Context(), ledger.ReviewInput{
			TransactionID: req.TransactionID,
			Status:        strings.ToUpper(req.Status),
			Note:          req.Note,
			ReviewerID:    adminID,
		})
		if err != nil {
			respondError(c, err, "review transaction", logrus.Fields{"transaction_id": req.TransactionID, "admin_id": adminID})
			return
		}
		logrus.WithFields(logrus.Fields{
			"transaction_id": req.TransactionID,
			"status":         result.Transaction.Status,
			"wallet_updated": result.WalletUpdated,
			"admin_id":       adminID,
		}).Info("Transaction reviewed")
		invalidate(c, cache, result.Transaction.UserID)
		c.JSON(http.StatusOK, result)
	}
}

// SetWalletStatusHandler suspends, closes or reactivates a user's wallet
func SetWalletStatusHandler(l *ledger.Ledger, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "user_id")
		if !ok {
			respondError(c, domain.ErrWalletNotFound, "set wallet status", nil)
			return
		}
		var req WalletStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "set wallet status", nil)
			return
		}
		w, err := l.SetWalletStatus(c.Request.Context(), userID, strings.ToUpper(req.Status))
		if err != nil {
			respondError(c, err, "set wallet status", logrus.Fields{"user_id": userID})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,
			"status":   w.Status,
			"admin_id": middleware.UserID(c),
		}).Info("Wallet status changed")
		invalidate(c, cache, userID)
		c.JSON(http.StatusOK, gin.H{"wallet": w})
	}
}

// ReconcileWalletHandler compares a wallet's balance with its transactions
func ReconcileWalletHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "user_id")
		if !ok {
			respondError(c, domain.ErrWalletNotFound, "reconcile wallet", nil)
			return
		}
		rec, err := l.Reconcile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "reconcile wallet", logrus.Fields{"user_id": userID})
			return
		}
		if !rec.Consistent {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,
				"balance":  rec.Balance.String(),
				"expected": rec.Expected.String(),
			}).Warn("Wallet balance differs from transactions")
		}
		c.JSON(http.StatusOK, rec)
	}
}

// parseTime accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers the whole day.
func parseTime(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
