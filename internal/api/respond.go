package api

import (
	"encoding/json" // Raw amount decoding
	"errors"        // Error comparison
	"net/http"      // HTTP status codes
	"strconv"       // String conversion
	"strings"       // Quote trimming

	"finance_wallet/internal/domain" // Error taxonomy
	"finance_wallet/internal/ledger" // Paging limits

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact monetary arithmetic
	"github.com/sirupsen/logrus"    // Logrus for structured logging
)

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) (int, *domain.Error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, domain.ErrStorageFailure
	}
	switch de {
	case domain.ErrUnauthenticated, domain.ErrInvalidCredentials:
		return http.StatusUnauthorized, de
	case domain.ErrUnauthorized:
		return http.StatusForbidden, de
	case domain.ErrInvalidInput, domain.ErrInvalidAmount:
		return http.StatusBadRequest, de
	case domain.ErrAccountNotFound, domain.ErrTransactionNotFound, domain.ErrWalletNotFound, domain.ErrUserNotFound:
		return http.StatusNotFound, de
	case domain.ErrInsufficientBalance, domain.ErrInvalidTransition, domain.ErrUserExists, domain.ErrWalletInactive:
		return http.StatusConflict, de
	}
	return http.StatusInternalServerError, domain.ErrStorageFailure
}

// respondError writes the classified error and logs server-side failures
func respondError(c *gin.Context, err error, action string, fields logrus.Fields) {
	status, de := statusFor(err)
	if status >= http.StatusInternalServerError {
		if fields == nil {
			fields = logrus.Fields{}
		}
		fields["error"] = err.Error() // Full chain, including the driver cause
		logrus.WithFields(fields).Error(action + " failed")
	}
	c.JSON(status, gin.H{"error": de.Message, "code": de.Code})
}

// pagination reads page and page_size the way every listing does
func pagination(c *gin.Context) (int, int) {
	page := 1                          // Default page number
	pageSize := ledger.DefaultPageSize // Default page size
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v // Set page if valid
	}
	// Check and set page size within limits
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= ledger.MaxPageSize {
		pageSize = v
	}
	return page, pageSize
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseAmount accepts a JSON number or a numeric string
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}
