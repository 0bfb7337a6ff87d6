package middleware

import (
	"context"  // Request context
	"errors"   // Error comparison
	"net/http" // HTTP status codes

	"finance_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// UserLoader fetches the current user record, implemented by auth.Service
type UserLoader interface {
	User(ctx context.Context, id uint) (*domain.User, error)
}

// AdminOnlyMiddleware checks the user's role from the database on each request,
// so a demoted admin loses access before their token expires
func AdminOnlyMiddleware(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c) // Get userID from context
		// Check if userID exists in context
		if userID == 0 {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		user, err := users.User(c.Request.Context(), userID) // Fetch user from database
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,
					"error":   err.Error(),
				}).Error("Admin check failed")
			}
			abort(c, http.StatusForbidden, domain.ErrUnauthorized)
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			abort(c, http.StatusForbidden, domain.ErrUnauthorized)
			return
		}
		c.Next() // If admin, proceed to the next handler
	}
}
