package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"finance_wallet/internal/auth"   // Session identity
	"finance_wallet/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// TokenVerifier checks a session token, implemented by auth.Service
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(sessions TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		identity, err := sessions.Verify(tokenStr)            // Parse and verify the token
		if err != nil {
			// If verification fails, abort with unauthorized status
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		c.Set(UserIDKey, identity.UserID) // Store userID in context
		c.Set(RoleKey, identity.Role)     // Store role claim in context
		c.Next()                          // Proceed to the next handler
	}
}

// UserID returns the authenticated user ID, 0 outside JWTAuthMiddleware
func UserID(c *gin.Context) uint {
	return c.GetUint(UserIDKey)
}

func abort(c *gin.Context, status int, err *domain.Error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Message, "code": err.Code})
}
