package api

import (
	"net/http" // HTTP status codes

	"finance_wallet/internal/auth"       // Credential service
	"finance_wallet/internal/domain"     // Error taxonomy
	"finance_wallet/internal/middleware" // Authenticated user ID
	"finance_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string       `json:"token"` // JWT token
	User  *domain.User `json:"user"`  // Authenticated user
}

// RegisterHandler creates a user account
func RegisterHandler(svc *auth.Service, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.RegisterInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "register", nil)
			return
		}
		user, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, "register", logrus.Fields{"username": req.Username})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
		invalidateUsers(c, cache)
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "login", nil)
			return
		}
		token, user, err := svc.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err, "login", nil)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user}) // Return the token in the response
	}
}

// GetProfileHandler returns the authenticated user
func GetProfileHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.User(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err, "get profile", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateProfileHandler changes the authenticated user's email or password
func UpdateProfileHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.ProfileInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.ErrInvalidInput, "update profile", nil)
			return
		}
		userID := middleware.UserID(c)
		user, err := svc.UpdateProfile(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, err, "update profile", logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
