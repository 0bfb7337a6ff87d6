package api

import (
	"finance_wallet/internal/accounts"   // Account store
	"finance_wallet/internal/auth"       // Credential service
	"finance_wallet/internal/ledger"     // Wallet ledger
	"finance_wallet/internal/middleware" // Auth and logging middleware
	"finance_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps are the services the HTTP layer is built from
type Deps struct {
	Auth           *auth.Service   // Credentials and sessions
	Accounts       *accounts.Store // Linked bank accounts
	Ledger         *ledger.Ledger  // Wallets and transactions
	Cache          *utils.Cache    // Optional Redis cache, nil disables caching
	TrustedProxies []string        // Proxies trusted for client IPs
	IsProd         bool            // Release mode
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(d Deps) (*gin.Engine, error) {
	// Set Mode to Release if in production
	if d.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	requireUser := middleware.JWTAuthMiddleware(d.Auth)

	// Auth routes
	r.POST("/user", RegisterHandler(d.Auth, d.Cache)) // Registration endpoint
	r.POST("/user/login", LoginHandler(d.Auth))       // Login endpoint

	userGroup := r.Group("/user", requireUser)
	userGroup.GET("", GetProfileHandler(d.Auth))    // Profile endpoint
	userGroup.PUT("", UpdateProfileHandler(d.Auth)) // Profile update endpoint

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet", requireUser)
	walletGroup.GET("", GetWalletHandler(d.Ledger, d.Cache))                          // Get wallet endpoint
	walletGroup.POST("/deposit", DepositHandler(d.Ledger, d.Cache))                   // Deposit endpoint
	walletGroup.POST("/send", SendHandler(d.Ledger, d.Cache))                         // Send endpoint
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(d.Ledger, d.Cache)) // Transaction history endpoint
	walletGroup.GET("/transactions/:id", GetTransactionHandler(d.Ledger))             // Single transaction endpoint

	// Account routes (protected by JWT)
	accountGroup := r.Group("/accounts", requireUser)
	accountGroup.GET("", ListAccountsHandler(d.Accounts))
	accountGroup.POST("", CreateAccountHandler(d.Accounts))
	accountGroup.GET("/:id", GetAccountHandler(d.Accounts))
	accountGroup.PUT("/:id", UpdateAccountHandler(d.Accounts))
	accountGroup.DELETE("/:id", DeleteAccountHandler(d.Accounts))
	accountGroup.POST("/:id/default", SetDefaultAccountHandler(d.Accounts))

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin", requireUser, middleware.AdminOnlyMiddleware(d.Auth))
	adminGroup.GET("/users", ListUsersHandler(d.Auth, d.Cache))                          // List users endpoint
	adminGroup.POST("/users/:id/verify", VerifyUserHandler(d.Auth, d.Cache))             // Verify user endpoint
	adminGroup.GET("/transactions", ListTransactionsHandler(d.Ledger, d.Cache))          // List transactions endpoint
	adminGroup.POST("/transactions/review", ReviewTransactionHandler(d.Ledger, d.Cache)) // Review endpoint
	adminGroup.PUT("/wallets/:user_id/status", SetWalletStatusHandler(d.Ledger, d.Cache))
	adminGroup.GET("/wallets/:user_id/reconcile", ReconcileWalletHandler(d.Ledger))

	return r, nil
}
