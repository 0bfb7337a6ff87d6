package auth

import (
	"context" // Request scoped cancellation
	"errors"  // Error comparison
	"regexp"  // Username validation
	"strings" // Normalisation
	"time"    // Token lifetime

	"finance_wallet/internal/domain" // Importing domain models
	"finance_wallet/internal/utils"  // JWT helpers

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z]{3,32}$`) // Alphabetic characters only

// isValidUsername checks if the username contains only alphabetic characters
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64 // bcrypt ignores bytes past 72
}

// Identity is what a verified session token proves about the caller
type Identity struct {
	UserID uint
	Role   string
}

// RegisterInput is a new user's credentials
type RegisterInput struct {
	Username string `json:"username" binding:"required"`             // Username must be provided
	Password string `json:"password" binding:"required"`             // Password must be provided
	Email    string `json:"email" binding:"omitempty,email,max=255"` // Optional contact address
}

// ProfileInput changes a user's email and/or password
type ProfileInput struct {
	Email           *string `json:"email" binding:"omitempty,email,max=255"` // New email, empty string clears it
	CurrentPassword string  `json:"current_password"`                        // Required to change the password
	NewPassword     string  `json:"new_password"`                            // New password, optional
}

// Service verifies credentials and issues signed session tokens
type Service struct {
	db     *gorm.DB      // Injected data-access handle
	secret string        // HMAC key for tokens
	ttl    time.Duration // Token lifetime
	cost   int           // bcrypt cost
}

// NewService builds the credential service
func NewService(db *gorm.DB, secret string, ttl time.Duration) *Service {
	return &Service{db: db, secret: secret, ttl: ttl, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost, tests use bcrypt.MinCost
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Register creates a user with a hashed password
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if !isValidUsername(in.Username) || !isValidPassword(in.Password) {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	// Lowercase username to ensure uniqueness
	user := &domain.User{Username: strings.ToLower(in.Username), Password: string(hash), Role: domain.RoleUser}
	if email := normalizeEmail(in.Email); email != "" {
		user.Email = &email
	}
	db := s.db.WithContext(ctx)
	if taken, err := s.taken(db, user.Username, user.Email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrUserExists
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserExists // Lost a race with a concurrent registration
		}
		return nil, domain.Storage("create user", err)
	}
	return user, nil
}

// Authenticate checks a username/password pair and issues a session token
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, domain.Storage("find user", err)
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(user.ID, user.Role, s.secret, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Verify checks a session token's signature and expiry
func (s *Service) Verify(token string) (*Identity, error) {
	claims, err := utils.ParseJWT(token, s.secret)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return &Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// User loads a user by ID
func (s *Service) User(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, domain.Storage("get user", err)
	}
	return &user, nil
}

// UpdateProfile changes the email and/or password of a user
func (s *Service) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*domain.User, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	updates := map[string]any{}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			updates["email"] = nil
		} else {
			if taken, err := s.taken(db, "", &email, user.ID); err != nil {
				return nil, err
			} else if taken {
				return nil, domain.ErrUserExists
			}
			updates["email"] = email
		}
	}
	if in.NewPassword != "" {
		if !isValidPassword(in.NewPassword) {
			return nil, domain.ErrInvalidInput
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hash)
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, domain.Storage("update user", err)
	}
	return s.User(ctx, id)
}

// ListUsers returns a page of users with their wallets
func (s *Service) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, domain.Storage("count users", err)
	}
	users := []domain.User{}
	err := db.Preload("Wallet").Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, domain.Storage("list users", err)
	}
	return users, total, nil
}

// MarkVerified records that an administrator verified the user
func (s *Service) MarkVerified(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Verified {
		return user, nil // Keep the original verification time
	}
	now := time.Now()
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{"verified": true, "verified_at": now}).Error
	if err != nil {
		return nil, domain.Storage("verify user", err)
	}
	return s.User(ctx, id)
}

// taken reports whether another user already holds the username or email
func (s *Service) taken(db *gorm.DB, username string, email *string, exceptID uint) (bool, error) {
	q := db.Model(&domain.User{}).Where("id <> ?", exceptID)
	switch {
	case username != "" && email != nil:
		q = q.Where("username = ? OR email = ?", username, *email)
	case username != "":
		q = q.Where("username = ?", username)
	case email != nil:
		q = q.Where("email = ?", *email)
	default:
		return false, nil
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, domain.Storage("check user", err)
	}
	return n > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
