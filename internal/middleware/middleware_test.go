package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance_wallet/internal/auth"
	"finance_wallet/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeSessions map[string]*auth.Identity

func (f fakeSessions) Verify(token string) (*auth.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, domain.ErrUnauthenticated
}

type fakeUsers map[uint]*domain.User

func (f fakeUsers) User(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessions := fakeSessions{
		"user-token":  {UserID: 1, Role: domain.RoleUser},
		"admin-token": {UserID: 2, Role: domain.RoleAdmin},
		// claims say admin but the database disagrees
		"stale-token": {UserID: 3, Role: domain.RoleAdmin},
		"ghost-token": {UserID: 9, Role: domain.RoleAdmin},
	}
	users := fakeUsers{
		1: {ID: 1, Role: domain.RoleUser},
		2: {ID: 2, Role: domain.RoleAdmin},
		3: {ID: 3, Role: domain.RoleUser},
	}
	r := gin.New()
	r.Use(RequestLogger())
	authed := r.Group("/", JWTAuthMiddleware(sessions))
	authed.GET("/me", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": UserID(c)}) })
	authed.GET("/admin", AdminOnlyMiddleware(users), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newEngine()
	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Token user-token", http.StatusUnauthorized},
		{"Bearer bogus", http.StatusUnauthorized},
		{"Bearer user-token", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.header)
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	r := newEngine()
	cases := map[string]int{
		"user-token":  http.StatusForbidden,
		"admin-token": http.StatusNoContent,
		"stale-token": http.StatusForbidden,
		"ghost-token": http.StatusForbidden,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
		if want == http.StatusForbidden {
			assert.Contains(t, w.Body.String(), domain.ErrUnauthorized.Code)
		}
	}
}
