package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"finance_wallet/internal/accounts"
	"finance_wallet/internal/auth"
	"finance_wallet/internal/domain"
	"finance_wallet/internal/ledger"
	"finance_wallet/internal/testutil"
	"finance_wallet/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type server struct {
	t      *testing.T
	router *gin.Engine
	admin  string // Admin session token
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handle := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := auth.NewService(handle, "test-secret", time.Hour).WithCost(bcrypt.MinCost)
	router, err := NewRouter(Deps{
		Auth:           svc,
		Accounts:       accounts.NewStore(handle),
		Ledger:         ledger.New(handle, "USD"),
		Cache:          utils.NewCache(rdb, time.Minute),
		TrustedProxies: []string{"127.0.0.1"},
	})
	require.NoError(t, err)

	testutil.CreateUser(t, handle, "root", domain.RoleAdmin)
	s := &server{t: t, router: router}
	s.admin = s.login("root", "password123")
	return s
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) login(username, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/user/login", "", gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

// signup registers a user and returns their token
func (s *server) signup(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/user", "", gin.H{"username": username, "password": "secret-pass"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(username, "secret-pass")
}

func (s *server) createAccount(token string) uint {
	s.t.Helper()
	w := s.do(http.MethodPost, "/accounts", token, gin.H{
		"holder_name":    "Alice Example",
		"account_number": "12345678",
		"routing_code":   "021000021",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Account domain.Account `json:"account"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(s.t, resp.Account.IsDefault)
	return resp.Account.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[struct {
		Code string `json:"code"`
	}](t, w).Code
}

func TestDepositSendAndCancel(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	accountID := s.createAccount(alice)

	w := s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": "100.00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dep := decode[walletResponse](t, w)
	assert.Equal(t, domain.StatusPending, dep.Transaction.Status)
	assert.True(t, dep.Wallet.Balance.Equal(testutil.Dec("100")))

	w = s.do(http.MethodPost, "/wallet/send", alice, gin.H{"amount": 40, "account_id": accountID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sent := decode[walletResponse](t, w)
	assert.Equal(t, domain.TypeWithdrawal, sent.Transaction.Type)
	assert.True(t, sent.Wallet.Balance.Equal(testutil.Dec("60")))

	w = s.do(http.MethodPost, "/admin/transactions/review", s.admin, gin.H{
		"transaction_id": sent.Transaction.ID,
		"status":         "cancelled",
		"note":           "bank details mismatch",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	review := decode[ledger.ReviewResult](t, w)
	assert.True(t, review.WalletUpdated)
	require.NotNil(t, review.NewBalance)
	assert.True(t, review.NewBalance.Equal(testutil.Dec("100")))

	// Reviewing again is refused
	w = s.do(http.MethodPost, "/admin/transactions/review", s.admin, gin.H{
		"transaction_id": sent.Transaction.ID,
		"status":         "COMPLETED",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, w))

	w = s.do(http.MethodGet, "/wallet/transactions/"+strconv.FormatUint(uint64(sent.Transaction.ID), 10), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Transaction domain.Transaction `json:"transaction"`
	}](t, w)
	assert.Equal(t, domain.StatusCancelled, got.Transaction.Status)
	assert.Equal(t, "bank details mismatch", got.Transaction.Note)
}

func TestWalletIsCachedUntilWrite(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")

	type walletBody struct {
		Wallet domain.Wallet `json:"wallet"`
		Cached bool          `json:"cached"`
	}
	w := s.do(http.MethodGet, "/wallet", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[walletBody](t, w)
	assert.False(t, first.Cached)
	assert.True(t, first.Wallet.Balance.IsZero())

	second := decode[walletBody](t, s.do(http.MethodGet, "/wallet", alice, nil))
	assert.True(t, second.Cached)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": 25}).Code)
	third := decode[walletBody](t, s.do(http.MethodGet, "/wallet", alice, nil))
	assert.False(t, third.Cached)
	assert.True(t, third.Wallet.Balance.Equal(testutil.Dec("25")))
}

func TestWalletErrors(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	accountID := s.createAccount(alice)

	for _, amount := range []any{"abc", -5, 0, "1.001", nil} {
		w := s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": amount})
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %v", amount)
		assert.Equal(t, "INVALID_AMOUNT", errorCode(t, w), "amount %v", amount)
	}

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": 10}).Code)
	w := s.do(http.MethodPost, "/wallet/send", alice, gin.H{"amount": 10.5, "account_id": accountID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", errorCode(t, w))

	w = s.do(http.MethodPost, "/wallet/send", alice, gin.H{"amount": 1, "account_id": accountID + 100})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", errorCode(t, w))
}

func TestAccessControl(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")

	w := s.do(http.MethodGet, "/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, w))

	w = s.do(http.MethodGet, "/wallet", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/admin/transactions", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = s.do(http.MethodPost, "/user/login", "", gin.H{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))

	w = s.do(http.MethodPost, "/user", "", gin.H{"username": "Alice", "password": "secret-pass"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USER_EXISTS", errorCode(t, w))
}

func TestAdminListings(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	bob := s.signup("bob")
	accountID := s.createAccount(alice)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": 50}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/wallet/send", alice, gin.H{"amount": 20, "account_id": accountID}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/wallet/deposit", bob, gin.H{"amount": 5}).Code)

	type listBody struct {
		Result ledger.TransactionPage `json:"result"`
		Cached bool                   `json:"cached"`
	}
	w := s.do(http.MethodGet, "/admin/transactions?type=withdrawal", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode[listBody](t, w)
	require.Len(t, list.Result.Transactions, 1)
	txn := list.Result.Transactions[0]
	require.NotNil(t, txn.User)
	assert.Equal(t, "alice", txn.User.Username)
	require.NotNil(t, txn.Account)
	assert.Equal(t, "12345678", txn.Account.AccountNumber)

	cached := decode[listBody](t, s.do(http.MethodGet, "/admin/transactions?type=withdrawal", s.admin, nil))
	assert.True(t, cached.Cached)

	all := decode[listBody](t, s.do(http.MethodGet, "/admin/transactions?status=PENDING", s.admin, nil))
	assert.Equal(t, int64(3), all.Result.Total)

	w = s.do(http.MethodGet, "/admin/transactions?status=LOST", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/admin/transactions?from=yesterday", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/admin/users", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[struct {
		Result usersPage `json:"result"`
	}](t, w)
	assert.Equal(t, int64(3), users.Result.Total)
}

func TestAdminWalletControls(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": 30}).Code)

	profile := decode[struct {
		User domain.User `json:"user"`
	}](t, s.do(http.MethodGet, "/user", alice, nil))
	path := "/admin/wallets/" + strconv.FormatUint(uint64(profile.User.ID), 10)

	w := s.do(http.MethodGet, path+"/reconcile", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[ledger.Reconciliation](t, w)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.Balance.Equal(testutil.Dec("30")))

	w = s.do(http.MethodPut, path+"/status", s.admin, gin.H{"status": "suspended"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/wallet/deposit", alice, gin.H{"amount": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "WALLET_INACTIVE", errorCode(t, w))

	w = s.do(http.MethodPut, path+"/status", s.admin, gin.H{"status": "FROZEN"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/admin/users/"+strconv.FormatUint(uint64(profile.User.ID), 10)+"/verify", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	verified := decode[struct {
		User domain.User `json:"user"`
	}](t, w)
	assert.True(t, verified.User.Verified)
}

func TestParseAmount(t *testing.T) {
	for raw, ok := range map[string]bool{
		`12.50`:   true,
		`"12.50"`: true,
		`"abc"`:   false,
		`null`:    false,
		``:        false,
	} {
		_, err := parseAmount(json.RawMessage(raw))
		assert.Equal(t, ok, err == nil, raw)
	}
}

func TestAdminUsersRefreshAfterSignupAndWallet(t *testing.T) {
	s := newServer(t)
	s.signup("alice")

	type usersBody struct {
		Result usersPage `json:"result"`
		Cached bool      `json:"cached"`
	}
	first := decode[usersBody](t, s.do(http.MethodGet, "/admin/users", s.admin, nil))
	assert.Equal(t, int64(2), first.Result.Total)
	assert.True(t, decode[usersBody](t, s.do(http.MethodGet, "/admin/users", s.admin, nil)).Cached)

	bob := s.signup("bob")
	afterSignup := decode[usersBody](t, s.do(http.MethodGet, "/admin/users", s.admin, nil))
	assert.False(t, afterSignup.Cached)
	assert.Equal(t, int64(3), afterSignup.Result.Total)

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/wallet", bob, nil).Code)
	afterWallet := decode[usersBody](t, s.do(http.MethodGet, "/admin/users", s.admin, nil))
	assert.False(t, afterWallet.Cached)
	for _, u := range afterWallet.Result.Users {
		if u.Username == "bob" {
			assert.NotNil(t, u.Wallet)
		}
	}
}
