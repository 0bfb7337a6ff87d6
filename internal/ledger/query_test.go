package ledger

import (
	"context"
	"testing"
	"time"

	"finance_wallet/internal/domain"
	"finance_wallet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTransactionsFiltersAndJoins(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, f.db, "bob", domain.RoleUser)
	acct := testutil.CreateAccount(t, f.db, f.user.ID, "000123", true)

	_, _, err := f.ledger.Deposit(ctx, f.user.ID, testutil.Dec("100"), "")
	require.NoError(t, err)
	send, _, err := f.ledger.Send(ctx, f.user.ID, testutil.Dec("10"), acct.ID, "")
	require.NoError(t, err)
	_, _, err = f.ledger.Deposit(ctx, bob.ID, testutil.Dec("7"), "")
	require.NoError(t, err)

	all, err := f.ledger.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, 1, all.TotalPages)
	assert.Equal(t, DefaultPageSize, all.PageSize)

	mine, err := f.ledger.ListTransactions(ctx, TransactionFilter{UserID: f.user.ID, Type: domain.TypeWithdrawal})
	require.NoError(t, err)
	require.Len(t, mine.Transactions, 1)
	got := mine.Transactions[0]
	assert.Equal(t, send.ID, got.ID)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)
	require.NotNil(t, got.Account)
	assert.Equal(t, "000123", got.Account.AccountNumber)

	pending, err := f.ledger.ListTransactions(ctx, TransactionFilter{Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Zero(t, pending.Total)
	assert.Empty(t, pending.Transactions)
}

func TestListTransactionsPaging(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _, err := f.ledger.Deposit(ctx, f.user.ID, testutil.Dec("1"), "")
		require.NoError(t, err)
	}

	page, err := f.ledger.ListTransactions(ctx, TransactionFilter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Transactions, 1)

	clamped, err := f.ledger.ListTransactions(ctx, TransactionFilter{Page: -1, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, DefaultPageSize, clamped.PageSize)
}

func TestListTransactionsDateRange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, _, err := f.ledger.Deposit(ctx, f.user.ID, testutil.Dec("1"), "")
	require.NoError(t, err)

	hourAgo := time.Now().Add(-time.Hour)
	since, err := f.ledger.ListTransactions(ctx, TransactionFilter{From: &hourAgo})
	require.NoError(t, err)
	assert.Equal(t, int64(1), since.Total)

	before, err := f.ledger.ListTransactions(ctx, TransactionFilter{To: &hourAgo})
	require.NoError(t, err)
	assert.Zero(t, before.Total)
}

func TestListTransactionsRejectsUnknownFilters(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.ListTransactions(context.Background(), TransactionFilter{Status: "' OR 1=1 --"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.ListTransactions(context.Background(), TransactionFilter{Type: "TRANSFER"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
