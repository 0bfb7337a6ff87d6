package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageKeepsBothCauses(t *testing.T) {
	cause := errors.New("connection reset")

	err := Storage("create transaction", cause)

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create transaction")
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify("op", nil))
	assert.Same(t, ErrInsufficientBalance, Classify("op", ErrInsufficientBalance))

	err := Classify("commit", errors.New("deadlock"))
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusPending))
	for _, s := range []string{StatusCompleted, StatusCancelled, StatusRejected} {
		assert.True(t, IsTerminal(s), s)
	}
	assert.False(t, ValidStatus("SETTLED"))
	assert.True(t, ValidType(TypeWithdrawal))
	assert.True(t, ValidWalletStatus(WalletSuspended))
}
