package services

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateAccount(t *testing.T) {
	setupTestDB(t)

	first, err := GetOrCreateAccount("100", "alice")
	require.NoError(t, err)
	require.NotNil(t, first.DisplayName)
	assert.Equal(t, "alice", *first.DisplayName)
	requireAmount(t, "0", first.Balance)

	// Absent display name must not clobber the stored one.
	second, err := GetOrCreateAccount("100", "")
	require.NoError(t, err)
	require.NotNil(t, second.DisplayName)
	assert.Equal(t, "alice", *second.DisplayName)

	// A changed display name is picked up.
	third, err := GetOrCreateAccount("100", "alice2")
	require.NoError(t, err)
	assert.Equal(t, "alice2", *third.DisplayName)
}

func TestCreditAndDebit(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "200", 0)

	balance, err := Credit("200", decimal.NewFromInt(10))
	require.NoError(t, err)
	requireAmount(t, "10", balance)

	balance, err = Debit("200", decimal.NewFromInt(4))
	require.NoError(t, err)
	requireAmount(t, "6", balance)

	_, err = Debit("200", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	requireAmount(t, "6", reloadAccount(t, "200").Balance)

	_, err = Credit("200", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Debit("200", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Credit("missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestConcurrentCreditsSumExactly(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "300", 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Credit("300", decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	requireAmount(t, "100", reloadAccount(t, "300").Balance)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "301", 50)

	var succeeded int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Debit("301", decimal.NewFromInt(1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50, succeeded)
	requireAmount(t, "0", reloadAccount(t, "301").Balance)
}

func TestSetPayoutTarget(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "400", 0)

	require.NoError(t, SetPayoutTarget("400", "9876543210@paytm"))
	account := reloadAccount(t, "400")
	require.NotNil(t, account.PayoutTarget)
	assert.Equal(t, "9876543210@paytm", *account.PayoutTarget)

	require.NoError(t, SetPayoutTarget("400", "some.user_name-1@upi"))

	for _, bad := range []string{"", "no-at-sign", "user@", "user@x", "user@12", "user name@paytm", "@paytm"} {
		assert.ErrorIs(t, SetPayoutTarget("400", bad), ErrInvalidPayoutTarget, "target %q", bad)
	}

	assert.ErrorIs(t, SetPayoutTarget("missing", "user@paytm"), ErrAccountNotFound)
}
