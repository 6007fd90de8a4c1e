package services

import (
	"sync"
	"testing"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachReferrerFirstWins(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "ref1", 0)
	mustAccount(t, "ref2", 0)
	mustAccount(t, "newbie", 0)

	AttachReferrer("newbie", "ref1")
	account := reloadAccount(t, "newbie")
	require.NotNil(t, account.ReferrerID)
	assert.Equal(t, "ref1", *account.ReferrerID)

	// A later link click must not reassign attribution.
	AttachReferrer("newbie", "ref2")
	account = reloadAccount(t, "newbie")
	require.NotNil(t, account.ReferrerID)
	assert.Equal(t, "ref1", *account.ReferrerID)
}

func TestAttachReferrerIgnoresSelfAndUnknown(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "solo", 0)

	AttachReferrer("solo", "solo")
	assert.Nil(t, reloadAccount(t, "solo").ReferrerID)

	AttachReferrer("solo", "nobody")
	assert.Nil(t, reloadAccount(t, "solo").ReferrerID)
}

func TestSettleReferralCreditExactlyOnce(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "ref", 0)
	mustAccount(t, "newbie", 0)
	AttachReferrer("newbie", "ref")

	referrer, err := SettleReferralCredit("newbie")
	require.NoError(t, err)
	require.NotNil(t, referrer)
	requireAmount(t, "1", referrer.Balance)
	assert.Equal(t, 1, referrer.TotalReferrals)

	// Settling again pays nothing and reports no referrer to notify.
	referrer, err = SettleReferralCredit("newbie")
	require.NoError(t, err)
	assert.Nil(t, referrer)
	requireAmount(t, "1", reloadAccount(t, "ref").Balance)
	assert.Equal(t, 1, reloadAccount(t, "ref").TotalReferrals)
}

func TestSettleReferralCreditWithoutReferrer(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "solo", 0)

	referrer, err := SettleReferralCredit("solo")
	require.NoError(t, err)
	assert.Nil(t, referrer)

	_, err = SettleReferralCredit("ghost")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestSettleReferralCreditConcurrent(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "ref", 0)
	mustAccount(t, "newbie", 0)
	AttachReferrer("newbie", "ref")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := SettleReferralCredit("newbie")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	referrer := reloadAccount(t, "ref")
	requireAmount(t, "1", referrer.Balance)
	assert.Equal(t, 1, referrer.TotalReferrals)
	assert.True(t, reloadAccount(t, "newbie").ReferralCreditSettled)
}

func TestSettleReferralCreditReferredShare(t *testing.T) {
	setupTestDB(t)
	config.Settings.ReferralReferredShare = decimal.RequireFromString("0.5")
	mustAccount(t, "ref", 0)
	mustAccount(t, "newbie", 0)
	AttachReferrer("newbie", "ref")

	_, err := SettleReferralCredit("newbie")
	require.NoError(t, err)

	requireAmount(t, "1", reloadAccount(t, "ref").Balance)
	requireAmount(t, "0.5", reloadAccount(t, "newbie").Balance)
}
