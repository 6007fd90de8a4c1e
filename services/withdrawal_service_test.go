package services

import (
	"sync"
	"testing"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundedAccount(t *testing.T, id string, balance int64) *models.Account {
	t.Helper()
	account := mustAccount(t, id, balance)
	require.NoError(t, SetPayoutTarget(id, "member@upi"))
	return account
}

func TestRequestWithdrawalEscrow(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, request.Status)
	requireAmount(t, "25", request.Amount)
	assert.Equal(t, "member@upi", request.PayoutTarget)
	requireAmount(t, "0", reloadAccount(t, "u1").Balance)
}

func TestRequestWithdrawalValidation(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)

	_, err := RequestWithdrawal("u1", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = RequestWithdrawal("u1", decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// One below the minimum fails, the minimum itself passes.
	_, err = RequestWithdrawal("u1", decimal.NewFromInt(9))
	assert.ErrorIs(t, err, ErrBelowMinimum)

	_, err = RequestWithdrawal("u1", decimal.NewFromInt(10))
	assert.NoError(t, err)
}

func TestRequestWithdrawalMissingTarget(t *testing.T) {
	setupTestDB(t)
	mustAccount(t, "u1", 25)

	_, err := RequestWithdrawal("u1", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrPayoutTargetMissing)
}

func TestRequestWithdrawalInsufficientFunds(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 5)

	_, err := RequestWithdrawal("u1", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// A refused request leaves no row and no debit behind.
	var count int64
	database.DB.Model(&models.WithdrawalRequest{}).Count(&count)
	assert.Zero(t, count)
	requireAmount(t, "5", reloadAccount(t, "u1").Balance)
}

func TestPayoutTargetSnapshot(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(10))
	require.NoError(t, err)

	// Rebinding after the request must not redirect the pending payout.
	require.NoError(t, SetPayoutTarget("u1", "elsewhere@upi"))
	reloaded, err := GetWithdrawal(request.ID)
	require.NoError(t, err)
	assert.Equal(t, "member@upi", reloaded.PayoutTarget)
}

func TestDecideWithdrawalReject(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)
	reviewer := mustReviewer(t)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)

	decided, err := DecideWithdrawal(request.ID, false, reviewer, "target looks off")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, decided.Status)
	require.NotNil(t, decided.ReviewerNotes)
	assert.Equal(t, "target looks off", *decided.ReviewerNotes)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, reviewer.ID.String(), *decided.DecidedBy)

	// Rejection restores the escrowed amount in full.
	requireAmount(t, "25", reloadAccount(t, "u1").Balance)
}

func TestDecideWithdrawalApproveDirectSettle(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)
	reviewer := mustReviewer(t)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)

	decided, err := DecideWithdrawal(request.ID, true, reviewer, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, decided.Status)
	requireAmount(t, "0", reloadAccount(t, "u1").Balance)
}

func TestDecideWithdrawalTwoStep(t *testing.T) {
	setupTestDB(t)
	config.Settings.ApprovalPolicy = config.PolicyTwoStep
	fundedAccount(t, "u1", 25)
	reviewer := mustReviewer(t)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)

	decided, err := DecideWithdrawal(request.ID, true, reviewer, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalApproved, decided.Status)

	settled, err := ConfirmSettlement(request.ID, reviewer)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, settled.Status)
	requireAmount(t, "0", reloadAccount(t, "u1").Balance)
}

func TestConfirmSettlementGuards(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 50)
	reviewer := mustReviewer(t)

	pending, err := RequestWithdrawal("u1", decimal.NewFromInt(10))
	require.NoError(t, err)

	// A pending request has no approval to confirm.
	_, err = ConfirmSettlement(pending.ID, reviewer)
	assert.ErrorIs(t, err, ErrNotApproved)

	done, err := DecideWithdrawal(pending.ID, true, reviewer, "")
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalCompleted, done.Status)

	_, err = ConfirmSettlement(pending.ID, reviewer)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestDecideWithdrawalDoubleDecision(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)
	reviewer := mustReviewer(t)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)

	_, err = DecideWithdrawal(request.ID, false, reviewer, "")
	require.NoError(t, err)

	// The refund must not be paid twice.
	_, err = DecideWithdrawal(request.ID, false, reviewer, "")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	requireAmount(t, "25", reloadAccount(t, "u1").Balance)

	_, err = DecideWithdrawal(request.ID, true, reviewer, "")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestDecideWithdrawalConcurrent(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)
	reviewer := mustReviewer(t)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)

	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := DecideWithdrawal(request.ID, false, reviewer, ""); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrAlreadyDecided)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	requireAmount(t, "25", reloadAccount(t, "u1").Balance)
}

func TestDecideWithdrawalAuthorization(t *testing.T) {
	setupTestDB(t)
	fundedAccount(t, "u1", 25)

	request, err := RequestWithdrawal("u1", decimal.NewFromInt(25))
	require.NoError(t, err)

	_, err = DecideWithdrawal(request.ID, true, nil, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	inactive := mustReviewer(t)
	inactive.IsActive = false
	_, err = DecideWithdrawal(request.ID, true, inactive, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	requireAmount(t, "0", reloadAccount(t, "u1").Balance)
	reloaded, err := GetWithdrawal(request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, reloaded.Status)
}

func TestGetWithdrawalNotFound(t *testing.T) {
	setupTestDB(t)
	_, err := GetWithdrawal(9999)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	reviewer := mustReviewer(t)
	_, err = DecideWithdrawal(9999, true, reviewer, "")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
