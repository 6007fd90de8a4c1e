package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// setupTestDB points the package at a fresh in-memory database and resets
// settings and clock to known defaults. One connection only, so concurrent
// goroutines serialize on the pool the way per-account operations serialize
// on their locks in production.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_busy_timeout=5000",
		atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.WithdrawalRequest{}, &models.Reviewer{}))

	database.DB = db
	config.Settings = config.AppSettings{
		WelcomeBonusAmount:    decimal.NewFromInt(2),
		DailyBonusAmount:      decimal.NewFromInt(1),
		DailyCooldownHours:    24,
		ReferralBonusAmount:   decimal.NewFromInt(1),
		ReferralReferredShare: decimal.Zero,
		MinimumWithdrawal:     decimal.NewFromInt(10),
		ApprovalPolicy:        config.PolicyDirectSettle,
	}
	Now = time.Now

	t.Cleanup(func() {
		sqlDB.Close()
	})
}

func mustAccount(t *testing.T, id string, balance int64) *models.Account {
	t.Helper()
	account := &models.Account{ID: id, Balance: decimal.NewFromInt(balance)}
	require.NoError(t, database.DB.Create(account).Error)
	return account
}

func reloadAccount(t *testing.T, id string) *models.Account {
	t.Helper()
	var account models.Account
	require.NoError(t, database.DB.First(&account, "id = ?", id).Error)
	return &account
}

func mustReviewer(t *testing.T) *models.Reviewer {
	t.Helper()
	reviewer := &models.Reviewer{
		FullName: "Test Reviewer",
		Email:    fmt.Sprintf("reviewer%d@example.com", atomic.AddInt64(&testDBSeq, 1)),
		Password: "irrelevant",
		IsActive: true,
	}
	require.NoError(t, database.DB.Create(reviewer).Error)
	return reviewer
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	wantDec := decimal.RequireFromString(want)
	require.True(t, wantDec.Equal(got), "expected amount %s, got %s", want, got)
}
