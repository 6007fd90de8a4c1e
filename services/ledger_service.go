package services

import (
	"errors"
	"regexp"
	"sync"

	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Every balance or flag mutation on an account goes through its lock, so a
// read-check-write on one account is never interleaved with another. The DB
// transaction inside gives atomicity; the lock gives per-account ordering.
var accountLocks sync.Map

func lockAccount(accountID string) func() {
	mu, _ := accountLocks.LoadOrStore(accountID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// lockAccounts takes both locks in id order so two cross-account operations
// touching the same pair can never deadlock.
func lockAccounts(a, b string) func() {
	if a == b {
		return lockAccount(a)
	}
	if b < a {
		a, b = b, a
	}
	first := lockAccount(a)
	second := lockAccount(b)
	return func() {
		second()
		first()
	}
}

// payoutTargetPattern: alphanumeric/dot/dash/underscore local part, "@",
// a 2+ letter provider suffix.
var payoutTargetPattern = regexp.MustCompile(`^[0-9A-Za-z.\-_]+@[A-Za-z]{2,}$`)

// GetOrCreateAccount upserts the ledger row for an identity. An existing
// display name is kept when the incoming one is empty or unchanged.
func GetOrCreateAccount(accountID, displayName string) (*models.Account, error) {
	unlock := lockAccount(accountID)
	defer unlock()

	var account models.Account
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			account = models.Account{ID: accountID, Balance: decimal.Zero}
			if displayName != "" {
				account.DisplayName = &displayName
			}
			return tx.Create(&account).Error
		}

		if displayName != "" && (account.DisplayName == nil || *account.DisplayName != displayName) {
			account.DisplayName = &displayName
			return tx.Save(&account).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func GetAccount(accountID string) (*models.Account, error) {
	var account models.Account
	if err := database.DB.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Credit adds amount to the account's balance.
func Credit(accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := lockAccount(accountID)
	defer unlock()

	var newBalance decimal.Decimal
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		account.Balance = account.Balance.Add(amount)
		newBalance = account.Balance
		return tx.Save(account).Error
	})
	return newBalance, err
}

// Debit removes amount from the account's balance, failing when the result
// would be negative. Nothing is persisted on failure.
func Debit(accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := lockAccount(accountID)
	defer unlock()

	var newBalance decimal.Decimal
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		account.Balance = account.Balance.Sub(amount)
		newBalance = account.Balance
		return tx.Save(account).Error
	})
	return newBalance, err
}

// SetPayoutTarget validates and binds the payout address. Pending withdrawal
// requests keep their own snapshot and are unaffected.
func SetPayoutTarget(accountID, target string) error {
	if !payoutTargetPattern.MatchString(target) {
		return ErrInvalidPayoutTarget
	}

	unlock := lockAccount(accountID)
	defer unlock()

	return database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		account.PayoutTarget = &target
		return tx.Save(account).Error
	})
}

func loadAccountTx(tx *gorm.DB, accountID string) (*models.Account, error) {
	var account models.Account
	if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}
