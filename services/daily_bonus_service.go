package services

import (
	"time"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Now is swapped out by tests to pin the clock.
var Now = time.Now

// ClaimDaily credits the daily bonus when the cooldown has elapsed. The
// elapsed check and the claim stamp happen under the account lock, so two
// near-simultaneous taps from the same member grant at most once.
// On denial the remaining cooldown is returned alongside ErrCooldownActive.
func ClaimDaily(accountID string) (decimal.Decimal, time.Duration, error) {
	unlock := lockAccount(accountID)
	defer unlock()

	cooldown := time.Duration(config.Settings.DailyCooldownHours) * time.Hour

	var newBalance decimal.Decimal
	var remaining time.Duration
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}

		now := Now().UTC()
		if account.LastDailyClaimAt != nil {
			if elapsed := now.Sub(*account.LastDailyClaimAt); elapsed < cooldown {
				remaining = cooldown - elapsed
				return ErrCooldownActive
			}
		}

		account.Balance = account.Balance.Add(config.Settings.DailyBonusAmount)
		account.LastDailyClaimAt = &now
		newBalance = account.Balance
		return tx.Save(account).Error
	})
	if err != nil {
		return decimal.Zero, remaining, err
	}
	return newBalance, 0, nil
}
