package services

import (
	"errors"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"gorm.io/gorm"
)

// AdmitAndGrantWelcome runs the fingerprint admission check and, on admit,
// stamps the fingerprint and credits the welcome bonus in the same
// transaction. Doing both in one step closes the race where two concurrent
// verifications with a fresh fingerprint both pass the uniqueness check; the
// unique index on network_fingerprint backstops admissions racing across two
// different accounts, where the per-account locks do not overlap.
//
// A shared household or office network can trip the duplicate check for an
// honest second user; that is accepted and surfaced as a warning rather than
// silently merging accounts.
func AdmitAndGrantWelcome(accountID, fingerprint string) (*models.Account, error) {
	unlock := lockAccount(accountID)
	defer unlock()

	var account models.Account
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		loaded, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		account = *loaded

		if account.WelcomeBonusGranted {
			return ErrBonusAlreadyGranted
		}

		var holders int64
		if err := tx.Model(&models.Account{}).
			Where("network_fingerprint = ? AND id <> ?", fingerprint, accountID).
			Count(&holders).Error; err != nil {
			return err
		}
		if holders > 0 {
			return ErrDuplicateFingerprint
		}

		account.NetworkFingerprint = &fingerprint
		account.WelcomeBonusGranted = true
		account.Balance = account.Balance.Add(config.Settings.WelcomeBonusAmount)
		return tx.Save(&account).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateFingerprint
		}
		return nil, err
	}
	return &account, nil
}
