package services

import (
	"errors"
	"log"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"gorm.io/gorm"
)

// AttachReferrer links a new account to its referrer at first contact.
// First attribution wins: once a referrer is set it is never overwritten,
// and self-referrals and unknown referrers are silent no-ops. Referral links
// are only meaningful the first time someone shows up, so a failed attach is
// not an error the member should ever see.
func AttachReferrer(accountID, referrerID string) {
	if referrerID == "" || referrerID == accountID {
		return
	}

	unlock := lockAccount(accountID)
	defer unlock()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		if account.ReferrerID != nil {
			return nil
		}

		var referrerCount int64
		if err := tx.Model(&models.Account{}).Where("id = ?", referrerID).Count(&referrerCount).Error; err != nil {
			return err
		}
		if referrerCount == 0 {
			log.Printf("Ignoring unknown referrer %s for account %s", referrerID, accountID)
			return nil
		}

		account.ReferrerID = &referrerID
		return tx.Save(account).Error
	})
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		log.Printf("🔥 Failed to attach referrer %s to account %s: %v", referrerID, accountID, err)
	}
}

// SettleReferralCredit pays the referral bonus for a referred account whose
// welcome bonus has been granted. Idempotent under retry: the settled flag is
// checked and flipped inside the same transaction that credits the referrer,
// so N concurrent calls pay exactly once. Returns the credited referrer so
// the caller can notify them after commit, or nil when there was nothing to
// settle.
func SettleReferralCredit(accountID string) (*models.Account, error) {
	var account models.Account
	if err := database.DB.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.ReferrerID == nil || *account.ReferrerID == accountID {
		return nil, nil
	}

	unlock := lockAccounts(accountID, *account.ReferrerID)
	defer unlock()

	var referrer *models.Account
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		referred, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		if referred.ReferralCreditSettled || referred.ReferrerID == nil {
			return nil
		}

		ref, err := loadAccountTx(tx, *referred.ReferrerID)
		if err != nil {
			// Leave the settled flag untouched so nothing is half-paid.
			return err
		}

		ref.Balance = ref.Balance.Add(config.Settings.ReferralBonusAmount)
		ref.TotalReferrals++
		if err := tx.Save(ref).Error; err != nil {
			return err
		}

		if share := config.Settings.ReferralReferredShare; share.Sign() > 0 {
			referred.Balance = referred.Balance.Add(share)
		}
		referred.ReferralCreditSettled = true
		if err := tx.Save(referred).Error; err != nil {
			return err
		}

		referrer = ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	return referrer, nil
}
