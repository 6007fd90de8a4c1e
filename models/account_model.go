package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one ledger row per distinct chat identity. The ID is the
// stable identity key handed to us by the gateway, not something we mint.
type Account struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	DisplayName *string         `gorm:"size:255" json:"display_name"`
	Balance     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`

	ReferrerID     *string `gorm:"size:64;index" json:"referrer_id,omitempty"`
	TotalReferrals int     `gorm:"not null;default:0" json:"total_referrals"`

	// Set once, at welcome-bonus grant time. Unique across accounts; the
	// partial index lets any number of unverified accounts stay NULL.
	NetworkFingerprint *string `gorm:"size:128;uniqueIndex" json:"-"`

	PayoutTarget *string `gorm:"size:255" json:"payout_target,omitempty"`

	WelcomeBonusGranted   bool       `gorm:"not null;default:false" json:"welcome_bonus_granted"`
	ReferralCreditSettled bool       `gorm:"not null;default:false" json:"-"`
	LastDailyClaimAt      *time.Time `json:"last_daily_claim_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
