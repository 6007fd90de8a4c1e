package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/identity"
	"github.com/earnhub/rewards-backend/notifications"
	"github.com/earnhub/rewards-backend/services"
	"github.com/earnhub/rewards-backend/utils"
	"github.com/gofiber/fiber/v2"
)

// VerifyAccount runs the join/verify flow: resolve the network fingerprint,
// optionally enforce the group-membership precondition, admit the
// fingerprint and grant the welcome bonus, then settle the referral credit.
// Re-verification of an already-granted account is a friendly no-op, a
// duplicate fingerprint a warning; neither mutates anything.
func VerifyAccount(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	if config.Settings.RequireMembershipCheck && !identity.IsGroupMember(accountID) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Please join the community group before claiming the welcome bonus",
		})
	}

	fingerprint := identity.ResolveFingerprint(accountID, c.IP())

	account, err := services.AdmitAndGrantWelcome(accountID, fingerprint)
	if err != nil {
		if errors.Is(err, services.ErrBonusAlreadyGranted) {
			// Re-verification is allowed but must not re-grant. A referral
			// settle that failed on the original grant gets another chance
			// here; settling is idempotent.
			if referrer, settleErr := services.SettleReferralCredit(accountID); settleErr == nil && referrer != nil {
				go notifications.Notify(referrer.ID, fmt.Sprintf(
					"🎉 You earned %s for an invite!", config.Settings.ReferralBonusAmount))
			}
			return c.JSON(fiber.Map{"message": "You are already verified and have your bonus."})
		}
		return serviceError(c, err)
	}

	referrer, settleErr := services.SettleReferralCredit(accountID)
	if settleErr != nil {
		// The welcome bonus is committed; the settle retries on the next
		// verification attempt rather than rolling anything back.
		log.Printf("⚠️ Referral settle deferred for %s: %v", accountID, settleErr)
	}
	if referrer != nil {
		name := accountID
		if account.DisplayName != nil {
			name = *account.DisplayName
		}
		go notifications.Notify(referrer.ID, fmt.Sprintf(
			"🎉 You earned %s for inviting %s!", config.Settings.ReferralBonusAmount, name))
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("🎉 %s welcome bonus added!", config.Settings.WelcomeBonusAmount),
		"balance": account.Balance,
	})
}

func GetBalance(c *fiber.Ctx) error {
	account, err := services.GetAccount(accountIDFromToken(c))
	if err != nil {
		return serviceError(c, err)
	}

	payoutTarget := "not set"
	if account.PayoutTarget != nil {
		payoutTarget = *account.PayoutTarget
	}
	return c.JSON(fiber.Map{
		"balance":         account.Balance,
		"total_referrals": account.TotalReferrals,
		"payout_target":   payoutTarget,
	})
}

func GetReferralInfo(c *fiber.Ctx) error {
	account, err := services.GetAccount(accountIDFromToken(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"total_referrals": account.TotalReferrals,
		"reward_each":     config.Settings.ReferralBonusAmount,
		"referral_link":   utils.BuildReferralLink(account.ID),
	})
}

func ClaimDailyBonus(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	newBalance, remaining, err := services.ClaimDaily(accountID)
	if err != nil {
		if errors.Is(err, services.ErrCooldownActive) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":     services.ErrCooldownActive.Error(),
				"remaining": remaining.Round(time.Second).String(),
			})
		}
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("🎁 %s daily bonus added!", config.Settings.DailyBonusAmount),
		"balance": newBalance,
	})
}
