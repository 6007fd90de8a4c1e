package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ApprovalPolicy controls what an approval decision does to a withdrawal:
// direct-settle moves it straight to completed, two-step parks it at
// approved until a separate settlement confirmation arrives.
type ApprovalPolicy string

const (
	PolicyDirectSettle ApprovalPolicy = "direct-settle"
	PolicyTwoStep      ApprovalPolicy = "two-step"
)

type AppSettings struct {
	WelcomeBonusAmount     decimal.Decimal
	DailyBonusAmount       decimal.Decimal
	DailyCooldownHours     int
	ReferralBonusAmount    decimal.Decimal
	ReferralReferredShare  decimal.Decimal
	MinimumWithdrawal      decimal.Decimal
	ApprovalPolicy         ApprovalPolicy
	RequireMembershipCheck bool
	ReviewerChatIDs        []string
	BotUsername            string
}

var Settings AppSettings

func LoadSettings() {
	Settings = AppSettings{
		WelcomeBonusAmount:     decimalSetting("WELCOME_BONUS_AMOUNT", "2"),
		DailyBonusAmount:       decimalSetting("DAILY_BONUS_AMOUNT", "1"),
		DailyCooldownHours:     intSetting("DAILY_COOLDOWN_HOURS", 24),
		ReferralBonusAmount:    decimalSetting("REFERRAL_BONUS_AMOUNT", "1"),
		ReferralReferredShare:  decimalSetting("REFERRAL_REFERRED_SHARE", "0"),
		MinimumWithdrawal:      decimalSetting("MINIMUM_WITHDRAWAL", "10"),
		ApprovalPolicy:         approvalPolicySetting(),
		RequireMembershipCheck: boolSetting("REQUIRE_MEMBERSHIP_CHECK", false),
		ReviewerChatIDs:        listSetting("REVIEWER_CHAT_IDS"),
		BotUsername:            Config("BOT_USERNAME"),
	}
	log.Printf("✅ Settings loaded: min withdrawal %s, approval policy %s, %d reviewer chat(s)",
		Settings.MinimumWithdrawal, Settings.ApprovalPolicy, len(Settings.ReviewerChatIDs))
}

func decimalSetting(key, fallback string) decimal.Decimal {
	raw := Config(key)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("⚠️ Invalid decimal for %s (%q), using default %s", key, raw, fallback)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func intSetting(key string, fallback int) int {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("⚠️ Invalid integer for %s (%q), using default %d", key, raw, fallback)
		return fallback
	}
	return n
}

func boolSetting(key string, fallback bool) bool {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

func listSetting(key string) []string {
	raw := Config(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func approvalPolicySetting() ApprovalPolicy {
	switch ApprovalPolicy(Config("APPROVAL_POLICY")) {
	case PolicyTwoStep:
		return PolicyTwoStep
	case PolicyDirectSettle, "":
		return PolicyDirectSettle
	default:
		log.Printf("⚠️ Unknown APPROVAL_POLICY %q, using %s", Config("APPROVAL_POLICY"), PolicyDirectSettle)
		return PolicyDirectSettle
	}
}
