package utils

import (
	"fmt"

	config "github.com/earnhub/rewards-backend/configs"
)

// BuildReferralLink produces the deep link a member shares to refer others.
// The start parameter carries the referrer's account id; the gateway echoes
// it back on the referred member's first session.
func BuildReferralLink(accountID string) string {
	if config.Settings.BotUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", config.Settings.BotUsername, accountID)
}
