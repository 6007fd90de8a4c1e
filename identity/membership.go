package identity

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	config "github.com/earnhub/rewards-backend/configs"
)

var membershipClient = &http.Client{Timeout: 5 * time.Second}

type chatMemberResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		Status string `json:"status"`
	} `json:"result"`
}

// IsGroupMember checks whether the actor currently satisfies the community
// membership precondition. Fails open: if the chat API is unreachable the
// check passes with a log line, so a platform outage cannot freeze welcome
// bonuses for everyone.
func IsGroupMember(accountID string) bool {
	apiBase := config.Config("CHAT_API_BASE")
	botToken := config.Config("BOT_TOKEN")
	groupID := config.Config("GROUP_ID")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	if botToken == "" || groupID == "" {
		log.Println("⚠️ Membership check not configured, allowing by default")
		return true
	}

	url := fmt.Sprintf("%s/bot%s/getChatMember?chat_id=%s&user_id=%s", apiBase, botToken, groupID, accountID)
	resp, err := membershipClient.Get(url)
	if err != nil {
		log.Printf("⚠️ Membership check failed for %s, allowing: %v", accountID, err)
		return true
	}
	defer resp.Body.Close()

	var body chatMemberResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || !body.OK {
		log.Printf("⚠️ Membership check response unusable for %s, allowing", accountID)
		return true
	}

	switch body.Result.Status {
	case "member", "administrator", "creator":
		return true
	default:
		return false
	}
}
