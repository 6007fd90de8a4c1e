package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/earnhub/rewards-backend/configs"
)

// ChatService delivers messages through the chat platform's bot API. The
// core treats delivery as best-effort: a failed send is logged and dropped,
// never surfaced to the ledger path that triggered it.
type ChatService struct {
	APIBase  string
	BotToken string
	client   *http.Client
}

var Notifier *ChatService

type sendMessagePayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func InitNotifier() {
	apiBase := config.Config("CHAT_API_BASE")
	botToken := config.Config("BOT_TOKEN")

	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	if botToken == "" {
		log.Println("⚠️ Notifier not configured. Missing BOT_TOKEN; outbound notifications disabled.")
		Notifier = nil
		return
	}

	Notifier = &ChatService{
		APIBase:  apiBase,
		BotToken: botToken,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	log.Println("✅ Notifier initialized successfully.")
}

func (s *ChatService) send(chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.APIBase, s.BotToken)

	body, err := json.Marshal(sendMessagePayload{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Notify sends a message to a chat id, fire-and-forget. Callers invoke it
// with `go` after their ledger transaction has committed.
func Notify(chatID, text string) {
	if Notifier == nil {
		log.Println("Notifier not initialized, skipping notification.")
		return
	}
	if chatID == "" {
		return
	}

	if err := Notifier.send(chatID, text); err != nil {
		log.Printf("🔥 Failed to notify %s: %v", chatID, err)
		return
	}
	log.Printf("✅ Notification sent to %s", chatID)
}

// NotifyReviewers fans a message out to every configured reviewer chat.
func NotifyReviewers(text string) {
	for _, chatID := range config.Settings.ReviewerChatIDs {
		go Notify(chatID, text)
	}
}
