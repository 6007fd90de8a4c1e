package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Client is one reviewer console connected to the live review feed.
type Client struct {
	ReviewerID uuid.UUID
	Conn       *websocket.Conn
}

// ReviewEvent is pushed to every connected reviewer when a withdrawal
// request changes state.
type ReviewEvent struct {
	Type         string `json:"type"` // requested | decided | settled
	RequestID    uint   `json:"request_id"`
	AccountID    string `json:"account_id"`
	Amount       string `json:"amount"`
	PayoutTarget string `json:"payout_target"`
	Status       string `json:"status"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan ReviewEvent, 16)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Reviewer connected to feed: %s", client.ReviewerID)
			clientsMu.Lock()
			clients[client.ReviewerID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Reviewer disconnected from feed: %s", client.ReviewerID)
			clientsMu.Lock()
			if conn, ok := clients[client.ReviewerID]; ok && conn == client.Conn {
				delete(clients, client.ReviewerID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			stale := make([]uuid.UUID, 0)
			for reviewerID, conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error pushing review event to %s: %v", reviewerID, err)
					conn.Close()
					stale = append(stale, reviewerID)
				}
			}
			clientsMu.RUnlock()
			if len(stale) > 0 {
				clientsMu.Lock()
				for _, reviewerID := range stale {
					delete(clients, reviewerID)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// Publish queues a review event without ever blocking the caller; the feed
// is advisory and may drop events under pressure.
func Publish(event ReviewEvent) {
	select {
	case Broadcast <- event:
	default:
		log.Println("⚠️ Review feed full, dropping event")
	}
}
