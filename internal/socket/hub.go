package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks one WebSocket connection per signed-in user, keyed by
// userID. Delivery is best effort: an offline recipient is not an error.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection, replacing any previous one for the
// same user.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	log.Printf("WebSocket client registered: %s", userID)
}

// Unregister removes a client connection.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Send writes a message to one user if connected.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[userID]
	if !ok {
		return nil
	}

	return conn.WriteMessage(websocket.TextMessage, message)
}

// Notify marshals an event payload and sends it to each recipient.
// Marshal or write failures are logged, never surfaced: notifications
// must not fail the operation that triggered them.
func (h *Hub) Notify(recipients []string, event string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		log.Printf("Failed to marshal %s notification: %v", event, err)
		return
	}
	for _, userID := range recipients {
		if userID == "" {
			continue
		}
		if err := h.Send(userID, message); err != nil {
			log.Printf("Failed to send %s notification to %s: %v", event, userID, err)
		}
	}
}
