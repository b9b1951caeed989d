package websocket

import (
	"encoding/json"
	"time"

	"storefront/internal/domain/service"
)

// WebSocket Message Types
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// WebSocket Message Structure
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func encodeEvent(event service.ViewEvent) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      event.Type,
		Data:      event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleIncoming answers a view message, returning nil when no reply is due.
func handleIncoming(message []byte) []byte {
	var incoming WSMessage
	if err := json.Unmarshal(message, &incoming); err != nil {
		return nil
	}

	switch incoming.Type {
	case MessageTypePing:
		reply, err := json.Marshal(WSMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil
		}
		return reply
	default:
		return nil
	}
}
