package websocket

import (
	"encoding/json"
	"time"
)

// Message types pushed to subscribers
const (
	MessageTypeSnapshot  = "snapshot"
	MessageTypeAction    = "action"
	MessageTypeAlert     = "alert"
	MessageTypeStatus    = "status"
	MessageTypeHeartbeat = "heartbeat"
)

// Message is the envelope for all pushed events
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(msgType string, data interface{}) Message {
	return Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Encode serializes a message to JSON
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
