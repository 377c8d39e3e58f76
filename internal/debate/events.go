package debate

import (
	"encoding/json"
	"time"
)

// Event is one generation progress notification as stored in the stream and
// relayed to websocket clients.
type Event struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	DebateID  string          `json:"debateId"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// ClientMessage is a message sent by a websocket client.
type ClientMessage struct {
	Type string `json:"type"` // "ping"
}

// NewEvent creates an event stamped with the current time.
func NewEvent(debateID, eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		DebateID:  debateID,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

// MarshalEvent encodes an event for a stream entry.
func MarshalEvent(event *Event) (string, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalEvent decodes a stream entry.
func UnmarshalEvent(data string) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, err
	}
	return &event, nil
}
