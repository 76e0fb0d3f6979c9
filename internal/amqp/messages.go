package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ChatEvent records one answered chat turn for the audit trail. The worker
// stores events idempotently by ID, so redeliveries are harmless.
type ChatEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Intent     string    `json:"intent"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	OccurredAt time.Time `json:"occurred_at"`
}

var errMissingEventID = errors.New("chat event without id")

// NewChatEvent stamps a fresh event with a random id and the current time.
func NewChatEvent(userID, intent, question, answer string) *ChatEvent {
	return &ChatEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Intent:     intent,
		Question:   question,
		Answer:     answer,
		OccurredAt: time.Now(),
	}
}

func (m *ChatEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChatEventFromJSON decodes an event. Events without an id are rejected.
func ChatEventFromJSON(data []byte) (*ChatEvent, error) {
	var msg ChatEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errMissingEventID
	}
	return &msg, nil
}
