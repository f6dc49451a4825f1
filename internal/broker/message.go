// Package broker forwards domain events to RabbitMQ and consumes them back.
package broker

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/fintrack/internal/core/events"
)

// Message is the wire form of a domain event.
type Message struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	Payload    map[string]interface{} `json:"payload"`
}

func MessageFromEvent(e events.Event) *Message {
	payload, _ := e.Payload().(map[string]interface{})
	return &Message{
		ID:         e.EventID(),
		Type:       e.EventType(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	}
}

// Event turns a consumed message back into a bus event.
func (m *Message) Event() events.Event {
	return events.BaseEvent{
		ID:        m.ID,
		Type:      m.Type,
		Timestamp: m.OccurredAt,
		Data:      m.Payload,
	}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
