package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a named domain event with an opaque payload and a server-assigned
// timestamp. The payload is pass-through data: the hub delivers it verbatim
// and imposes no schema. Event names (newProductAdded, orderStatusUpdate,
// complaintUpdated, ...) are defined by calling code.
type Event struct {
	Name      string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent builds an event from a name and an arbitrary payload value.
// The timestamp is assigned at creation time, in UTC.
func NewEvent(name string, payload any) (Event, error) {
	if name == "" {
		return Event{}, fmt.Errorf("event name cannot be empty")
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal event payload: %w", err)
		}
		raw = data
	}

	return Event{
		Name:      name,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Encode serializes the event to its wire form.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}
