package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	evt, err := NewEvent("orderStatusUpdate", map[string]string{
		"orderId": "123",
		"message": "Order confirmed",
	})
	require.NoError(t, err)

	assert.Equal(t, "orderStatusUpdate", evt.Name)
	assert.JSONEq(t, `{"orderId":"123","message":"Order confirmed"}`, string(evt.Payload))
	assert.False(t, evt.Timestamp.Before(before))
}

func TestNewEvent_EmptyName(t *testing.T) {
	_, err := NewEvent("", nil)
	assert.Error(t, err)
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt, err := NewEvent("ping", nil)
	require.NoError(t, err)
	assert.Nil(t, evt.Payload)
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestEvent_Encode(t *testing.T) {
	evt, err := NewEvent("complaintUpdated", map[string]any{
		"complaintId": "c9",
		"status":      "resolved",
	})
	require.NoError(t, err)

	data, err := evt.Encode()
	require.NoError(t, err)

	// Wire contract: {event, payload, timestamp ISO8601}.
	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Contains(t, wire, "event")
	assert.Contains(t, wire, "payload")
	assert.Contains(t, wire, "timestamp")

	var ts time.Time
	require.NoError(t, json.Unmarshal(wire["timestamp"], &ts))
	assert.False(t, ts.IsZero())
}

func TestEvent_PayloadPassThrough(t *testing.T) {
	// The hub imposes no payload schema; arbitrary nesting survives the
	// round trip verbatim.
	payload := map[string]any{
		"order": map[string]any{
			"id":    "123",
			"items": []any{map[string]any{"sku": "a", "qty": float64(2)}},
		},
		"message": "updated",
	}

	evt, err := NewEvent("orderStatusUpdate", payload)
	require.NoError(t, err)

	data, err := evt.Encode()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))

	var got map[string]any
	require.NoError(t, json.Unmarshal(decoded.Payload, &got))
	assert.Equal(t, payload, got)
}
