package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(Handler(hub))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return ws
}

func waitForMembers(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Members(room) == want
	}, 2*time.Second, 10*time.Millisecond, "room %s should reach %d members", room, want)
}

func TestHandler_JoinAndReceive(t *testing.T) {
	hub := newTestHub(t)
	ws := dialTestServer(t, hub)

	require.NoError(t, ws.WriteJSON(map[string]string{
		"action": "joinOrderRoom",
		"id":     "123",
	}))
	waitForMembers(t, hub, OrderRoom("123"), 1)

	require.NoError(t, hub.Emit(context.Background(), OrderRoom("123"), "orderStatusUpdate", map[string]string{
		"status": "delivered",
	}))

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := ws.ReadMessage()
	require.NoError(t, err)

	var evt Event
	require.NoError(t, json.Unmarshal(frame, &evt))
	assert.Equal(t, "orderStatusUpdate", evt.Name)
	assert.JSONEq(t, `{"status":"delivered"}`, string(evt.Payload))
}

func TestHandler_JoinActions(t *testing.T) {
	hub := newTestHub(t)
	ws := dialTestServer(t, hub)

	joins := []map[string]string{
		{"action": "joinUserRoom", "id": "u1"},
		{"action": "joinAdminRoom"},
		{"action": "joinVendorRoom", "id": "v1"},
		{"action": "joinOrderRoom", "id": "o1"},
	}
	for _, msg := range joins {
		require.NoError(t, ws.WriteJSON(msg))
	}

	waitForMembers(t, hub, UserRoom("u1"), 1)
	waitForMembers(t, hub, AdminRoom, 1)
	waitForMembers(t, hub, VendorRoom("v1"), 1)
	waitForMembers(t, hub, OrderRoom("o1"), 1)
}

func TestHandler_LeaveRoom(t *testing.T) {
	hub := newTestHub(t)
	ws := dialTestServer(t, hub)

	require.NoError(t, ws.WriteJSON(map[string]string{"action": "joinAdminRoom"}))
	waitForMembers(t, hub, AdminRoom, 1)

	require.NoError(t, ws.WriteJSON(map[string]string{
		"action": "leaveRoom",
		"room":   AdminRoom,
	}))
	waitForMembers(t, hub, AdminRoom, 0)
}

func TestHandler_DisconnectCleansRooms(t *testing.T) {
	hub := newTestHub(t)
	ws := dialTestServer(t, hub)

	require.NoError(t, ws.WriteJSON(map[string]string{"action": "joinOrderRoom", "id": "55"}))
	waitForMembers(t, hub, OrderRoom("55"), 1)

	// Transport-level close must trigger membership cleanup without any
	// explicit leave from the client.
	require.NoError(t, ws.Close())
	waitForMembers(t, hub, OrderRoom("55"), 0)

	// Emitting afterwards is a benign no-op.
	assert.NoError(t, hub.Emit(context.Background(), OrderRoom("55"), "orderStatusUpdate", nil))
}

func TestHandler_MalformedMessagesIgnored(t *testing.T) {
	hub := newTestHub(t)
	ws := dialTestServer(t, hub)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, ws.WriteJSON(map[string]string{"action": "unknownAction"}))
	require.NoError(t, ws.WriteJSON(map[string]string{"action": "joinUserRoom"})) // missing id

	// The connection survives garbage and still accepts a valid join.
	require.NoError(t, ws.WriteJSON(map[string]string{"action": "joinAdminRoom"}))
	waitForMembers(t, hub, AdminRoom, 1)
}
