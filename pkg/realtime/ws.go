package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is the deadline for a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may go without answering a ping.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = 54 * time.Second

	// maxMessageSize bounds inbound control messages; clients only send
	// small join/leave frames.
	maxMessageSize = 1024
)

// Client join protocol. Dashboard clients send these actions after
// connecting to subscribe to their audiences.
const (
	actionJoinUserRoom   = "joinUserRoom"
	actionJoinAdminRoom  = "joinAdminRoom"
	actionJoinVendorRoom = "joinVendorRoom"
	actionJoinOrderRoom  = "joinOrderRoom"
	actionLeaveRoom      = "leaveRoom"
)

// clientMessage is an inbound control frame from a client.
type clientMessage struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Room   string `json:"room,omitempty"`
}

// wsSender adapts a gorilla websocket connection to the hub's Sender.
// The mutex guards against the ping ticker racing the writer goroutine.
type wsSender struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSender) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *wsSender) Close() error {
	return s.conn.Close()
}

// Handler returns an http.Handler serving the realtime WebSocket endpoint.
// Each upgraded connection is registered with the hub and then driven by
// the client join protocol until the transport disconnects, at which point
// the hub cleans up every room membership automatically.
func Handler(hub *Hub) http.Handler {
	logger := log.With().Str("component", "realtime-ws").Logger()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(_ *http.Request) bool {
			// Origin policy is enforced by the fronting proxy.
			return true
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		sender := &wsSender{conn: ws}
		conn, err := hub.Register(sender)
		if err != nil {
			logger.Warn().Err(err).Msg("Connection rejected")
			_ = ws.Close()
			return
		}

		done := make(chan struct{})

		// Keepalive pings; a client that stops answering trips the read
		// deadline below and disconnects.
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := sender.ping(); err != nil {
						return
					}
				}
			}
		}()

		ws.SetReadLimit(maxMessageSize)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				break
			}

			var msg clientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Debug().Str("conn_id", conn.ID()).Msg("Ignoring malformed client message")
				continue
			}

			switch msg.Action {
			case actionJoinUserRoom:
				if msg.ID != "" {
					hub.Join(conn.ID(), UserRoom(msg.ID))
				}
			case actionJoinAdminRoom:
				hub.Join(conn.ID(), AdminRoom)
			case actionJoinVendorRoom:
				if msg.ID != "" {
					hub.Join(conn.ID(), VendorRoom(msg.ID))
				}
			case actionJoinOrderRoom:
				if msg.ID != "" {
					hub.Join(conn.ID(), OrderRoom(msg.ID))
				}
			case actionLeaveRoom:
				if msg.Room != "" {
					hub.Leave(conn.ID(), msg.Room)
				}
			default:
				logger.Debug().
					Str("conn_id", conn.ID()).
					Str("action", msg.Action).
					Msg("Ignoring unknown client action")
			}
		}

		close(done)
		hub.Disconnect(conn.ID())
	})
}
