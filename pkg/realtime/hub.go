package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrHubClosed is returned when registering on a closed hub.
	ErrHubClosed = errors.New("hub closed")
)

const (
	// relayQueueSize bounds pending cross-process publishes. Overflow drops
	// the relay, never the local delivery.
	relayQueueSize = 256

	// relayTimeout caps a single publish attempt against a stalled channel.
	relayTimeout = 5 * time.Second
)

// Publisher relays an emitted event to other server processes. The hub calls
// it after local delivery; a publish failure degrades cross-process fan-out
// but never the local emit.
type Publisher interface {
	Publish(ctx context.Context, room string, evt Event) error
}

// Config holds hub configuration.
type Config struct {
	// SendQueueSize is the per-connection send queue capacity. A client
	// that falls this many frames behind is disconnected.
	SendQueueSize int

	// Logger is the hub's logger.
	Logger zerolog.Logger
}

// DefaultConfig returns a safe default hub configuration.
func DefaultConfig() Config {
	return Config{
		SendQueueSize: 64,
		Logger:        log.With().Str("component", "realtime-hub").Logger(),
	}
}

// Hub maintains live client connections grouped into named rooms and fans
// emitted events out to current room members. Construct one at process
// startup with NewHub and pass the handle to everything that needs to emit;
// there is no package-level instance.
//
// Delivery is at-most-once and best-effort: connections joining after an
// emit do not receive it, and a connection racing a concurrent emit may or
// may not. The authoritative state lives in the domain store; events are
// "something changed" signals, not a durable log.
type Hub struct {
	cfg    Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	conns  map[string]*Conn
	rooms  map[string]map[string]*Conn    // room -> conn id -> conn
	joined map[string]map[string]struct{} // conn id -> room set

	bridge Publisher

	relayCh   chan relayItem
	relayDone chan struct{}
}

// relayItem is one pending cross-process publish.
type relayItem struct {
	room string
	evt  Event
}

// NewHub creates a new hub.
func NewHub(cfg Config) *Hub {
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = DefaultConfig().SendQueueSize
	}
	h := &Hub{
		cfg:       cfg,
		logger:    cfg.Logger,
		conns:     make(map[string]*Conn),
		rooms:     make(map[string]map[string]*Conn),
		joined:    make(map[string]map[string]struct{}),
		relayCh:   make(chan relayItem, relayQueueSize),
		relayDone: make(chan struct{}),
	}
	go h.relayLoop()
	return h
}

// AttachBridge sets the cross-process publisher. Call before serving
// connections; the hub works without one, scoped to this process.
func (h *Hub) AttachBridge(bridge Publisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridge = bridge
}

// Register adds a live connection and starts its writer goroutine. The
// returned Conn carries the opaque id used for join/leave/disconnect.
func (h *Hub) Register(sender Sender) (*Conn, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}

	conn := &Conn{
		id:     uuid.NewString(),
		sender: sender,
		queue:  make(chan []byte, h.cfg.SendQueueSize),
		closed: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.conns[conn.id] = conn
	h.joined[conn.id] = make(map[string]struct{})
	h.mu.Unlock()

	go conn.writeLoop(h.Disconnect)

	ConnectionsGauge.Inc()
	ConnectionsTotal.Inc()
	h.logger.Debug().Str("conn_id", conn.id).Msg("Connection registered")

	return conn, nil
}

// Join adds the connection to a room. Idempotent: joining an already-joined
// room, or joining on behalf of an unknown (already disconnected)
// connection, is a no-op.
func (h *Hub) Join(connID, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Conn)
		h.rooms[room] = members
		RoomsGauge.Inc()
	}
	if _, already := members[connID]; already {
		return
	}

	members[connID] = conn
	h.joined[connID][room] = struct{}{}

	h.logger.Debug().Str("conn_id", connID).Str("room", room).Msg("Joined room")
}

// Leave removes the connection from a room. Idempotent: leaving a room the
// connection is not in is a no-op.
func (h *Hub) Leave(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(connID, room)
}

// leaveLocked removes a membership and garbage-collects the room when its
// last member leaves. Caller holds h.mu.
func (h *Hub) leaveLocked(connID, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, member := members[connID]; !member {
		return
	}

	delete(members, connID)
	if rooms, ok := h.joined[connID]; ok {
		delete(rooms, room)
	}
	if len(members) == 0 {
		delete(h.rooms, room)
		RoomsGauge.Dec()
	}

	h.logger.Debug().Str("conn_id", connID).Str("room", room).Msg("Left room")
}

// Disconnect removes the connection from every room it joined and releases
// it. Triggered by the transport's disconnect signal; also safe to call for
// an id that is already gone.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	conn, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}

	for room := range h.joined[connID] {
		h.leaveLocked(connID, room)
	}
	delete(h.joined, connID)
	delete(h.conns, connID)
	h.mu.Unlock()

	conn.close()
	ConnectionsGauge.Dec()
	h.logger.Debug().Str("conn_id", connID).Msg("Connection disconnected")
}

// Emit delivers the event to every current member of the room, then relays
// it across the bridge for members attached to other processes. An empty
// room targets every connection (see Broadcast). Fire-and-forget: delivery
// failures disconnect the affected client, the relay runs asynchronously
// on its own deadline so a stalled channel never blocks the caller, and
// neither failure reaches the caller. The only returned error is a payload
// that cannot be serialized.
func (h *Hub) Emit(ctx context.Context, room, name string, payload any) error {
	evt, err := NewEvent(name, payload)
	if err != nil {
		return err
	}

	h.deliverLocal(room, evt)
	h.relay(room, evt)
	return nil
}

// Broadcast delivers the event to every connection on this process and
// relays it across the bridge with no room scoping.
func (h *Hub) Broadcast(ctx context.Context, name string, payload any) error {
	return h.Emit(ctx, "", name, payload)
}

// deliverLocal fans an event out to the local members of room. An empty room
// targets every local connection. Called for both locally emitted events and
// events received over the bridge.
func (h *Hub) deliverLocal(room string, evt Event) {
	data, err := evt.Encode()
	if err != nil {
		h.logger.Warn().Err(err).Str("event", evt.Name).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	var targets []*Conn
	if room == "" {
		targets = make([]*Conn, 0, len(h.conns))
		for _, conn := range h.conns {
			targets = append(targets, conn)
		}
	} else if members, ok := h.rooms[room]; ok {
		targets = make([]*Conn, 0, len(members))
		for _, conn := range members {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var slow []string
	for _, conn := range targets {
		if conn.enqueue(data) {
			EventsDelivered.WithLabelValues("local").Inc()
			continue
		}
		// Full queue or closed connection: treat as implicit disconnect.
		DroppedSends.Inc()
		slow = append(slow, conn.id)
	}

	for _, id := range slow {
		h.logger.Warn().Str("conn_id", id).Str("event", evt.Name).Msg("Dropping slow connection")
		h.Disconnect(id)
	}
}

// relay hands the event to the relay worker, if a bridge is attached. The
// enqueue never blocks: a full queue drops the relay with a warning, and
// local delivery has already happened either way.
func (h *Hub) relay(room string, evt Event) {
	h.mu.RLock()
	bridge := h.bridge
	h.mu.RUnlock()

	if bridge == nil {
		return
	}

	select {
	case h.relayCh <- relayItem{room: room, evt: evt}:
	default:
		BridgeErrors.WithLabelValues("relay_overflow").Inc()
		h.logger.Warn().
			Str("room", room).
			Str("event", evt.Name).
			Msg("Relay queue full, cross-process delivery dropped")
	}
}

// relayLoop drains queued publishes on a single goroutine, preserving emit
// order on the shared channel. Each publish runs detached from the emitting
// request's context, bounded by relayTimeout.
func (h *Hub) relayLoop() {
	for {
		select {
		case <-h.relayDone:
			return
		case item := <-h.relayCh:
			h.mu.RLock()
			bridge := h.bridge
			h.mu.RUnlock()
			if bridge == nil {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
			err := bridge.Publish(ctx, item.room, item.evt)
			cancel()
			if err != nil {
				h.logger.Warn().
					Err(err).
					Str("room", item.room).
					Str("event", item.evt.Name).
					Msg("Bridge publish failed, cross-process delivery dropped")
			}
		}
	}
}

// Rooms returns the rooms the connection is currently in. Mainly for tests
// and introspection handlers.
func (h *Hub) Rooms(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.joined[connID]))
	for room := range h.joined[connID] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Members returns how many local connections are in the room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every connection and rejects further registrations.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	close(h.relayDone)
	for _, id := range ids {
		h.Disconnect(id)
	}
	return nil
}
