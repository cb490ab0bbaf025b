package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Channel is the shared pub/sub channel name carrying realtime envelopes
// between server processes. Kept identical to the channel the cached data's
// original deployment used, so mixed fleets interoperate during rollout.
const Channel = "app_realtime_events"

// envelope is the wire form published to the shared channel. Origin
// identifies the publishing process so the emitter can skip its own
// envelopes; its local members were already notified at emit time.
type envelope struct {
	Origin string `json:"origin"`
	Room   string `json:"room,omitempty"`
	Event  Event  `json:"event"`
}

// BridgeConfig holds bridge configuration.
type BridgeConfig struct {
	// InitialBackoff is the first resubscribe delay after losing the
	// pub/sub connection.
	InitialBackoff time.Duration

	// MaxBackoff caps the resubscribe delay.
	MaxBackoff time.Duration

	// Logger is the bridge's logger.
	Logger zerolog.Logger
}

// DefaultBridgeConfig returns safe bridge defaults.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Logger:         log.With().Str("component", "realtime-bridge").Logger(),
	}
}

// Bridge propagates emitted events across server processes over a shared
// Redis pub/sub channel. Room membership stays local to each process; the
// bridge only carries (room, event) envelopes, and each receiving process
// delivers to its own local members.
//
// The bridge is strictly best-effort. If the channel is unreachable,
// cross-process delivery is dropped with a warning while local delivery
// proceeds untouched.
type Bridge struct {
	redis  *redis.Client
	hub    *Hub
	cfg    BridgeConfig
	logger zerolog.Logger

	// origin tags every published envelope with this process.
	origin string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBridge creates a bridge between the hub and the shared Redis channel.
func NewBridge(redisClient *redis.Client, hub *Hub, cfg BridgeConfig) *Bridge {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if hub == nil {
		panic("hub cannot be nil")
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultBridgeConfig().InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultBridgeConfig().MaxBackoff
	}

	return &Bridge{
		redis:  redisClient,
		hub:    hub,
		cfg:    cfg,
		logger: cfg.Logger,
		origin: uuid.NewString(),
	}
}

// Origin returns the process id this bridge stamps on published envelopes.
func (b *Bridge) Origin() string {
	return b.origin
}

// Start subscribes to the shared channel and begins relaying received
// envelopes into the hub. It also attaches the bridge to the hub so emits
// are published. The subscription loop runs until Close or ctx done,
// resubscribing with exponential backoff when the connection drops.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return fmt.Errorf("bridge already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	b.mu.Unlock()

	b.hub.AttachBridge(b)

	go b.subscribeLoop(loopCtx)
	return nil
}

// Publish relays a locally emitted event to the shared channel. Implements
// the hub's Publisher interface.
func (b *Bridge) Publish(ctx context.Context, room string, evt Event) error {
	data, err := json.Marshal(envelope{
		Origin: b.origin,
		Room:   room,
		Event:  evt,
	})
	if err != nil {
		BridgeErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("marshal bridge envelope: %w", err)
	}

	if err := b.redis.Publish(ctx, Channel, data).Err(); err != nil {
		BridgeErrors.WithLabelValues("publish").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	BridgePublished.Inc()
	return nil
}

// subscribeLoop holds the pub/sub subscription, reconnecting with jittered
// exponential backoff after failures until the context is cancelled.
func (b *Bridge) subscribeLoop(ctx context.Context) {
	defer close(b.done)

	backoff := b.cfg.InitialBackoff

	for {
		err := b.consume(ctx)
		if ctx.Err() != nil {
			return
		}

		BridgeErrors.WithLabelValues("subscribe").Inc()

		// ±20% jitter to avoid a reconnect stampede across processes.
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		b.logger.Warn().
			Err(err).
			Dur("backoff", jitter).
			Msg("Bridge subscription lost, resubscribing after backoff")

		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter):
		}

		backoff = time.Duration(float64(backoff) * 2)
		if backoff > b.cfg.MaxBackoff {
			backoff = b.cfg.MaxBackoff
		}
	}
}

// consume subscribes to the channel and relays envelopes until the
// subscription breaks or the context ends.
func (b *Bridge) consume(ctx context.Context) error {
	pubsub := b.redis.Subscribe(ctx, Channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so failures surface here
	// instead of as a silently idle channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	b.logger.Info().Str("channel", Channel).Msg("Bridge subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("pubsub channel closed")
			}
			b.handleMessage(msg.Payload)
		}
	}
}

// handleMessage decodes an envelope and delivers it to local room members.
// Envelopes published by this process are skipped; their local delivery
// already happened inside Emit.
func (b *Bridge) handleMessage(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		BridgeErrors.WithLabelValues("decode").Inc()
		b.logger.Warn().Err(err).Msg("Discarding malformed bridge envelope")
		return
	}

	if env.Origin == b.origin {
		return
	}

	BridgeReceived.Inc()
	b.logger.Debug().
		Str("room", env.Room).
		Str("event", env.Event.Name).
		Msg("Delivering bridged event")

	b.hub.deliverLocal(env.Room, env.Event)
}

// Close stops the subscription loop. Local emits keep working; they simply
// stop being relayed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
