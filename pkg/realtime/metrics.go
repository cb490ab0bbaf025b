package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionsGauge tracks currently connected clients
	ConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_realtime_connections",
			Help: "Number of currently connected realtime clients",
		},
	)

	// ConnectionsTotal tracks all connections ever registered
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_realtime_connections_total",
			Help: "Total realtime client connections (including disconnected)",
		},
	)

	// RoomsGauge tracks rooms currently holding at least one member
	RoomsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_realtime_rooms",
			Help: "Number of rooms with at least one local member",
		},
	)

	// EventsDelivered tracks event deliveries by scope
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_realtime_events_delivered_total",
			Help: "Total events delivered to connections",
		},
		[]string{"scope"}, // "local"
	)

	// DroppedSends tracks frames dropped for slow or dead connections
	DroppedSends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_realtime_dropped_sends_total",
			Help: "Total sends dropped because a connection was slow or gone",
		},
	)

	// BridgePublished tracks envelopes published to the shared channel
	BridgePublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_realtime_bridge_published_total",
			Help: "Total envelopes published to the cross-process channel",
		},
	)

	// BridgeReceived tracks envelopes received from other processes
	BridgeReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_realtime_bridge_received_total",
			Help: "Total envelopes received from other processes",
		},
	)

	// BridgeErrors tracks bridge failures by operation
	BridgeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_realtime_bridge_errors_total",
			Help: "Total bridge operation errors",
		},
		[]string{"operation"}, // "encode", "decode", "publish", "subscribe", "relay_overflow"
	)
)
