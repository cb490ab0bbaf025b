// Package realtime provides room-based event fan-out to live dashboard
// clients, with optional cross-process relay over Redis pub/sub.
//
// The hub tracks connections and their room memberships in-process.
// Connections attach over WebSocket (see Handler) or any transport that
// implements Sender. Rooms follow the dashboard naming convention:
// user:<id>, vendor_dashboard:<id>, order:<id>, admin_dashboard, plus an
// unscoped broadcast reaching every connection.
//
// # Basic Usage
//
//	hub := realtime.NewHub(realtime.DefaultConfig())
//	defer hub.Close()
//
//	// Serve client connections
//	mux.Handle("/ws", realtime.Handler(hub))
//
//	// After a committed mutation
//	hub.Emit(ctx, realtime.OrderRoom(orderID), "orderStatusUpdate", update)
//	hub.Emit(ctx, realtime.AdminRoom, "newProductAdded", product)
//
// # Scaling Out
//
// With multiple server processes, each process holds only its own
// connections. The bridge relays emits over a shared Redis channel so every
// process delivers to its local members of the target room:
//
//	bridge := realtime.NewBridge(redisClient, hub, realtime.DefaultBridgeConfig())
//	if err := bridge.Start(ctx); err != nil {
//		return err
//	}
//	defer bridge.Close()
//
// # Delivery Semantics
//
// At-most-once, best-effort, per-room ordered from a single emitting
// process. There is no replay: a connection joining after an emit does not
// see it, and no durable queue backs the channel. Clients treat events as
// refetch hints; the domain store remains the source of truth. A slow or
// dead connection is disconnected and cleaned out of every room rather
// than stalling delivery to the rest.
package realtime
