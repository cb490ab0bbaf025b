package realtime

import (
	"sync"
)

// Sender delivers encoded frames to one client. Implementations must be safe
// for use from a single writer goroutine; the hub serializes all sends to a
// connection through its queue.
type Sender interface {
	Send(data []byte) error
	Close() error
}

// Conn represents one live client session registered with a Hub. It owns a
// bounded send queue drained by a dedicated writer goroutine, which preserves
// per-connection delivery order.
type Conn struct {
	id     string
	sender Sender

	queue     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// ID returns the opaque connection id.
func (c *Conn) ID() string {
	return c.id
}

// enqueue offers a frame to the connection's send queue without blocking.
// It reports false when the queue is full or the connection is closed; the
// hub treats either as an implicit disconnect of a slow or dead client.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.queue <- data:
		return true
	default:
		return false
	}
}

// close stops the writer goroutine and closes the underlying sender.
// Safe to call more than once.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.sender.Close()
	})
}

// writeLoop drains the send queue to the sender. A send failure ends the
// loop; the hub's disconnect path handles membership cleanup.
func (c *Conn) writeLoop(onError func(connID string)) {
	for {
		select {
		case <-c.closed:
			return
		case data := <-c.queue:
			if err := c.sender.Send(data); err != nil {
				onError(c.id)
				return
			}
		}
	}
}
