package testutil

import (
	"errors"
	"sync"
	"time"
)

// RecorderSender is an in-memory frame sink implementing the realtime
// Sender contract, for hub tests that don't need a real transport.
type RecorderSender struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

// NewRecorderSender creates an empty recorder.
func NewRecorderSender() *RecorderSender {
	return &RecorderSender{}
}

// Send records a frame.
func (r *RecorderSender) Send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("sender closed")
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	r.frames = append(r.frames, frame)
	return nil
}

// Close marks the sender closed.
func (r *RecorderSender) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns a copy of all recorded frames.
func (r *RecorderSender) Frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.frames))
	copy(out, r.frames)
	return out
}

// Closed reports whether Close was called.
func (r *RecorderSender) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// WaitForFrames polls until at least n frames arrived or the timeout
// elapses. Delivery runs on a per-connection writer goroutine, so tests
// must wait rather than assert immediately.
func (r *RecorderSender) WaitForFrames(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		count := len(r.frames)
		r.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// FailingSender fails every send, for exercising implicit-disconnect paths.
type FailingSender struct {
	mu     sync.Mutex
	closed bool
}

// Send always fails.
func (f *FailingSender) Send([]byte) error {
	return errors.New("transport gone")
}

// Close marks the sender closed.
func (f *FailingSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FailingSender) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// BlockingSender blocks every send until released, for filling a
// connection's queue in slow-consumer tests.
type BlockingSender struct {
	release chan struct{}
	once    sync.Once
}

// NewBlockingSender creates a sender whose Send blocks until Release.
func NewBlockingSender() *BlockingSender {
	return &BlockingSender{release: make(chan struct{})}
}

// Send blocks until Release is called.
func (b *BlockingSender) Send([]byte) error {
	<-b.release
	return nil
}

// Release unblocks all pending and future sends.
func (b *BlockingSender) Release() {
	b.once.Do(func() { close(b.release) })
}

// Close releases pending sends.
func (b *BlockingSender) Close() error {
	b.Release()
	return nil
}
