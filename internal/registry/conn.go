package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Socket is the subset of *websocket.Conn the registry writes to.
// Tests substitute an in-memory implementation.
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn is one live transport connection. Outbound messages are
// enqueued on a buffered channel and drained by a single write pump;
// enqueue never blocks, a full buffer drops the message (best-effort
// delivery).
type Conn struct {
	sock   Socket
	logger *slog.Logger

	send chan []byte
	done chan struct{}

	closeOnce sync.Once

	mu        sync.RWMutex
	ident     Identity
	streaming bool
	closed    bool
}

// NewConn wraps a socket and starts its write pump.
func NewConn(sock Socket, sendBuffer int, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	if sendBuffer < 1 {
		sendBuffer = 256
	}

	c := &Conn{
		sock:   sock,
		logger: logger,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		ident:  Identity{Role: RoleUnclassified},
	}

	go c.writePump()

	return c
}

// writePump drains the send channel onto the socket. A write error
// closes the connection; remaining queued messages are discarded.
func (c *Conn) writePump() {
	for {
		select {
		case data := <-c.send:
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("websocket write failed", "conn_id", c.ID(), "error", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Classify assigns the connection's identity. The role is assigned
// exactly once; a second call fails with ErrAlreadyClassified.
func (c *Conn) Classify(ident Identity) error {
	if ident.ID == "" {
		return ErrEmptyID
	}
	if ident.Role == RoleUnclassified {
		return fmt.Errorf("classify %s: role is unclassified", ident.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ident.Role != RoleUnclassified {
		return ErrAlreadyClassified
	}
	c.ident = ident
	return nil
}

// ID returns the assigned connection id ("" before classification).
func (c *Conn) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ident.ID
}

// Role returns the assigned role (RoleUnclassified before handshake).
func (c *Conn) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ident.Role
}

// Identity returns a copy of the connection's identity.
func (c *Conn) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ident
}

// Streaming returns the last known capture state for producer conns.
func (c *Conn) Streaming() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streaming
}

// SetStreaming records the last known capture state.
func (c *Conn) SetStreaming(streaming bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streaming = streaming
}

// IsOpen reports whether the connection has not been closed.
func (c *Conn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Send marshals v and enqueues it for delivery.
func (c *Conn) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}
	return c.SendRaw(data)
}

// SendRaw enqueues pre-marshaled bytes. Fire-and-forget: ErrBufferFull
// means the message was dropped, not that delivery will be retried.
func (c *Conn) SendRaw(data []byte) error {
	if !c.IsOpen() {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close tears down the connection. Safe to call multiple times and
// from any goroutine.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.done)
		err = c.sock.Close()
	})
	return err
}

// Done is closed when the connection is torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}
