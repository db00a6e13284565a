package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Socket is the subset of *websocket.Conn the connection wrapper needs.
type Socket interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

var _ Socket = (*websocket.Conn)(nil)

// Connection wraps a websocket bound to one authenticated live session and
// coordinates outbound writes via a buffered channel. Safe for concurrent use.
type Connection struct {
	ID      string
	Session relay.Session

	ws           Socket
	send         chan []byte
	once         sync.Once
	closed       chan struct{}
	disconnected atomic.Bool
}

// NewConnection constructs a Connection for the given authorized session.
func NewConnection(session relay.Session, ws Socket) *Connection {
	return &Connection{
		ID:      uuid.NewString(),
		Session: session,
		ws:      ws,
		send:    make(chan []byte, 128),
		closed:  make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer is
// full, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// MarkDisconnected flags the connection as gone at the transport level while
// it may still be registered in the hub. The session reaper sweeps these.
func (c *Connection) MarkDisconnected() {
	c.disconnected.Store(true)
}

// Disconnected reports whether the transport has been flagged as gone.
func (c *Connection) Disconnected() bool {
	return c.disconnected.Load()
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	// The send channel is never closed; the write loop exits on the closed
	// signal and racing Sends must not panic.
	c.once.Do(func() {
		close(c.closed)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.MarkDisconnected()
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				c.MarkDisconnected()
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
