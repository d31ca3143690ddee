package gateway

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// outboxSize bounds how many frames a session can have queued. A session
// that falls this far behind loses frames instead of stalling senders.
const outboxSize = 64

// Frame is the wire format for every message in either direction.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func encodeFrame(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: event, Payload: raw})
}

// conn is the slice of the websocket connection the session writes to.
// Narrowed to an interface so hub tests can run against a fake.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session wraps one live connection. Its ID is the session handle: opaque,
// unique for the connection's lifetime, and the address for targeted
// delivery. All writes go through the outbox so there is exactly one writer
// per connection.
type Session struct {
	ID string

	conn   conn
	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSession(id string, c conn) *Session {
	return &Session{
		ID:     id,
		conn:   c,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
}

// enqueue hands a frame to the write pump without ever blocking. Reports
// false when the outbox is full and the frame was dropped.
func (s *Session) enqueue(data []byte) bool {
	select {
	case s.outbox <- data:
		return true
	default:
		return false
	}
}

// writePump drains the outbox onto the connection. It is the connection's
// only writer and exits on the first write error or when the session closes.
func (s *Session) writePump() {
	for {
		select {
		case data := <-s.outbox:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}
