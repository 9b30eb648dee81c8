package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the slice of *websocket.Conn the session layer needs. Tests swap
// in a recording fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session owns the write side of one client connection. Concurrent writers
// (broadcasts, direct replies, the ping echo) serialize on the mutex.
type Session struct {
	id   string
	conn Conn
	mu   sync.Mutex

	// lastSeen is guarded by the hub mutex, not the session mutex.
	lastSeen time.Time
}

func (s *Session) ID() string { return s.id }

// WriteMessage sends one text frame with the standard write deadline.
func (s *Session) WriteMessage(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// CloseWithCode sends a close frame with the given status code, then closes
// the underlying connection.
func (s *Session) CloseWithCode(code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)
	s.mu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage, message)
	s.mu.Unlock()
	s.conn.Close()
}

// Close tears the connection down without a close frame.
func (s *Session) Close() error {
	return s.conn.Close()
}
