package ws

import "time"

// Conn is the subset of *websocket.Conn the hub writes through. Sessions hold
// this interface so tests can substitute an in-memory connection.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetPongHandler(h func(appData string) error)
	SetReadDeadline(t time.Time) error
	Close() error
}
