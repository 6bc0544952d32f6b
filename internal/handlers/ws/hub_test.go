package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeConn records writes in memory.
type fakeConn struct {
	mu       sync.Mutex
	writes   []Envelope
	closed   bool
	writeErr error
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	// Round-trip so the recorded envelope matches the wire shape.
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	f.writes = append(f.writes, envelope)
	return nil
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeConn) SetPongHandler(h func(appData string) error) {}

func (f *fakeConn) SetReadDeadline(t time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events(eventType string) []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Envelope
	for _, e := range f.writes {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestHub() *Hub {
	// Nil presence cache: the cache layer is nil-safe.
	return NewHub(nil, time.Hour, time.Hour)
}

func TestBindReplacesExistingSession(t *testing.T) {
	hub := newTestHub()
	first := &fakeConn{}
	second := &fakeConn{}

	s1 := hub.Bind(1, first)
	hub.JoinRoom(s1, GroupRoomID(9))
	s2 := hub.Bind(1, second)

	if !first.closed {
		t.Error("replaced connection not closed")
	}
	if hub.Count() != 1 {
		t.Errorf("Count = %d, want 1", hub.Count())
	}
	if hub.InRoom(1, GroupRoomID(9)) {
		t.Error("replaced session's room membership survived")
	}

	// Fan-out must reach the new connection only.
	hub.JoinRoom(s2, GroupRoomID(9))
	hub.EmitToRoom(GroupRoomID(9), EventGroupMessage, map[string]string{"content": "hi"})
	if len(second.events(EventGroupMessage)) != 1 {
		t.Error("new session missed fan-out")
	}
	if len(first.events(EventGroupMessage)) != 0 {
		t.Error("stale session received fan-out")
	}
}

func TestUnbindIgnoresStaleSession(t *testing.T) {
	hub := newTestHub()
	stale := hub.Bind(1, &fakeConn{})
	hub.Bind(1, &fakeConn{})

	// The stale session's deferred disconnect must not take the rebound user
	// offline.
	if hub.Unbind(stale) {
		t.Error("stale unbind reported the user offline")
	}
	if !hub.IsOnline(1) {
		t.Error("user went offline after stale disconnect")
	}
}

func TestUnbindCurrentSession(t *testing.T) {
	hub := newTestHub()
	session := hub.Bind(1, &fakeConn{})

	if !hub.Unbind(session) {
		t.Error("current unbind should report offline transition")
	}
	if hub.IsOnline(1) {
		t.Error("user still online after unbind")
	}
	if hub.Unbind(session) {
		t.Error("double unbind reported offline twice")
	}
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	session := hub.Bind(1, conn)

	room := GroupRoomID(3)
	hub.JoinRoom(session, room)
	hub.JoinRoom(session, room)

	hub.EmitToRoom(room, EventGroupMessage, map[string]string{"content": "once"})
	if got := len(conn.events(EventGroupMessage)); got != 1 {
		t.Errorf("duplicate join produced %d deliveries, want 1", got)
	}
}

func TestEmitToRoomIsolatesWriteFailures(t *testing.T) {
	hub := newTestHub()
	broken := &fakeConn{writeErr: errors.New("write: broken pipe")}
	healthy := &fakeConn{}

	s1 := hub.Bind(1, broken)
	s2 := hub.Bind(2, healthy)
	room := GroupRoomID(4)
	hub.JoinRoom(s1, room)
	hub.JoinRoom(s2, room)

	hub.EmitToRoom(room, EventGroupMessage, map[string]string{"content": "hi"})
	if len(healthy.events(EventGroupMessage)) != 1 {
		t.Error("healthy member lost delivery because a peer's write failed")
	}
}

func TestEmitToUserRequiresLiveSession(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	hub.Bind(1, conn)

	if err := hub.EmitToUser(2, EventNewNotification, nil); err == nil {
		t.Error("expected error for offline user")
	}
	if err := hub.EmitToUser(1, EventNewNotification, map[string]string{"message": "m"}); err != nil {
		t.Errorf("EmitToUser: %v", err)
	}
	if len(conn.events(EventNewNotification)) != 1 {
		t.Error("notification not delivered")
	}
}

func TestOnlineUsersSorted(t *testing.T) {
	hub := newTestHub()
	hub.Bind(3, &fakeConn{})
	hub.Bind(1, &fakeConn{})
	hub.Bind(2, &fakeConn{})

	users := hub.OnlineUsers()
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	for i, want := range []uint{1, 2, 3} {
		if users[i] != want {
			t.Errorf("users[%d] = %d, want %d", i, users[i], want)
		}
	}
}

func TestBroadcastPresenceReachesEveryone(t *testing.T) {
	hub := newTestHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Bind(1, a)
	hub.Bind(2, b)

	hub.BroadcastPresence()

	for name, conn := range map[string]*fakeConn{"a": a, "b": b} {
		if len(conn.events(EventOnlineUsers)) != 1 {
			t.Errorf("connection %s missed presence broadcast", name)
		}
	}
}
