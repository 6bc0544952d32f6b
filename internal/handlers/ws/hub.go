package ws

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/saksham310/CommunityNest-sub000/internal/cache"
)

// Session is one live WebSocket connection bound to a user.
type Session struct {
	ID       string
	UserID   uint
	Conn     Conn
	LastPong time.Time

	rooms   map[string]struct{}
	writeMu sync.Mutex

	pingTicker *time.Ticker
	closeChan  chan struct{}
	closeOnce  sync.Once
}

// send serializes writes; fan-out, the ping routine and the read loop may all
// write to the same connection.
func (s *Session) send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.Conn.WriteJSON(v)
}

func (s *Session) stop() {
	s.closeOnce.Do(func() {
		if s.pingTicker != nil {
			s.pingTicker.Stop()
		}
		close(s.closeChan)
	})
}

// Hub is the connection registry: at most one session per user, plus the room
// membership index used for fan-out.
type Hub struct {
	sessions map[uint]*Session
	rooms    map[string]map[uint]struct{}
	mu       sync.RWMutex

	presence     *cache.PresenceCache
	pingInterval time.Duration
	pongTimeout  time.Duration
}

func NewHub(presence *cache.PresenceCache, pingInterval, pongTimeout time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if pongTimeout <= 0 {
		pongTimeout = 90 * time.Second
	}
	hub := &Hub{
		sessions:     make(map[uint]*Session),
		rooms:        make(map[string]map[uint]struct{}),
		presence:     presence,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
	}
	go hub.connectionHealthChecker()
	return hub
}

// Bind registers a session for a user. The newest connection always wins: any
// existing session for the same user is detached from its rooms and closed.
func (h *Hub) Bind(userID uint, conn Conn) *Session {
	session := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Conn:       conn,
		LastPong:   time.Now(),
		rooms:      make(map[string]struct{}),
		pingTicker: time.NewTicker(h.pingInterval),
		closeChan:  make(chan struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		h.mu.Lock()
		if current, ok := h.sessions[userID]; ok && current.ID == session.ID {
			current.LastPong = time.Now()
		}
		h.mu.Unlock()
		conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
		if err := h.presence.RefreshUserOnline(userID); err != nil {
			log.Printf("Failed to refresh presence for user %d: %v", userID, err)
		}
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.mu.Lock()
	if old, ok := h.sessions[userID]; ok {
		h.detachLocked(old)
		old.stop()
		old.Conn.Close()
		log.Printf("User %d rebound, replacing session %s", userID, old.ID)
	}
	h.sessions[userID] = session
	total := len(h.sessions)
	h.mu.Unlock()

	go h.pingRoutine(session)

	if err := h.presence.SetUserOnline(userID); err != nil {
		log.Printf("Failed to mark user %d online in cache: %v", userID, err)
	}
	log.Printf("User %d connected (session %s, total: %d)", userID, session.ID, total)
	return session
}

// Unbind removes a session only if it is still the current one for its user.
// A disconnect for an already-replaced session must not take the newer
// connection offline; the return value reports whether the user went offline.
func (h *Hub) Unbind(session *Session) bool {
	h.mu.Lock()
	current, ok := h.sessions[session.UserID]
	if !ok || current.ID != session.ID {
		h.mu.Unlock()
		session.stop()
		return false
	}
	h.detachLocked(session)
	delete(h.sessions, session.UserID)
	total := len(h.sessions)
	h.mu.Unlock()

	session.stop()
	if err := h.presence.SetUserOffline(session.UserID); err != nil {
		log.Printf("Failed to mark user %d offline in cache: %v", session.UserID, err)
	}
	log.Printf("User %d disconnected (session %s, total: %d)", session.UserID, session.ID, total)
	return true
}

// detachLocked removes the session from every room index entry. Caller holds
// h.mu.
func (h *Hub) detachLocked(session *Session) {
	for room := range session.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, session.UserID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// JoinRoom subscribes the session's user to a room. Joining twice is a no-op,
// so repeated join events never produce duplicate fan-out.
func (h *Hub) JoinRoom(session *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.sessions[session.UserID]; !ok || current.ID != session.ID {
		return
	}
	session.rooms[room] = struct{}{}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[uint]struct{})
		h.rooms[room] = members
	}
	members[session.UserID] = struct{}{}
}

// LeaveRoom unsubscribes the session's user from a room.
func (h *Hub) LeaveRoom(session *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(session.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, session.UserID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// InRoom reports whether the user is currently subscribed to the room.
func (h *Hub) InRoom(userID uint, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	_, ok = members[userID]
	return ok
}

func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[userID]
	return ok
}

// OnlineUsers returns the connected user IDs in ascending order.
func (h *Hub) OnlineUsers() []uint {
	h.mu.RLock()
	users := make([]uint, 0, len(h.sessions))
	for userID := range h.sessions {
		users = append(users, userID)
	}
	h.mu.RUnlock()
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// EmitToUser delivers one event to one user. Returns an error when the user
// has no live session.
func (h *Hub) EmitToUser(userID uint, event string, payload interface{}) error {
	h.mu.RLock()
	session, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("user %d is not connected", userID)
	}
	if err := session.send(Envelope{Type: event, Payload: payload}); err != nil {
		log.Printf("Error sending %s to user %d: %v", event, userID, err)
		return err
	}
	return nil
}

// EmitToRoom fans an event out to every user subscribed to the room. A failed
// write to one member never blocks delivery to the others.
func (h *Hub) EmitToRoom(room string, event string, payload interface{}) {
	h.mu.RLock()
	members, ok := h.rooms[room]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Session, 0, len(members))
	for userID := range members {
		if session, ok := h.sessions[userID]; ok {
			targets = append(targets, session)
		}
	}
	h.mu.RUnlock()

	for _, session := range targets {
		if err := session.send(Envelope{Type: event, Payload: payload}); err != nil {
			log.Printf("Error emitting %s to user %d in room %s: %v", event, session.UserID, room, err)
		}
	}
}

// EmitToUsers delivers one event to each listed user that is online.
func (h *Hub) EmitToUsers(userIDs []uint, event string, payload interface{}) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(userIDs))
	for _, userID := range userIDs {
		if session, ok := h.sessions[userID]; ok {
			targets = append(targets, session)
		}
	}
	h.mu.RUnlock()

	for _, session := range targets {
		if err := session.send(Envelope{Type: event, Payload: payload}); err != nil {
			log.Printf("Error emitting %s to user %d: %v", event, session.UserID, err)
		}
	}
}

// BroadcastPresence pushes the current online user list to every connection.
func (h *Hub) BroadcastPresence() {
	users := h.OnlineUsers()
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		targets = append(targets, session)
	}
	h.mu.RUnlock()

	payload := OnlineUsersPayload{UserIDs: users}
	for _, session := range targets {
		if err := session.send(Envelope{Type: EventOnlineUsers, Payload: payload}); err != nil {
			log.Printf("Error broadcasting presence to user %d: %v", session.UserID, err)
		}
	}
}

// pingRoutine sends control pings until the session closes.
func (h *Hub) pingRoutine(session *Session) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered for user %d: %v", session.UserID, r)
		}
	}()

	for {
		select {
		case <-session.closeChan:
			return
		case <-session.pingTicker.C:
			session.writeMu.Lock()
			err := session.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
			session.writeMu.Unlock()
			if err != nil {
				log.Printf("Ping failed for user %d: %v", session.UserID, err)
				if h.Unbind(session) {
					h.BroadcastPresence()
				}
				return
			}
		}
	}
}

// connectionHealthChecker drops sessions that stopped answering pings.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		dead := make([]*Session, 0)
		now := time.Now()
		for _, session := range h.sessions {
			if now.Sub(session.LastPong) > h.pongTimeout {
				dead = append(dead, session)
			}
		}
		h.mu.RUnlock()

		changed := false
		for _, session := range dead {
			log.Printf("Removing dead connection for user %d (no pong received)", session.UserID)
			session.Conn.Close()
			if h.Unbind(session) {
				changed = true
			}
		}
		if changed {
			h.BroadcastPresence()
		}
	}
}
