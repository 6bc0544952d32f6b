package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/saksham310/CommunityNest-sub000/internal/cache"
	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

// Outbound event names.
const (
	EventAuthenticated      = "authenticated"
	EventOnlineUsers        = "online-users"
	EventPrivateMessage     = "private-message"
	EventGroupMessage       = "group-message"
	EventGroupConversations = "group-conversations"
	EventPreviousMessages   = "previous-messages"
	EventNewNotification    = "new-notification"
	EventPong               = "pong"
	EventError              = "error"
)

// ErrCloseConnection signals the read loop to drop the connection after the
// current event, used when the handshake fails.
var ErrCloseConnection = errors.New("close connection")

// EventContext carries everything an event needs to process itself. UserID
// and Session stay zero until the authenticate event succeeds.
type EventContext struct {
	Conn    Conn
	Hub     *Hub
	Session *Session
	UserID  uint

	Secret string

	MessageService      *service.MessageService
	UserService         *service.UserService
	GroupService        *service.GroupService
	ConversationService *service.ConversationService
	NotificationService *service.NotificationService
	ConversationCache   *cache.ConversationCache
}

// Authenticated reports whether the handshake has completed on this
// connection.
func (ctx *EventContext) Authenticated() bool {
	return ctx.Session != nil
}

// Reply writes an event back to this connection, through the session's write
// lock once one exists so replies cannot interleave with fan-out.
func (ctx *EventContext) Reply(event string, payload interface{}) error {
	envelope := Envelope{Type: event, Payload: payload}
	if ctx.Session != nil {
		return ctx.Session.send(envelope)
	}
	return ctx.Conn.WriteJSON(envelope)
}

// requireAuth rejects events arriving before the handshake completed.
func requireAuth(ctx *EventContext) error {
	if !ctx.Authenticated() {
		return errs.Authentication("authenticate first")
	}
	return nil
}

// Event is implemented by every inbound message type.
type Event interface {
	GetType() string
	Process(ctx *EventContext) error
}

// Envelope is the wire format for both directions.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// serializedEvent mirrors Envelope for decoding, deferring the payload.
type serializedEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OnlineUsersPayload lists connected users for presence broadcasts.
type OnlineUsersPayload struct {
	UserIDs []uint `json:"userIds"`
}

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

var typeRegistry = map[string]reflect.Type{}

func RegisterType(event Event) {
	typeRegistry[event.GetType()] = reflect.TypeOf(event).Elem()
}

func createEvent(eventType string) (Event, error) {
	t, ok := typeRegistry[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	return reflect.New(t).Interface().(Event), nil
}

func Deserialize(jsonBytes []byte) (Event, error) {
	var wrapper serializedEvent
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}
	event, err := createEvent(wrapper.Type)
	if err != nil {
		return nil, err
	}
	if len(wrapper.Payload) > 0 {
		if err := json.Unmarshal(wrapper.Payload, event); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// SendError reports a failure to the client without dropping the connection.
func SendError(ctx *EventContext, err error) error {
	return ctx.Reply(EventError, ErrorPayload{
		Error:     err.Error(),
		Kind:      string(errs.KindOf(err)),
		Retryable: errs.Retryable(err),
	})
}
