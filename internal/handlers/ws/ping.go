package ws

// EventPing is an application-level keepalive. It is answered even before the
// handshake so clients can probe liveness while authenticating.
type EventPing struct {
}

func (e *EventPing) GetType() string {
	return "ping"
}

func (e *EventPing) Process(ctx *EventContext) error {
	return ctx.Reply(EventPong, nil)
}
