package ws

import (
	"context"

	"github.com/samber/lo"

	"github.com/saksham310/CommunityNest-sub000/internal/models"
)

// PreviousMessagesPayload carries the room's recent history, oldest first.
type PreviousMessagesPayload struct {
	Room     string                   `json:"room"`
	Messages []models.MessageResponse `json:"messages"`
}

// EventJoinPrivateChat subscribes the caller to the private room shared with
// peer_id and returns the recent history of that conversation.
type EventJoinPrivateChat struct {
	PeerID uint `json:"peer_id"`
	Limit  int  `json:"limit"`
}

func (e *EventJoinPrivateChat) GetType() string {
	return "join-private-chat"
}

func (e *EventJoinPrivateChat) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	// Verify the peer exists before subscribing.
	if _, err := ctx.UserService.GetUser(context.Background(), e.PeerID); err != nil {
		return err
	}

	room := PrivateRoomID(ctx.UserID, e.PeerID)
	ctx.Hub.JoinRoom(ctx.Session, room)

	messages, err := ctx.MessageService.History(context.Background(), ctx.UserID, e.PeerID, 0, e.Limit)
	if err != nil {
		return err
	}

	return ctx.Reply(EventPreviousMessages, PreviousMessagesPayload{
		Room:     room,
		Messages: toResponses(messages),
	})
}

// EventJoinGroupChat subscribes the caller to a group room. Membership is
// checked before the subscription is recorded.
type EventJoinGroupChat struct {
	GroupID uint `json:"group_id"`
	Limit   int  `json:"limit"`
}

func (e *EventJoinGroupChat) GetType() string {
	return "join-group-chat"
}

func (e *EventJoinGroupChat) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	if err := ctx.GroupService.RequireMember(context.Background(), e.GroupID, ctx.UserID); err != nil {
		return err
	}

	room := GroupRoomID(e.GroupID)
	ctx.Hub.JoinRoom(ctx.Session, room)

	messages, err := ctx.MessageService.GroupHistory(context.Background(), ctx.UserID, e.GroupID, 0, e.Limit)
	if err != nil {
		return err
	}

	return ctx.Reply(EventPreviousMessages, PreviousMessagesPayload{
		Room:     room,
		Messages: toResponses(messages),
	})
}

func toResponses(messages []models.Message) []models.MessageResponse {
	return lo.Map(messages, func(m models.Message, _ int) models.MessageResponse {
		return m.ToResponse()
	})
}
