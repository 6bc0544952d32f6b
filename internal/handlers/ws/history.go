package ws

import (
	"context"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
)

// EventGetMessages pages backwards through a conversation's history without
// changing room subscriptions. A zero before_seq means the latest page.
type EventGetMessages struct {
	PeerID    *uint  `json:"peer_id"`
	GroupID   *uint  `json:"group_id"`
	BeforeSeq uint64 `json:"before_seq"`
	Limit     int    `json:"limit"`
}

func (e *EventGetMessages) GetType() string {
	return "get-messages"
}

func (e *EventGetMessages) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	switch {
	case e.PeerID != nil && e.GroupID == nil:
		messages, err := ctx.MessageService.History(context.Background(), ctx.UserID, *e.PeerID, e.BeforeSeq, e.Limit)
		if err != nil {
			return err
		}
		return ctx.Reply(EventPreviousMessages, PreviousMessagesPayload{
			Room:     PrivateRoomID(ctx.UserID, *e.PeerID),
			Messages: toResponses(messages),
		})
	case e.GroupID != nil && e.PeerID == nil:
		messages, err := ctx.MessageService.GroupHistory(context.Background(), ctx.UserID, *e.GroupID, e.BeforeSeq, e.Limit)
		if err != nil {
			return err
		}
		return ctx.Reply(EventPreviousMessages, PreviousMessagesPayload{
			Room:     GroupRoomID(*e.GroupID),
			Messages: toResponses(messages),
		})
	default:
		return errs.Validation("specify exactly one of peer_id or group_id")
	}
}
