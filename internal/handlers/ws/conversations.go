package ws

import (
	"context"

	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

// EventGetGroupConversations returns the caller's group conversation list,
// most recent activity first, with recomputed unread counts.
type EventGetGroupConversations struct {
}

func (e *EventGetGroupConversations) GetType() string {
	return "get-group-conversations"
}

type GroupConversationsPayload struct {
	Conversations []service.Conversation `json:"conversations"`
}

func (e *EventGetGroupConversations) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	conversations, err := ctx.ConversationService.GetGroupConversations(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}

	return ctx.Reply(EventGroupConversations, GroupConversationsPayload{Conversations: conversations})
}
