package ws

import (
	"context"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

// EventMarkRead clears the caller's unread state for one conversation. Scope
// "private" marks the peer's messages read; scope "group" advances the
// caller's group read position.
type EventMarkRead struct {
	Scope    string `json:"scope"`
	TargetID uint   `json:"target_id"`
}

func (e *EventMarkRead) GetType() string {
	return "mark-read"
}

func (e *EventMarkRead) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	if e.Scope != service.ScopePrivate && e.Scope != service.ScopeGroup {
		return errs.Validation("scope must be private or group")
	}

	if _, err := ctx.MessageService.MarkRead(context.Background(), ctx.UserID, e.TargetID, e.Scope); err != nil {
		return err
	}

	ctx.ConversationCache.Invalidate(ctx.UserID)
	return nil
}
