package ws

import (
	"context"
	"log"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/middleware"
)

// EventAuthenticate is the handshake. It must be the first event on a new
// connection; until it succeeds every other event is rejected.
type EventAuthenticate struct {
	Token string `json:"token"`
}

func (e *EventAuthenticate) GetType() string {
	return "authenticate"
}

type AuthenticatedPayload struct {
	UserID              uint   `json:"user_id"`
	Username            string `json:"username"`
	SessionID           string `json:"session_id"`
	UnreadNotifications int64  `json:"unread_notifications"`
}

func (e *EventAuthenticate) Process(ctx *EventContext) error {
	if ctx.Authenticated() {
		return ctx.Reply(EventAuthenticated, AuthenticatedPayload{
			UserID:    ctx.UserID,
			SessionID: ctx.Session.ID,
		})
	}

	claims, err := middleware.ParseToken(ctx.Secret, e.Token)
	if err != nil {
		SendError(ctx, errs.Authentication("invalid or expired token"))
		return ErrCloseConnection
	}

	ctx.UserID = claims.UserID
	ctx.Session = ctx.Hub.Bind(claims.UserID, ctx.Conn)
	ctx.Hub.JoinRoom(ctx.Session, InboxRoomID(claims.UserID))

	// Subscribe to every group the user belongs to right now, so group
	// fan-out reaches them without an explicit join event.
	groups, err := ctx.GroupService.GetUserGroups(context.Background(), claims.UserID)
	if err != nil {
		log.Printf("Failed to load groups for user %d: %v", claims.UserID, err)
	}
	for _, group := range groups {
		ctx.Hub.JoinRoom(ctx.Session, GroupRoomID(group.ID))
	}

	go func() {
		if err := ctx.UserService.SetUserOnline(context.Background(), claims.UserID); err != nil {
			log.Printf("Failed to set user %d online: %v", claims.UserID, err)
		}
	}()

	unread, err := ctx.NotificationService.CountUnread(context.Background(), claims.UserID)
	if err != nil {
		log.Printf("Failed to count unread notifications for user %d: %v", claims.UserID, err)
		unread = 0
	}

	if err := ctx.Reply(EventAuthenticated, AuthenticatedPayload{
		UserID:              claims.UserID,
		Username:            claims.Username,
		SessionID:           ctx.Session.ID,
		UnreadNotifications: unread,
	}); err != nil {
		return err
	}

	ctx.Hub.BroadcastPresence()
	return nil
}
