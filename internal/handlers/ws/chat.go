package ws

import (
	"context"

	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

// PrivateMessageEvent appends a direct message and delivers it to the sender
// and the recipient only.
type PrivateMessageEvent struct {
	ClientID    string `json:"client_id"`
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
}

func (e *PrivateMessageEvent) GetType() string {
	return "private-message"
}

func (e *PrivateMessageEvent) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	recipientID := e.RecipientID
	message, err := ctx.MessageService.Append(context.Background(), ctx.UserID, service.AppendInput{
		ClientID:    e.ClientID,
		RecipientID: &recipientID,
		Content:     e.Content,
	})
	if err != nil {
		return err
	}

	response := message.ToResponse()
	room := PrivateRoomID(ctx.UserID, recipientID)
	ctx.Hub.EmitToRoom(room, EventPrivateMessage, response)

	// The recipient may be online without having joined the room yet; deliver
	// directly, never as a broadcast.
	if !ctx.Hub.InRoom(recipientID, room) {
		ctx.Hub.EmitToUsers([]uint{recipientID}, EventPrivateMessage, response)
		go ctx.NotificationService.NotifyNewMessage(context.Background(), message, []uint{recipientID})
	}
	// A sender who resent with the same client id may not be in the room
	// either; make sure they always see their own message echoed.
	if !ctx.Hub.InRoom(ctx.UserID, room) {
		ctx.Hub.EmitToUsers([]uint{ctx.UserID}, EventPrivateMessage, response)
	}

	ctx.ConversationCache.Invalidate(ctx.UserID, recipientID)
	return nil
}

// GroupMessageEvent appends a group message and fans it out to the group
// room. Members not subscribed to the room get a durable notification.
type GroupMessageEvent struct {
	ClientID string `json:"client_id"`
	GroupID  uint   `json:"group_id"`
	Content  string `json:"content"`
}

func (e *GroupMessageEvent) GetType() string {
	return "group-message"
}

func (e *GroupMessageEvent) Process(ctx *EventContext) error {
	if err := requireAuth(ctx); err != nil {
		return err
	}

	groupID := e.GroupID
	message, err := ctx.MessageService.Append(context.Background(), ctx.UserID, service.AppendInput{
		ClientID: e.ClientID,
		GroupID:  &groupID,
		Content:  e.Content,
	})
	if err != nil {
		return err
	}

	response := message.ToResponse()
	room := GroupRoomID(groupID)
	ctx.Hub.EmitToRoom(room, EventGroupMessage, response)

	memberIDs, err := ctx.GroupService.GetMemberIDs(context.Background(), groupID)
	if err != nil {
		return nil
	}

	away := make([]uint, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		if memberID != ctx.UserID && !ctx.Hub.InRoom(memberID, room) {
			away = append(away, memberID)
		}
	}
	if len(away) > 0 {
		go ctx.NotificationService.NotifyNewMessage(context.Background(), message, away)
	}

	ctx.ConversationCache.Invalidate(memberIDs...)
	return nil
}
