package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/saksham310/CommunityNest-sub000/internal/cache"
	"github.com/saksham310/CommunityNest-sub000/internal/handlers/ws"
	"github.com/saksham310/CommunityNest-sub000/internal/httpx"
	"github.com/saksham310/CommunityNest-sub000/internal/models"
	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

type MessageHandler struct {
	messageService      *service.MessageService
	conversationService *service.ConversationService
	groupService        *service.GroupService
	notificationService *service.NotificationService
	conversationCache   *cache.ConversationCache
	hub                 *ws.Hub
}

func NewMessageHandler(
	messageService *service.MessageService,
	conversationService *service.ConversationService,
	groupService *service.GroupService,
	notificationService *service.NotificationService,
	conversationCache *cache.ConversationCache,
	hub *ws.Hub,
) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		conversationService: conversationService,
		groupService:        groupService,
		notificationService: notificationService,
		conversationCache:   conversationCache,
		hub:                 hub,
	}
}

// GetMessages returns a chronological page of the private conversation
// between the caller and the user in the path.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	peerID, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil || peerID == 0 {
		return httpx.BadRequest(c, "Invalid user id")
	}

	limit := queryInt(c, "limit", 50)
	cursor := queryUint64(c, "before_seq", 0)

	messages, err := h.messageService.History(c.Context(), userID, uint(peerID), cursor, limit)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": toMessageResponses(messages),
		"count":    len(messages),
	})
}

// SendMessage appends a private or group message over REST and fans it out to
// live sessions the same way the WebSocket path does.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	var input service.AppendInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}

	message, err := h.messageService.Append(c.Context(), userID, input)
	if err != nil {
		return httpx.FromError(c, err)
	}

	h.fanOut(c, userID, message)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// fanOut delivers a freshly appended message to live sessions and records
// notifications for recipients who are not watching the room.
func (h *MessageHandler) fanOut(c *fiber.Ctx, senderID uint, message *models.Message) {
	response := message.ToResponse()

	if message.RecipientID != nil {
		recipientID := *message.RecipientID
		room := ws.PrivateRoomID(senderID, recipientID)
		h.hub.EmitToRoom(room, ws.EventPrivateMessage, response)
		if !h.hub.InRoom(recipientID, room) {
			h.hub.EmitToUsers([]uint{recipientID}, ws.EventPrivateMessage, response)
			h.notificationService.NotifyNewMessage(c.Context(), message, []uint{recipientID})
		}
		h.conversationCache.Invalidate(senderID, recipientID)
		return
	}

	if message.GroupID != nil {
		groupID := *message.GroupID
		room := ws.GroupRoomID(groupID)
		h.hub.EmitToRoom(room, ws.EventGroupMessage, response)
		memberIDs, err := h.groupService.GetMemberIDs(c.Context(), groupID)
		if err != nil {
			return
		}
		away := make([]uint, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			if memberID != senderID && !h.hub.InRoom(memberID, room) {
				away = append(away, memberID)
			}
		}
		if len(away) > 0 {
			h.notificationService.NotifyNewMessage(c.Context(), message, away)
		}
		h.conversationCache.Invalidate(memberIDs...)
	}
}

// GetConversationPartners returns the caller's merged conversation list,
// private and group, most recent first. The per-user cache only short-cuts
// repeated reads; unread counts inside it were recomputed when it was filled
// and every write path invalidates it.
func (h *MessageHandler) GetConversationPartners(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	var conversations []service.Conversation
	if !h.conversationCache.GetList(userID, &conversations) {
		conversations, err = h.conversationService.GetConversations(c.Context(), userID)
		if err != nil {
			return httpx.FromError(c, err)
		}
		_ = h.conversationCache.SetList(userID, conversations)
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// MarkConversationRead clears the caller's unread state against one peer or
// group.
func (h *MessageHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	targetID, err := strconv.ParseUint(c.Params("targetId"), 10, 32)
	if err != nil || targetID == 0 {
		return httpx.BadRequest(c, "Invalid target id")
	}

	scope := c.Query("scope", service.ScopePrivate)
	cleared, err := h.messageService.MarkRead(c.Context(), userID, uint(targetID), scope)
	if err != nil {
		return httpx.FromError(c, err)
	}

	h.conversationCache.Invalidate(userID)
	return c.JSON(fiber.Map{"cleared": cleared})
}

// Search finds messages containing the query across the caller's private
// conversations and groups.
func (h *MessageHandler) Search(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	query := c.Query("q")
	if query == "" {
		return httpx.BadRequest(c, "q is required")
	}

	messages, err := h.messageService.Search(c.Context(), userID, query, queryInt(c, "limit", 25))
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": toMessageResponses(messages),
		"count":    len(messages),
	})
}

func toMessageResponses(messages []models.Message) []models.MessageResponse {
	return lo.Map(messages, func(m models.Message, _ int) models.MessageResponse {
		return m.ToResponse()
	})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	if s := c.Query(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func queryUint64(c *fiber.Ctx, key string, def uint64) uint64 {
	if s := c.Query(key); s != "" {
		if v, err := strconv.ParseUint(s, 10, 64); err == nil {
			return v
		}
	}
	return def
}
