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

type GroupHandler struct {
	groupService        *service.GroupService
	messageService      *service.MessageService
	notificationService *service.NotificationService
	conversationCache   *cache.ConversationCache
	hub                 *ws.Hub
}

func NewGroupHandler(
	groupService *service.GroupService,
	messageService *service.MessageService,
	notificationService *service.NotificationService,
	conversationCache *cache.ConversationCache,
	hub *ws.Hub,
) *GroupHandler {
	return &GroupHandler{
		groupService:        groupService,
		messageService:      messageService,
		notificationService: notificationService,
		conversationCache:   conversationCache,
		hub:                 hub,
	}
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	var input service.CreateGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}

	group, err := h.groupService.CreateGroup(c.Context(), userID, input)
	if err != nil {
		return httpx.FromError(c, err)
	}

	// Let the invited members know they were added.
	for _, memberID := range input.MemberIDs {
		if memberID == userID {
			continue
		}
		recipientID := memberID
		senderID := userID
		groupID := group.ID
		_, _ = h.notificationService.Notify(c.Context(), service.NotifyInput{
			RecipientID:     recipientID,
			SenderID:        &senderID,
			Message:         "You were added to " + group.Name,
			Type:            models.NoticeNotification,
			RelatedEntityID: &groupID,
		})
	}
	h.conversationCache.Invalidate(append(input.MemberIDs, userID)...)

	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groups, err := h.groupService.GetUserGroups(c.Context(), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"groups": groups, "count": len(groups)})
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}

	if err := h.groupService.RequireMember(c.Context(), groupID, userID); err != nil {
		return httpx.FromError(c, err)
	}

	group, err := h.groupService.GetGroup(c.Context(), groupID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(group)
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}

	if err := h.groupService.RequireMember(c.Context(), groupID, userID); err != nil {
		return httpx.FromError(c, err)
	}

	members, err := h.groupService.GetMembers(c.Context(), groupID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	responses := lo.Map(members, func(u models.User, _ int) models.UserResponse {
		return u.ToResponse()
	})
	return c.JSON(fiber.Map{"members": responses, "count": len(responses)})
}

type addMemberInput struct {
	UserID uint `json:"user_id"`
}

func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}

	var input addMemberInput
	if err := c.BodyParser(&input); err != nil || input.UserID == 0 {
		return httpx.BadRequest(c, "user_id is required")
	}

	if err := h.groupService.AddMember(c.Context(), groupID, userID, input.UserID); err != nil {
		return httpx.FromError(c, err)
	}

	group, err := h.groupService.GetGroup(c.Context(), groupID)
	if err == nil {
		senderID := userID
		gID := group.ID
		_, _ = h.notificationService.Notify(c.Context(), service.NotifyInput{
			RecipientID:     input.UserID,
			SenderID:        &senderID,
			Message:         "You were added to " + group.Name,
			Type:            models.NoticeNotification,
			RelatedEntityID: &gID,
		})
	}
	h.conversationCache.Invalidate(input.UserID)

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}
	memberID, err := paramUint(c, "userId")
	if err != nil {
		return httpx.BadRequest(c, "Invalid user id")
	}

	if err := h.groupService.RemoveMember(c.Context(), groupID, userID, memberID); err != nil {
		return httpx.FromError(c, err)
	}

	h.conversationCache.Invalidate(memberID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) GetGroupMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}

	messages, err := h.messageService.GroupHistory(c.Context(), userID, groupID, queryUint64(c, "before_seq", 0), queryInt(c, "limit", 50))
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": toMessageResponses(messages),
		"count":    len(messages),
	})
}

type sendGroupMessageInput struct {
	ClientID string `json:"client_id"`
	Content  string `json:"content"`
}

func (h *GroupHandler) SendGroupMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}

	var input sendGroupMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}

	message, err := h.messageService.Append(c.Context(), userID, service.AppendInput{
		ClientID: input.ClientID,
		GroupID:  &groupID,
		Content:  input.Content,
	})
	if err != nil {
		return httpx.FromError(c, err)
	}

	response := message.ToResponse()
	room := ws.GroupRoomID(groupID)
	h.hub.EmitToRoom(room, ws.EventGroupMessage, response)

	if memberIDs, err := h.groupService.GetMemberIDs(c.Context(), groupID); err == nil {
		away := make([]uint, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			if memberID != userID && !h.hub.InRoom(memberID, room) {
				away = append(away, memberID)
			}
		}
		if len(away) > 0 {
			h.notificationService.NotifyNewMessage(c.Context(), message, away)
		}
		h.conversationCache.Invalidate(memberIDs...)
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *GroupHandler) MarkGroupRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid group id")
	}

	cleared, err := h.messageService.MarkRead(c.Context(), userID, groupID, service.ScopeGroup)
	if err != nil {
		return httpx.FromError(c, err)
	}

	h.conversationCache.Invalidate(userID)
	return c.JSON(fiber.Map{"cleared": cleared})
}

func paramUint(c *fiber.Ctx, key string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(key), 10, 32)
	if err != nil || v == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(v), nil
}
