package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saksham310/CommunityNest-sub000/internal/httpx"
	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	notifications, err := h.notificationService.List(c.Context(), userID, queryInt(c, "limit", 50))
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	count, err := h.notificationService.CountUnread(c.Context(), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"unread": count})
}

func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	notificationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "Invalid notification id")
	}

	if err := h.notificationService.MarkRead(c.Context(), notificationID, userID); err != nil {
		return httpx.FromError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateNotification publishes a notice, announcement or event to one
// recipient. Announcement tooling uses this endpoint.
func (h *NotificationHandler) CreateNotification(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "Unauthorized")
	}

	var input service.NotifyInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	senderID := userID
	input.SenderID = &senderID

	notification, err := h.notificationService.Notify(c.Context(), input)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(notification)
}
