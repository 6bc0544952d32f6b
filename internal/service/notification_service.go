package service

import (
	"context"
	"log"
	"time"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/models"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
	"github.com/saksham310/CommunityNest-sub000/internal/validation"
)

// Pusher delivers an event to a user's live session, if any. The hub
// implements it; the dispatcher never learns about connections directly.
type Pusher interface {
	IsOnline(userID uint) bool
	EmitToUser(userID uint, eventType string, payload interface{}) error
}

// NotificationService persists every notification before attempting live
// delivery: an offline recipient recovers it by polling, an online one also
// gets an immediate push. That ordering is what gives at-least-once.
type NotificationService struct {
	notificationRepo repository.NotificationRepositoryInterface
	pusher           Pusher
	timeout          time.Duration
}

func NewNotificationService(notificationRepo repository.NotificationRepositoryInterface, timeout time.Duration) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, timeout: timeout}
}

// SetPusher wires the live-delivery path after the hub exists.
func (s *NotificationService) SetPusher(pusher Pusher) {
	s.pusher = pusher
}

type NotifyInput struct {
	RecipientID     uint                    `json:"recipient_id" validate:"required"`
	SenderID        *uint                   `json:"sender_id"`
	Message         string                  `json:"message" validate:"required"`
	Type            models.NotificationType `json:"type" validate:"required,oneof=notice announcement event"`
	RelatedEntityID *uint                   `json:"related_entity_id"`
}

// Notify persists the notification unconditionally, then pushes it to the
// recipient's live session when one exists. Push failures are logged, never
// surfaced: the durable row already guarantees eventual delivery.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		RecipientID:     input.RecipientID,
		SenderID:        input.SenderID,
		Message:         input.Message,
		Type:            input.Type,
		RelatedEntityID: input.RelatedEntityID,
	}

	sctx, cancel := storeCtx(ctx, s.timeout)
	err := s.notificationRepo.Create(sctx, notification)
	cancel()
	if err != nil {
		return nil, errs.FromStore("failed to persist notification", err)
	}

	if s.pusher != nil && s.pusher.IsOnline(input.RecipientID) {
		if err := s.pusher.EmitToUser(input.RecipientID, "new-notification", notification); err != nil {
			log.Printf("live notification push to user %d failed (row %d durable): %v", input.RecipientID, notification.ID, err)
		}
	}

	return notification, nil
}

// NotifyNewMessage records a notice per recipient for a freshly appended
// message. Failures are logged per recipient and never fail the message
// operation that triggered them.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, message *models.Message, recipientIDs []uint) {
	text := message.Sender.Username
	if text == "" {
		text = "New message"
	} else {
		text = "New message from " + text
	}
	for _, recipientID := range recipientIDs {
		if recipientID == message.SenderID {
			continue
		}
		senderID := message.SenderID
		_, err := s.Notify(ctx, NotifyInput{
			RecipientID:     recipientID,
			SenderID:        &senderID,
			Message:         text,
			Type:            models.NoticeNotification,
			RelatedEntityID: &message.ID,
		})
		if err != nil {
			log.Printf("notification for message %d to user %d failed: %v", message.ID, recipientID, err)
		}
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	notifications, err := s.notificationRepo.ListByRecipient(sctx, recipientID, limit)
	if err != nil {
		return nil, errs.FromStore("failed to list notifications", err)
	}
	return notifications, nil
}

// CountUnread recomputes the live count of unread rows at call time.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	count, err := s.notificationRepo.CountUnread(sctx, recipientID)
	if err != nil {
		return 0, errs.FromStore("failed to count unread notifications", err)
	}
	return count, nil
}

// MarkRead flips a notification to read. The transition is terminal and only
// the recipient may perform it.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) error {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	rows, err := s.notificationRepo.MarkRead(sctx, id, recipientID)
	if err != nil {
		return errs.FromStore("failed to mark notification read", err)
	}
	if rows == 0 {
		return errs.NotFound("notification not found")
	}
	return nil
}
