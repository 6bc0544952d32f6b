package models

import (
	"time"
)

type NotificationType string

const (
	NoticeNotification       NotificationType = "notice"
	AnnouncementNotification NotificationType = "announcement"
	EventNotification        NotificationType = "event"
)

// Notification is persisted before any live push is attempted, so an offline
// recipient can recover it by polling. Read is terminal; rows are never deleted.
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	RecipientID     uint             `gorm:"not null;index:idx_notifications_recipient_read" json:"recipient_id"`
	SenderID        *uint            `json:"sender_id"`
	Message         string           `gorm:"type:text;not null" json:"message"`
	Type            NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	RelatedEntityID *uint            `json:"related_entity_id"`
	IsRead          bool             `gorm:"default:false;index:idx_notifications_recipient_read" json:"is_read"`
}
