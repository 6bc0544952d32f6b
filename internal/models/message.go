package models

import (
	"time"
)

type MessageType string

const (
	PrivateMessage MessageType = "private"
	GroupMessage   MessageType = "group"
)

// Message is an append-only log record. After creation the only field that
// may change is IsRead/ReadAt; everything else is immutable.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_messages_order" json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// ClientID deduplicates resends from the same sender.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	SenderID    uint   `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender      User   `gorm:"foreignKey:SenderID" json:"sender"`
	RecipientID *uint  `gorm:"index" json:"recipient_id"` // null for group messages
	GroupID     *uint  `gorm:"index" json:"group_id"`     // null for private messages
	Group       *Group `gorm:"foreignKey:GroupID" json:"-"`

	Content     string      `gorm:"type:text;not null" json:"content"`
	MessageType MessageType `gorm:"type:varchar(20);not null" json:"message_type"`

	// Seq is stamped by the message store and breaks CreatedAt ties; the
	// retrieval order is always (created_at, seq) ascending.
	Seq uint64 `gorm:"not null;uniqueIndex;index:idx_messages_order" json:"seq"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}

type MessageResponse struct {
	ID          uint         `json:"id"`
	ClientID    string       `json:"client_id"`
	SenderID    uint         `json:"sender_id"`
	Sender      UserResponse `json:"sender"`
	RecipientID *uint        `json:"recipient_id"`
	GroupID     *uint        `json:"group_id"`
	Content     string       `json:"content"`
	MessageType MessageType  `json:"message_type"`
	Seq         uint64       `json:"seq"`
	IsRead      bool         `json:"is_read"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		SenderID:    m.SenderID,
		Sender:      m.Sender.ToResponse(),
		RecipientID: m.RecipientID,
		GroupID:     m.GroupID,
		Content:     m.Content,
		MessageType: m.MessageType,
		Seq:         m.Seq,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

// Addressed reports whether the message carries exactly one addressing
// target consistent with its type.
func (m *Message) Addressed() bool {
	switch m.MessageType {
	case PrivateMessage:
		return m.RecipientID != nil && *m.RecipientID != 0 && m.GroupID == nil
	case GroupMessage:
		return m.GroupID != nil && *m.GroupID != 0 && m.RecipientID == nil
	default:
		return false
	}
}
