package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/saksham310/CommunityNest-sub000/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindByClientID(ctx context.Context, clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	return &message, err
}

// MaxSeq seeds the store's in-process sequence counter at startup.
func (r *MessageRepository) MaxSeq(ctx context.Context) (uint64, error) {
	var max uint64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&max).Error
	return max, err
}

// FindConversation returns a page of the private history between two users in
// chronological (created_at, seq) order. A non-zero cursorSeq loads messages
// older than that sequence.
func (r *MessageRepository) FindConversation(ctx context.Context, userID1, userID2 uint, cursorSeq uint64, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.WithContext(ctx).Preload("Sender").
		Where("group_id IS NULL AND ((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))",
			userID1, userID2, userID2, userID1)
	if cursorSeq > 0 {
		q = q.Where("seq < ?", cursorSeq)
	}
	err := q.Order("created_at DESC, seq DESC").
		Limit(limit).
		Find(&messages).Error

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, err
}

func (r *MessageRepository) FindGroupMessages(ctx context.Context, groupID uint, cursorSeq uint64, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.WithContext(ctx).Preload("Sender").
		Where("group_id = ?", groupID)
	if cursorSeq > 0 {
		q = q.Where("seq < ?", cursorSeq)
	}
	err := q.Order("created_at DESC, seq DESC").
		Limit(limit).
		Find(&messages).Error

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, err
}

// MarkConversationAsRead flips the read flag on every unread message from
// peerID addressed to userID. Nothing else on the rows changes.
func (r *MessageRepository) MarkConversationAsRead(ctx context.Context, userID, peerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = false", userID, peerID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) CountUnreadFromPeer(ctx context.Context, userID, peerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = false", userID, peerID).
		Count(&count).Error
	return count, err
}

func (r *MessageRepository) CountGroupUnread(ctx context.Context, groupID uint, afterSeq uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("group_id = ? AND seq > ?", groupID, afterSeq).
		Count(&count).Error
	return count, err
}

func (r *MessageRepository) LatestGroupSeq(ctx context.Context, groupID uint) (uint64, error) {
	var max uint64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&max).Error
	return max, err
}

// Search scans the caller's own conversations (private messages they sent or
// received, plus groups they belong to) for matching content.
func (r *MessageRepository) Search(ctx context.Context, userID uint, query string, limit int) ([]models.Message, error) {
	var messages []models.Message
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).Preload("Sender").
		Where(`LOWER(content) LIKE ? AND (
			sender_id = ? OR recipient_id = ?
			OR group_id IN (SELECT group_id FROM group_members WHERE user_id = ?)
		)`, pattern, userID, userID, userID).
		Order("created_at DESC, seq DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
