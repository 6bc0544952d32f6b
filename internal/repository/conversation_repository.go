package repository

import (
	"context"
	"strings"
	"time"
)

// ConversationRow is a denormalized row representing a single private
// conversation (1 row per peer) with last message + unread count + peer
// profile. It is deliberately not the full models.User / models.Message
// shape: the projection carries only what the conversation list serves.
type ConversationRow struct {
	PeerID           uint       `gorm:"column:peer_id"`
	PeerUsername     string     `gorm:"column:peer_username"`
	PeerProfileImage string     `gorm:"column:peer_profile_image"`
	PeerStatus       string     `gorm:"column:peer_status"`
	PeerIsOnline     bool       `gorm:"column:peer_is_online"`
	PeerLastSeen     *time.Time `gorm:"column:peer_last_seen"`

	UnreadCount int64 `gorm:"column:unread_count"`

	MessageID          uint      `gorm:"column:message_id"`
	MessageSenderID    uint      `gorm:"column:message_sender_id"`
	MessageRecipientID *uint     `gorm:"column:message_recipient_id"`
	MessageContent     string    `gorm:"column:message_content"`
	MessageIsRead      bool      `gorm:"column:message_is_read"`
	MessageSeq         uint64    `gorm:"column:message_seq"`
	MessageCreatedAt   time.Time `gorm:"column:message_created_at"`

	LastActivity time.Time `gorm:"column:last_activity"`
}

// ListDirectConversations returns one row per private-message peer of userID:
// the latest message by (created_at, seq) plus the recomputed unread count,
// newest activity first. Single query, no N+1; window functions pick the
// latest message per peer and sum unread rows per peer.
func (r *MessageRepository) ListDirectConversations(ctx context.Context, userID uint, limit int) ([]ConversationRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := strings.TrimSpace(`
WITH ranked AS (
	SELECT
		CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END AS peer_id,
		m.id AS message_id,
		m.sender_id AS message_sender_id,
		m.recipient_id AS message_recipient_id,
		m.content AS message_content,
		m.is_read AS message_is_read,
		m.seq AS message_seq,
		m.created_at AS message_created_at,
		m.created_at AS last_activity,
		ROW_NUMBER() OVER (
			PARTITION BY CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END
			ORDER BY m.created_at DESC, m.seq DESC
		) AS rn,
		SUM(CASE WHEN m.recipient_id = ? AND m.is_read = false THEN 1 ELSE 0 END) OVER (
			PARTITION BY CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END
		) AS unread_count
	FROM messages m
	WHERE
		m.group_id IS NULL
		AND m.recipient_id IS NOT NULL
		AND (m.sender_id = ? OR m.recipient_id = ?)
)
SELECT
	t.peer_id,
	peer.username AS peer_username,
	peer.profile_image AS peer_profile_image,
	peer.status AS peer_status,
	peer.is_online AS peer_is_online,
	peer.last_seen AS peer_last_seen,
	t.unread_count,
	t.message_id,
	t.message_sender_id,
	t.message_recipient_id,
	t.message_content,
	t.message_is_read,
	t.message_seq,
	t.message_created_at,
	t.last_activity
FROM ranked t
JOIN users peer ON peer.id = t.peer_id
WHERE t.rn = 1
ORDER BY t.last_activity DESC, t.message_seq DESC
LIMIT ?
`)

	var rows []ConversationRow
	err := r.db.WithContext(ctx).
		Raw(query, userID, userID, userID, userID, userID, userID, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
