package repository

import (
	"context"
	"strings"
	"time"
)

// GroupConversationRow is a denormalized row representing a group
// conversation with last message + unread count + group info. A group with
// no messages yet has MessageID 0 and uses the group's creation time as its
// ordering key.
type GroupConversationRow struct {
	GroupID     uint   `gorm:"column:group_id"`
	GroupName   string `gorm:"column:group_name"`
	GroupIcon   string `gorm:"column:group_icon"`
	MemberCount int64  `gorm:"column:member_count"`

	UnreadCount int64 `gorm:"column:unread_count"`

	MessageID        uint      `gorm:"column:message_id"`
	MessageSenderID  uint      `gorm:"column:message_sender_id"`
	MessageContent   string    `gorm:"column:message_content"`
	MessageSeq       uint64    `gorm:"column:message_seq"`
	MessageCreatedAt time.Time `gorm:"column:message_created_at"`
	SenderUsername   string    `gorm:"column:sender_username"`

	LastActivity time.Time `gorm:"column:last_activity"`
}

// ListGroupConversations returns one row per group containing userID, the
// latest group message left-joined where one exists. Unread counts are
// recomputed against the member's monotonic read state on every call.
func (r *MessageRepository) ListGroupConversations(ctx context.Context, userID uint, limit int) ([]GroupConversationRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := strings.TrimSpace(`
WITH ranked AS (
	SELECT
		m.group_id AS group_id,
		m.id AS message_id,
		m.sender_id AS message_sender_id,
		m.content AS message_content,
		m.seq AS message_seq,
		m.created_at AS message_created_at,
		m.created_at AS last_activity,
		ROW_NUMBER() OVER (
			PARTITION BY m.group_id
			ORDER BY m.created_at DESC, m.seq DESC
		) AS rn,
		SUM(CASE WHEN m.seq > COALESCE(grs.last_read_seq, 0) THEN 1 ELSE 0 END) OVER (
			PARTITION BY m.group_id
		) AS unread_count
	FROM messages m
	JOIN group_members gm ON gm.group_id = m.group_id AND gm.user_id = ?
	LEFT JOIN group_read_states grs ON grs.group_id = m.group_id AND grs.user_id = ?
	WHERE m.group_id IS NOT NULL
),
group_empty AS (
	SELECT
		g.id AS group_id,
		0::bigint AS message_id,
		0::bigint AS message_sender_id,
		''::text AS message_content,
		0::bigint AS message_seq,
		g.created_at AS message_created_at,
		g.created_at AS last_activity,
		1 AS rn,
		0 AS unread_count
	FROM group_members gm
	JOIN groups g ON g.id = gm.group_id
	WHERE gm.user_id = ?
		AND g.deleted_at IS NULL
		AND NOT EXISTS (
			SELECT 1 FROM messages m WHERE m.group_id = g.id
		)
),
combined AS (
	SELECT * FROM ranked WHERE rn = 1
	UNION ALL
	SELECT * FROM group_empty
)
SELECT
	t.group_id,
	g.name AS group_name,
	g.icon AS group_icon,
	(
		SELECT COUNT(*)
		FROM group_members gm2
		WHERE gm2.group_id = t.group_id
	) AS member_count,
	t.unread_count,
	t.message_id,
	t.message_sender_id,
	t.message_content,
	t.message_seq,
	t.message_created_at,
	t.last_activity,
	COALESCE(sender.username, '') AS sender_username
FROM combined t
JOIN groups g ON g.id = t.group_id
LEFT JOIN users sender ON sender.id = t.message_sender_id
ORDER BY t.last_activity DESC, t.message_seq DESC
LIMIT ?
`)

	var rows []GroupConversationRow
	err := r.db.WithContext(ctx).
		Raw(query, userID, userID, userID, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
