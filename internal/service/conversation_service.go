package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
)

// ConversationService derives per-user conversation summaries from the
// message log. Nothing here is a source of truth: every list, including the
// unread counts inside it, is recomputed from the store on each call.
type ConversationService struct {
	messageRepo repository.MessageRepositoryInterface
	timeout     time.Duration
}

func NewConversationService(messageRepo repository.MessageRepositoryInterface, timeout time.Duration) *ConversationService {
	return &ConversationService{messageRepo: messageRepo, timeout: timeout}
}

type ConversationPeer struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	ProfileImage string     `json:"profile_image"`
	Status       string     `json:"status"`
	IsOnline     bool       `json:"is_online"`
	LastSeen     *time.Time `json:"last_seen"`
}

type ConversationGroup struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	MemberCount int64  `json:"member_count"`
}

type ConversationMessage struct {
	ID             uint      `json:"id"`
	SenderID       uint      `json:"sender_id"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Content        string    `json:"content"`
	Seq            uint64    `json:"seq"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is a derived view: a peer or group identity paired with its
// latest message and recomputed unread count.
type Conversation struct {
	Type         string               `json:"type"` // "private" | "group"
	Peer         *ConversationPeer    `json:"peer,omitempty"`
	Group        *ConversationGroup   `json:"group,omitempty"`
	LastMessage  *ConversationMessage `json:"last_message"`
	UnreadCount  int64                `json:"unread_count"`
	LastActivity time.Time            `json:"last_activity"`
	lastSeq      uint64
}

// GetPrivateConversations lists one conversation per private-message
// partner, most recent activity first.
func (s *ConversationService) GetPrivateConversations(ctx context.Context, userID uint) ([]Conversation, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	rows, err := s.messageRepo.ListDirectConversations(sctx, userID, 100)
	if err != nil {
		return nil, errs.FromStore("failed to list private conversations", err)
	}

	return lo.Map(rows, func(row repository.ConversationRow, _ int) Conversation {
		return Conversation{
			Type: "private",
			Peer: &ConversationPeer{
				ID:           row.PeerID,
				Username:     row.PeerUsername,
				ProfileImage: row.PeerProfileImage,
				Status:       row.PeerStatus,
				IsOnline:     row.PeerIsOnline,
				LastSeen:     row.PeerLastSeen,
			},
			LastMessage: &ConversationMessage{
				ID:        row.MessageID,
				SenderID:  row.MessageSenderID,
				Content:   row.MessageContent,
				Seq:       row.MessageSeq,
				IsRead:    row.MessageIsRead,
				CreatedAt: row.MessageCreatedAt,
			},
			UnreadCount:  row.UnreadCount,
			LastActivity: row.LastActivity,
			lastSeq:      row.MessageSeq,
		}
	}), nil
}

// GetGroupConversations lists one conversation per group the user belongs
// to. A group without messages keeps a nil LastMessage and sorts by its
// creation time.
func (s *ConversationService) GetGroupConversations(ctx context.Context, userID uint) ([]Conversation, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	rows, err := s.messageRepo.ListGroupConversations(sctx, userID, 100)
	if err != nil {
		return nil, errs.FromStore("failed to list group conversations", err)
	}

	return lo.Map(rows, func(row repository.GroupConversationRow, _ int) Conversation {
		conv := Conversation{
			Type: "group",
			Group: &ConversationGroup{
				ID:          row.GroupID,
				Name:        row.GroupName,
				Icon:        row.GroupIcon,
				MemberCount: row.MemberCount,
			},
			UnreadCount:  row.UnreadCount,
			LastActivity: row.LastActivity,
			lastSeq:      row.MessageSeq,
		}
		if row.MessageID != 0 {
			conv.LastMessage = &ConversationMessage{
				ID:             row.MessageID,
				SenderID:       row.MessageSenderID,
				SenderUsername: row.SenderUsername,
				Content:        row.MessageContent,
				Seq:            row.MessageSeq,
				CreatedAt:      row.MessageCreatedAt,
			}
		}
		return conv
	}), nil
}

// GetConversations is the combined view: private and group lists merged and
// re-sorted by most recent activity.
func (s *ConversationService) GetConversations(ctx context.Context, userID uint) ([]Conversation, error) {
	private, err := s.GetPrivateConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.GetGroupConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	combined := append(private, groups...)
	sort.SliceStable(combined, func(i, j int) bool {
		if !combined[i].LastActivity.Equal(combined[j].LastActivity) {
			return combined[i].LastActivity.After(combined[j].LastActivity)
		}
		return combined[i].lastSeq > combined[j].lastSeq
	})
	return combined, nil
}
