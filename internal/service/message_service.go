package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/models"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
	"github.com/saksham310/CommunityNest-sub000/internal/validation"
)

// Read-mark scopes.
const (
	ScopePrivate = "private"
	ScopeGroup   = "group"
)

// MessageService is the append-only message store. It stamps the server
// timestamp and a monotonic sequence on every append; the sequence breaks
// timestamp ties so retrieval order (created_at, seq) is total.
type MessageService struct {
	messageRepo   repository.MessageRepositoryInterface
	groupRepo     repository.GroupRepositoryInterface
	readStateRepo repository.GroupReadStateRepositoryInterface
	timeout       time.Duration
	maxContent    int

	seqMu  sync.Mutex
	seq    uint64
	seeded bool
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	readStateRepo repository.GroupReadStateRepositoryInterface,
	timeout time.Duration,
	maxContent int,
) *MessageService {
	if maxContent < 1 {
		maxContent = 4000
	}
	return &MessageService{
		messageRepo:   messageRepo,
		groupRepo:     groupRepo,
		readStateRepo: readStateRepo,
		timeout:       timeout,
		maxContent:    maxContent,
	}
}

func (s *MessageService) nextSeq(ctx context.Context) (uint64, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if !s.seeded {
		sctx, cancel := storeCtx(ctx, s.timeout)
		defer cancel()
		max, err := s.messageRepo.MaxSeq(sctx)
		if err != nil {
			return 0, errs.FromStore("failed to seed message sequence", err)
		}
		s.seq = max
		s.seeded = true
	}
	s.seq++
	return s.seq, nil
}

type AppendInput struct {
	ClientID    string `json:"client_id"`
	RecipientID *uint  `json:"recipient_id"`
	GroupID     *uint  `json:"group_id"`
	Content     string `json:"content" validate:"required"`
}

// Append validates, stamps and persists a message, returning the stored
// record with the sender projection loaded. For group messages the sender
// must be a member, and the group's last-message pointer is refreshed on a
// best-effort basis: the message record is authoritative, the pointer is a
// cache, so a pointer failure never fails the append.
func (s *MessageService) Append(ctx context.Context, senderID uint, input AppendInput) (*models.Message, error) {
	content := validation.TrimAndLimit(input.Content, s.maxContent)
	if content == "" {
		return nil, errs.Validation("content is required")
	}

	message := &models.Message{
		ClientID:    input.ClientID,
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		GroupID:     input.GroupID,
		Content:     content,
	}
	switch {
	case input.GroupID != nil && *input.GroupID != 0:
		message.MessageType = models.GroupMessage
	default:
		message.MessageType = models.PrivateMessage
	}
	if !message.Addressed() {
		return nil, errs.Validation("message must target exactly one recipient or group")
	}
	if message.RecipientID != nil && *message.RecipientID == senderID {
		return nil, errs.Validation("cannot message yourself")
	}

	if message.GroupID != nil {
		sctx, cancel := storeCtx(ctx, s.timeout)
		isMember, err := s.groupRepo.IsMember(sctx, *message.GroupID, senderID)
		cancel()
		if err != nil {
			return nil, errs.FromStore("failed to check group membership", err)
		}
		if !isMember {
			return nil, errs.Permission("not a member of this group")
		}
	}

	// Resend with the same client id returns the original record.
	if message.ClientID != "" {
		sctx, cancel := storeCtx(ctx, s.timeout)
		existing, err := s.messageRepo.FindByClientID(sctx, message.ClientID, senderID)
		cancel()
		if err == nil {
			return existing, nil
		}
	} else {
		message.ClientID = uuid.NewString()
	}

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return nil, err
	}
	message.Seq = seq
	message.CreatedAt = time.Now().UTC()

	sctx, cancel := storeCtx(ctx, s.timeout)
	err = s.messageRepo.Create(sctx, message)
	cancel()
	if err != nil {
		return nil, errs.FromStore("failed to persist message", err)
	}

	if message.GroupID != nil {
		sctx, cancel := storeCtx(ctx, s.timeout)
		if err := s.groupRepo.UpdateLastMessageID(sctx, *message.GroupID, message.ID); err != nil {
			log.Printf("group %d last-message pointer update failed (message %d durable): %v", *message.GroupID, message.ID, err)
		}
		cancel()
	}

	sctx, cancel = storeCtx(ctx, s.timeout)
	defer cancel()
	stored, err := s.messageRepo.FindByID(sctx, message.ID)
	if err != nil {
		// The append itself succeeded; fall back to the unloaded record.
		return message, nil
	}
	return stored, nil
}

// History returns a chronological page of the private conversation between
// userID and peerID. A non-zero cursorSeq pages backwards.
func (s *MessageService) History(ctx context.Context, userID, peerID uint, cursorSeq uint64, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	messages, err := s.messageRepo.FindConversation(sctx, userID, peerID, cursorSeq, limit)
	if err != nil {
		return nil, errs.FromStore("failed to fetch conversation", err)
	}
	return messages, nil
}

// GroupHistory returns a chronological page of a group's messages; the
// caller must be a member.
func (s *MessageService) GroupHistory(ctx context.Context, userID, groupID uint, cursorSeq uint64, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sctx, cancel := storeCtx(ctx, s.timeout)
	isMember, err := s.groupRepo.IsMember(sctx, groupID, userID)
	cancel()
	if err != nil {
		return nil, errs.FromStore("failed to check group membership", err)
	}
	if !isMember {
		return nil, errs.Permission("not a member of this group")
	}

	sctx, cancel = storeCtx(ctx, s.timeout)
	defer cancel()
	messages, err := s.messageRepo.FindGroupMessages(sctx, groupID, cursorSeq, limit)
	if err != nil {
		return nil, errs.FromStore("failed to fetch group messages", err)
	}
	return messages, nil
}

// MarkRead clears unread messages addressed to userID from the given peer or
// group and returns how many were cleared. It is the only mutation the store
// permits on an existing message.
func (s *MessageService) MarkRead(ctx context.Context, userID, targetID uint, scope string) (int64, error) {
	switch scope {
	case ScopePrivate:
		sctx, cancel := storeCtx(ctx, s.timeout)
		defer cancel()
		count, err := s.messageRepo.MarkConversationAsRead(sctx, userID, targetID)
		if err != nil {
			return 0, errs.FromStore("failed to mark conversation read", err)
		}
		return count, nil

	case ScopeGroup:
		sctx, cancel := storeCtx(ctx, s.timeout)
		isMember, err := s.groupRepo.IsMember(sctx, targetID, userID)
		cancel()
		if err != nil {
			return 0, errs.FromStore("failed to check group membership", err)
		}
		if !isMember {
			return 0, errs.Permission("not a member of this group")
		}

		var lastRead uint64
		sctx, cancel = storeCtx(ctx, s.timeout)
		state, err := s.readStateRepo.Get(sctx, targetID, userID)
		cancel()
		if err == nil {
			lastRead = state.LastReadSeq
		}

		sctx, cancel = storeCtx(ctx, s.timeout)
		cleared, err := s.messageRepo.CountGroupUnread(sctx, targetID, lastRead)
		cancel()
		if err != nil {
			return 0, errs.FromStore("failed to count group unread", err)
		}

		sctx, cancel = storeCtx(ctx, s.timeout)
		latest, err := s.messageRepo.LatestGroupSeq(sctx, targetID)
		cancel()
		if err != nil {
			return 0, errs.FromStore("failed to resolve latest group message", err)
		}

		sctx, cancel = storeCtx(ctx, s.timeout)
		defer cancel()
		if err := s.readStateRepo.UpsertMonotonic(sctx, targetID, userID, latest); err != nil {
			return 0, errs.FromStore("failed to advance group read state", err)
		}
		return cleared, nil

	default:
		return 0, errs.Validation("unknown read scope " + scope)
	}
}

// Search scans the caller's own conversations for matching content.
func (s *MessageService) Search(ctx context.Context, userID uint, query string, limit int) ([]models.Message, error) {
	query = validation.TrimAndLimit(query, 200)
	if query == "" {
		return nil, errs.Validation("search query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	messages, err := s.messageRepo.Search(sctx, userID, query, limit)
	if err != nil {
		return nil, errs.FromStore("search failed", err)
	}
	return messages, nil
}
