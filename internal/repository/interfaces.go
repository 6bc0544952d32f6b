package repository

import (
	"context"

	"github.com/saksham310/CommunityNest-sub000/internal/models"
)

// Every method takes a context so callers can bound store calls with a
// deadline; a blocked database never blocks the task that issued the call.

// UserRepositoryInterface reads the user projection maintained by the
// identity collaborator.
type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	UpdateOnlineStatus(ctx context.Context, userID uint, isOnline bool) error
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
}

// MessageRepositoryInterface is the persistence contract for the append-only
// message log.
type MessageRepositoryInterface interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	FindByClientID(ctx context.Context, clientID string, senderID uint) (*models.Message, error)
	MaxSeq(ctx context.Context) (uint64, error)
	FindConversation(ctx context.Context, userID1, userID2 uint, cursorSeq uint64, limit int) ([]models.Message, error)
	FindGroupMessages(ctx context.Context, groupID uint, cursorSeq uint64, limit int) ([]models.Message, error)
	MarkConversationAsRead(ctx context.Context, userID, peerID uint) (int64, error)
	CountUnreadFromPeer(ctx context.Context, userID, peerID uint) (int64, error)
	CountGroupUnread(ctx context.Context, groupID uint, afterSeq uint64) (int64, error)
	LatestGroupSeq(ctx context.Context, groupID uint) (uint64, error)
	Search(ctx context.Context, userID uint, query string, limit int) ([]models.Message, error)
	ListDirectConversations(ctx context.Context, userID uint, limit int) ([]ConversationRow, error)
	ListGroupConversations(ctx context.Context, userID uint, limit int) ([]GroupConversationRow, error)
}

// GroupRepositoryInterface manages groups and their membership.
type GroupRepositoryInterface interface {
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id uint) (*models.Group, error)
	AddMember(ctx context.Context, groupID, userID uint, role models.GroupRole) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
	GetMembers(ctx context.Context, groupID uint) ([]models.User, error)
	GetMemberIDs(ctx context.Context, groupID uint) ([]uint, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	GetMemberRole(ctx context.Context, groupID, userID uint) (models.GroupRole, error)
	CountAdmins(ctx context.Context, groupID uint) (int64, error)
	GetUserGroups(ctx context.Context, userID uint) ([]models.Group, error)
	UpdateLastMessageID(ctx context.Context, groupID, messageID uint) error
}

// GroupReadStateRepositoryInterface tracks monotonic per-member read progress.
type GroupReadStateRepositoryInterface interface {
	EnsureForMember(ctx context.Context, groupID, userID uint) error
	DeleteForMember(ctx context.Context, groupID, userID uint) error
	UpsertMonotonic(ctx context.Context, groupID, userID uint, lastReadSeq uint64) error
	Get(ctx context.Context, groupID, userID uint) (*models.GroupReadState, error)
}

// NotificationRepositoryInterface persists notifications durably; rows are
// only ever flipped to read, never deleted.
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) (int64, error)
}
