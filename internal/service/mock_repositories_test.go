package service

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/saksham310/CommunityNest-sub000/internal/models"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
)

var errNotFound = gorm.ErrRecordNotFound

// MockMessageRepository implements repository.MessageRepositoryInterface
// in memory for tests.
type MockMessageRepository struct {
	messages  map[uint]*models.Message
	nextID    uint
	failNext  error
	directRow []repository.ConversationRow
	groupRow  []repository.GroupConversationRow
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *MockMessageRepository) Create(_ context.Context, message *models.Message) error {
	if err := m.fail(); err != nil {
		return err
	}
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	stored := *message
	m.messages[message.ID] = &stored
	return nil
}

func (m *MockMessageRepository) FindByID(_ context.Context, id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		stored := *msg
		return &stored, nil
	}
	return nil, errNotFound
}

func (m *MockMessageRepository) FindByClientID(_ context.Context, clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			stored := *msg
			return &stored, nil
		}
	}
	return nil, errNotFound
}

func (m *MockMessageRepository) MaxSeq(_ context.Context) (uint64, error) {
	var max uint64
	for _, msg := range m.messages {
		if msg.Seq > max {
			max = msg.Seq
		}
	}
	return max, nil
}

func (m *MockMessageRepository) sorted() []models.Message {
	out := make([]models.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, *msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (m *MockMessageRepository) FindConversation(_ context.Context, userID1, userID2 uint, cursorSeq uint64, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.sorted() {
		if cursorSeq > 0 && msg.Seq >= cursorSeq {
			continue
		}
		if msg.RecipientID == nil {
			continue
		}
		if (msg.SenderID == userID1 && *msg.RecipientID == userID2) ||
			(msg.SenderID == userID2 && *msg.RecipientID == userID1) {
			result = append(result, msg)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (m *MockMessageRepository) FindGroupMessages(_ context.Context, groupID uint, cursorSeq uint64, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.sorted() {
		if cursorSeq > 0 && msg.Seq >= cursorSeq {
			continue
		}
		if msg.GroupID != nil && *msg.GroupID == groupID {
			result = append(result, msg)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (m *MockMessageRepository) MarkConversationAsRead(_ context.Context, userID, peerID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.RecipientID != nil && *msg.RecipientID == userID && msg.SenderID == peerID && !msg.IsRead {
			msg.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) CountUnreadFromPeer(_ context.Context, userID, peerID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.RecipientID != nil && *msg.RecipientID == userID && msg.SenderID == peerID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) CountGroupUnread(_ context.Context, groupID uint, afterSeq uint64) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID && msg.Seq > afterSeq {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) LatestGroupSeq(_ context.Context, groupID uint) (uint64, error) {
	var latest uint64
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID && msg.Seq > latest {
			latest = msg.Seq
		}
	}
	return latest, nil
}

func (m *MockMessageRepository) Search(_ context.Context, userID uint, query string, limit int) ([]models.Message, error) {
	var result []models.Message
	needle := strings.ToLower(query)
	for _, msg := range m.sorted() {
		if strings.Contains(strings.ToLower(msg.Content), needle) {
			result = append(result, msg)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockMessageRepository) ListDirectConversations(_ context.Context, userID uint, limit int) ([]repository.ConversationRow, error) {
	return m.directRow, nil
}

func (m *MockMessageRepository) ListGroupConversations(_ context.Context, userID uint, limit int) ([]repository.GroupConversationRow, error) {
	return m.groupRow, nil
}

// MockGroupRepository implements repository.GroupRepositoryInterface.
type MockGroupRepository struct {
	groups      map[uint]*models.Group
	memberships map[uint]map[uint]models.GroupRole
	nextID      uint
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[uint]*models.Group),
		memberships: make(map[uint]map[uint]models.GroupRole),
		nextID:      1,
	}
}

func (m *MockGroupRepository) Create(_ context.Context, group *models.Group) error {
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) FindByID(_ context.Context, id uint) (*models.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, errNotFound
}

func (m *MockGroupRepository) AddMember(_ context.Context, groupID, userID uint, role models.GroupRole) error {
	if _, ok := m.memberships[groupID]; !ok {
		m.memberships[groupID] = make(map[uint]models.GroupRole)
	}
	m.memberships[groupID][userID] = role
	return nil
}

func (m *MockGroupRepository) RemoveMember(_ context.Context, groupID, userID uint) error {
	if gm, ok := m.memberships[groupID]; ok {
		delete(gm, userID)
	}
	return nil
}

func (m *MockGroupRepository) GetMembers(_ context.Context, groupID uint) ([]models.User, error) {
	var users []models.User
	for _, uid := range m.memberIDs(groupID) {
		users = append(users, models.User{ID: uid})
	}
	return users, nil
}

func (m *MockGroupRepository) memberIDs(groupID uint) []uint {
	var ids []uint
	if gm, ok := m.memberships[groupID]; ok {
		for uid := range gm {
			ids = append(ids, uid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MockGroupRepository) GetMemberIDs(_ context.Context, groupID uint) ([]uint, error) {
	return m.memberIDs(groupID), nil
}

func (m *MockGroupRepository) IsMember(_ context.Context, groupID, userID uint) (bool, error) {
	if gm, ok := m.memberships[groupID]; ok {
		_, ok := gm[userID]
		return ok, nil
	}
	return false, nil
}

func (m *MockGroupRepository) GetMemberRole(_ context.Context, groupID, userID uint) (models.GroupRole, error) {
	if gm, ok := m.memberships[groupID]; ok {
		if role, ok := gm[userID]; ok {
			return role, nil
		}
	}
	return "", errNotFound
}

func (m *MockGroupRepository) CountAdmins(_ context.Context, groupID uint) (int64, error) {
	var count int64
	if gm, ok := m.memberships[groupID]; ok {
		for _, role := range gm {
			if role == models.RoleAdmin {
				count++
			}
		}
	}
	return count, nil
}

func (m *MockGroupRepository) GetUserGroups(_ context.Context, userID uint) ([]models.Group, error) {
	var out []models.Group
	for gid, gm := range m.memberships {
		if _, ok := gm[userID]; ok {
			if g, ok := m.groups[gid]; ok {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (m *MockGroupRepository) UpdateLastMessageID(_ context.Context, groupID, messageID uint) error {
	if g, ok := m.groups[groupID]; ok {
		if g.LastMessageID == nil || *g.LastMessageID < messageID {
			id := messageID
			g.LastMessageID = &id
		}
	}
	return nil
}

// MockGroupReadStateRepository implements the monotonic read-state contract.
type MockGroupReadStateRepository struct {
	states map[[2]uint]uint64
}

func NewMockGroupReadStateRepository() *MockGroupReadStateRepository {
	return &MockGroupReadStateRepository{states: make(map[[2]uint]uint64)}
}

func (m *MockGroupReadStateRepository) EnsureForMember(_ context.Context, groupID, userID uint) error {
	key := [2]uint{groupID, userID}
	if _, ok := m.states[key]; !ok {
		m.states[key] = 0
	}
	return nil
}

func (m *MockGroupReadStateRepository) DeleteForMember(_ context.Context, groupID, userID uint) error {
	delete(m.states, [2]uint{groupID, userID})
	return nil
}

func (m *MockGroupReadStateRepository) UpsertMonotonic(_ context.Context, groupID, userID uint, lastReadSeq uint64) error {
	key := [2]uint{groupID, userID}
	if current, ok := m.states[key]; !ok || lastReadSeq > current {
		m.states[key] = lastReadSeq
	}
	return nil
}

func (m *MockGroupReadStateRepository) Get(_ context.Context, groupID, userID uint) (*models.GroupReadState, error) {
	if seq, ok := m.states[[2]uint{groupID, userID}]; ok {
		return &models.GroupReadState{GroupID: groupID, UserID: userID, LastReadSeq: seq}, nil
	}
	return nil, errNotFound
}

// MockNotificationRepository implements the notification store.
type MockNotificationRepository struct {
	notifications map[uint]*models.Notification
	nextID        uint
	failNext      error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[uint]*models.Notification),
		nextID:        1,
	}
}

func (m *MockNotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if notification.ID == 0 {
		notification.ID = m.nextID
		m.nextID++
	}
	stored := *notification
	m.notifications[notification.ID] = &stored
	return nil
}

func (m *MockNotificationRepository) ListByRecipient(_ context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockNotificationRepository) CountUnread(_ context.Context, recipientID uint) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) MarkRead(_ context.Context, id, recipientID uint) (int64, error) {
	if n, ok := m.notifications[id]; ok && n.RecipientID == recipientID {
		n.IsRead = true
		return 1, nil
	}
	return 0, nil
}

// MockUserRepository implements repository.UserRepositoryInterface.
type MockUserRepository struct {
	users map[uint]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (m *MockUserRepository) FindByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *MockUserRepository) UpdateOnlineStatus(_ context.Context, userID uint, isOnline bool) error {
	if u, ok := m.users[userID]; ok {
		u.IsOnline = isOnline
	}
	return nil
}

func (m *MockUserRepository) SearchUsers(_ context.Context, query string, limit int) ([]models.User, error) {
	var out []models.User
	needle := strings.ToLower(query)
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			out = append(out, *u)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
