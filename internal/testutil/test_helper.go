package testutil

import (
	"testing"
	"time"

	"github.com/saksham310/CommunityNest-sub000/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}

	return &models.User{
		ID:           id,
		Username:     username,
		ProfileImage: "https://example.com/avatar.jpg",
		Status:       "around",
		IsOnline:     false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// CreateTestMessage creates a private test message with default values
func (h *TestHelper) CreateTestMessage(id uint, senderID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if senderID == 0 {
		senderID = 1
	}
	if content == "" {
		content = "Test message"
	}

	recipientID := uint(2)
	return &models.Message{
		ID:          id,
		ClientID:    "client-test",
		SenderID:    senderID,
		RecipientID: &recipientID,
		Content:     content,
		MessageType: models.PrivateMessage,
		Seq:         uint64(id),
		CreatedAt:   time.Now(),
		Sender:      models.User{ID: senderID, Username: "testuser"},
	}
}

// CreateTestGroup creates a test group with default values
func (h *TestHelper) CreateTestGroup(id uint, creatorID uint, name string) *models.Group {
	if id == 0 {
		id = 1
	}
	if creatorID == 0 {
		creatorID = 1
	}
	if name == "" {
		name = "Test Group"
	}

	return &models.Group{
		ID:        id,
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
}

// AssertNoError fails the test when err is non-nil
func (h *TestHelper) AssertNoError(err error, msg string) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("%s: %v", msg, err)
	}
}

// AssertError fails the test when err is nil
func (h *TestHelper) AssertError(err error, msg string) {
	h.t.Helper()
	if err == nil {
		h.t.Fatalf("%s: expected error, got nil", msg)
	}
}
