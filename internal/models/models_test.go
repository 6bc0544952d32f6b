package models

import (
	"testing"
	"time"
)

func TestUserToResponse(t *testing.T) {
	now := time.Now()
	user := &User{
		ID:           1,
		Username:     "john_doe",
		ProfileImage: "https://example.com/avatar.jpg",
		Status:       "working",
		IsOnline:     true,
		LastSeen:     &now,
	}

	response := user.ToResponse()

	if response.ID != user.ID {
		t.Errorf("ToResponse ID = %d, want %d", response.ID, user.ID)
	}
	if response.Username != user.Username {
		t.Errorf("ToResponse Username = %q, want %q", response.Username, user.Username)
	}
	if response.ProfileImage != user.ProfileImage {
		t.Errorf("ToResponse ProfileImage = %q, want %q", response.ProfileImage, user.ProfileImage)
	}
	if response.IsOnline != user.IsOnline {
		t.Errorf("ToResponse IsOnline = %v, want %v", response.IsOnline, user.IsOnline)
	}
	if response.LastSeen == nil {
		t.Errorf("ToResponse LastSeen is nil")
	}
}

func TestMessageToResponse(t *testing.T) {
	createdAt := time.Now()
	recipientID := uint(2)

	message := &Message{
		ID:          1,
		CreatedAt:   createdAt,
		ClientID:    "client-123",
		SenderID:    1,
		RecipientID: &recipientID,
		Content:     "Hello, world!",
		MessageType: PrivateMessage,
		Seq:         7,
		Sender: User{
			ID:       1,
			Username: "john_doe",
		},
	}

	response := message.ToResponse()

	if response.ID != message.ID {
		t.Errorf("ToResponse ID = %d, want %d", response.ID, message.ID)
	}
	if response.ClientID != message.ClientID {
		t.Errorf("ToResponse ClientID = %q, want %q", response.ClientID, message.ClientID)
	}
	if response.Seq != message.Seq {
		t.Errorf("ToResponse Seq = %d, want %d", response.Seq, message.Seq)
	}
	if response.RecipientID == nil || *response.RecipientID != recipientID {
		t.Errorf("ToResponse RecipientID = %v, want %d", response.RecipientID, recipientID)
	}
	if response.Sender.Username != "john_doe" {
		t.Errorf("ToResponse Sender.Username = %q", response.Sender.Username)
	}
	if !response.CreatedAt.Equal(createdAt) {
		t.Errorf("ToResponse CreatedAt = %v, want %v", response.CreatedAt, createdAt)
	}
}

func TestMessageAddressed(t *testing.T) {
	recipientID := uint(2)
	groupID := uint(3)
	zero := uint(0)

	tests := []struct {
		name    string
		message Message
		want    bool
	}{
		{"private with recipient", Message{MessageType: PrivateMessage, RecipientID: &recipientID}, true},
		{"group with group", Message{MessageType: GroupMessage, GroupID: &groupID}, true},
		{"private without recipient", Message{MessageType: PrivateMessage}, false},
		{"private with zero recipient", Message{MessageType: PrivateMessage, RecipientID: &zero}, false},
		{"private with both targets", Message{MessageType: PrivateMessage, RecipientID: &recipientID, GroupID: &groupID}, false},
		{"group with recipient", Message{MessageType: GroupMessage, GroupID: &groupID, RecipientID: &recipientID}, false},
		{"unknown type", Message{MessageType: "broadcast", RecipientID: &recipientID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.message.Addressed(); got != tt.want {
				t.Errorf("Addressed() = %v, want %v", got, tt.want)
			}
		})
	}
}
