package service

import (
	"context"
	"testing"
	"time"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/models"
)

func newTestMessageService() (*MessageService, *MockMessageRepository, *MockGroupRepository, *MockGroupReadStateRepository) {
	messageRepo := NewMockMessageRepository()
	groupRepo := NewMockGroupRepository()
	readStateRepo := NewMockGroupReadStateRepository()
	svc := NewMessageService(messageRepo, groupRepo, readStateRepo, time.Second, 0)
	return svc, messageRepo, groupRepo, readStateRepo
}

func TestAppendStampsSequenceAndTimestamp(t *testing.T) {
	svc, _, _, _ := newTestMessageService()
	ctx := context.Background()
	recipientID := uint(2)

	first, err := svc.Append(ctx, 1, AppendInput{RecipientID: &recipientID, Content: "first"})
	if err != nil {
		t.Fatalf("Append first: %v", err)
	}
	second, err := svc.Append(ctx, 1, AppendInput{RecipientID: &recipientID, Content: "second"})
	if err != nil {
		t.Fatalf("Append second: %v", err)
	}

	if first.Seq == 0 || second.Seq == 0 {
		t.Fatalf("sequence not stamped: %d, %d", first.Seq, second.Seq)
	}
	if second.Seq <= first.Seq {
		t.Errorf("sequence not increasing: first=%d second=%d", first.Seq, second.Seq)
	}
	if first.CreatedAt.IsZero() || second.CreatedAt.IsZero() {
		t.Error("server timestamp not stamped")
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Error("timestamps out of order")
	}
}

func TestAppendSeedsSequenceFromStore(t *testing.T) {
	svc, messageRepo, _, _ := newTestMessageService()
	recipientID := uint(2)
	messageRepo.Create(context.Background(), &models.Message{
		SenderID:    1,
		RecipientID: &recipientID,
		Content:     "old",
		Seq:         41,
	})

	message, err := svc.Append(context.Background(), 1, AppendInput{RecipientID: &recipientID, Content: "new"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if message.Seq != 42 {
		t.Errorf("Seq = %d, want 42", message.Seq)
	}
}

func TestAppendRejectsSelfMessage(t *testing.T) {
	svc, messageRepo, _, _ := newTestMessageService()
	recipientID := uint(1)

	_, err := svc.Append(context.Background(), 1, AppendInput{RecipientID: &recipientID, Content: "hi"})
	if errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(messageRepo.messages) != 0 {
		t.Error("rejected message was persisted")
	}
}

func TestAppendRejectsUnaddressedMessage(t *testing.T) {
	svc, _, _, _ := newTestMessageService()

	_, err := svc.Append(context.Background(), 1, AppendInput{Content: "hi"})
	if errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	recipientID := uint(2)
	groupID := uint(3)
	_, err = svc.Append(context.Background(), 1, AppendInput{RecipientID: &recipientID, GroupID: &groupID, Content: "hi"})
	if errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("expected validation error for double target, got %v", err)
	}
}

func TestAppendRejectsEmptyContent(t *testing.T) {
	svc, _, _, _ := newTestMessageService()
	recipientID := uint(2)

	_, err := svc.Append(context.Background(), 1, AppendInput{RecipientID: &recipientID, Content: "   "})
	if errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAppendTruncatesContentToConfiguredMax(t *testing.T) {
	messageRepo := NewMockMessageRepository()
	svc := NewMessageService(messageRepo, NewMockGroupRepository(), NewMockGroupReadStateRepository(), time.Second, 5)
	recipientID := uint(2)

	message, err := svc.Append(context.Background(), 1, AppendInput{RecipientID: &recipientID, Content: "abcdefgh"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if message.Content != "abcde" {
		t.Errorf("Content = %q, want %q", message.Content, "abcde")
	}
}

func TestAppendToGroupRequiresMembership(t *testing.T) {
	svc, messageRepo, groupRepo, _ := newTestMessageService()
	ctx := context.Background()
	groupRepo.Create(ctx, &models.Group{Name: "ops"})
	groupRepo.AddMember(ctx, 1, 7, models.RoleAdmin)
	groupID := uint(1)

	_, err := svc.Append(ctx, 2, AppendInput{GroupID: &groupID, Content: "hello"})
	if errs.KindOf(err) != errs.KindPermission {
		t.Fatalf("expected permission error, got %v", err)
	}
	if len(messageRepo.messages) != 0 {
		t.Error("message from non-member was persisted")
	}

	if _, err := svc.Append(ctx, 7, AppendInput{GroupID: &groupID, Content: "hello"}); err != nil {
		t.Fatalf("member append failed: %v", err)
	}
}

func TestAppendDeduplicatesByClientID(t *testing.T) {
	svc, messageRepo, _, _ := newTestMessageService()
	ctx := context.Background()
	recipientID := uint(2)
	input := AppendInput{ClientID: "client-abc", RecipientID: &recipientID, Content: "once"}

	first, err := svc.Append(ctx, 1, input)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	second, err := svc.Append(ctx, 1, input)
	if err != nil {
		t.Fatalf("Append resend: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("resend created a new message: %d vs %d", first.ID, second.ID)
	}
	if len(messageRepo.messages) != 1 {
		t.Errorf("store holds %d messages, want 1", len(messageRepo.messages))
	}
}

func TestAppendGeneratesClientIDWhenMissing(t *testing.T) {
	svc, _, _, _ := newTestMessageService()
	recipientID := uint(2)

	message, err := svc.Append(context.Background(), 1, AppendInput{RecipientID: &recipientID, Content: "hi"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if message.ClientID == "" {
		t.Error("ClientID not generated")
	}
}

func TestMarkReadPrivateCountsClearedMessages(t *testing.T) {
	svc, _, _, _ := newTestMessageService()
	ctx := context.Background()
	alice, bob := uint(1), uint(2)

	for i := 0; i < 3; i++ {
		if _, err := svc.Append(ctx, alice, AppendInput{RecipientID: &bob, Content: "msg"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	cleared, err := svc.MarkRead(ctx, bob, alice, ScopePrivate)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if cleared != 3 {
		t.Errorf("cleared = %d, want 3", cleared)
	}

	cleared, err = svc.MarkRead(ctx, bob, alice, ScopePrivate)
	if err != nil {
		t.Fatalf("MarkRead second: %v", err)
	}
	if cleared != 0 {
		t.Errorf("second mark cleared %d, want 0", cleared)
	}
}

func TestMarkReadGroupAdvancesMonotonically(t *testing.T) {
	svc, _, groupRepo, readStateRepo := newTestMessageService()
	ctx := context.Background()
	groupRepo.Create(ctx, &models.Group{Name: "ops"})
	groupRepo.AddMember(ctx, 1, 1, models.RoleAdmin)
	groupRepo.AddMember(ctx, 1, 2, models.RoleMember)
	groupID := uint(1)

	var lastSeq uint64
	for i := 0; i < 4; i++ {
		msg, err := svc.Append(ctx, 1, AppendInput{GroupID: &groupID, Content: "msg"})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		lastSeq = msg.Seq
	}

	cleared, err := svc.MarkRead(ctx, 2, groupID, ScopeGroup)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if cleared != 4 {
		t.Errorf("cleared = %d, want 4", cleared)
	}

	state, err := readStateRepo.Get(ctx, groupID, 2)
	if err != nil {
		t.Fatalf("read state missing: %v", err)
	}
	if state.LastReadSeq != lastSeq {
		t.Errorf("LastReadSeq = %d, want %d", state.LastReadSeq, lastSeq)
	}

	// A stale lower upsert must never move the state backwards.
	readStateRepo.UpsertMonotonic(ctx, groupID, 2, lastSeq-2)
	state, _ = readStateRepo.Get(ctx, groupID, 2)
	if state.LastReadSeq != lastSeq {
		t.Errorf("read state regressed to %d", state.LastReadSeq)
	}
}

func TestMarkReadGroupRequiresMembership(t *testing.T) {
	svc, _, groupRepo, _ := newTestMessageService()
	ctx := context.Background()
	groupRepo.Create(ctx, &models.Group{Name: "ops"})
	groupRepo.AddMember(ctx, 1, 1, models.RoleAdmin)

	_, err := svc.MarkRead(ctx, 9, 1, ScopeGroup)
	if errs.KindOf(err) != errs.KindPermission {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestMarkReadRejectsUnknownScope(t *testing.T) {
	svc, _, _, _ := newTestMessageService()

	_, err := svc.MarkRead(context.Background(), 1, 2, "channel")
	if errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGroupHistoryRequiresMembership(t *testing.T) {
	svc, _, groupRepo, _ := newTestMessageService()
	ctx := context.Background()
	groupRepo.Create(ctx, &models.Group{Name: "ops"})
	groupRepo.AddMember(ctx, 1, 1, models.RoleAdmin)

	_, err := svc.GroupHistory(ctx, 2, 1, 0, 50)
	if errs.KindOf(err) != errs.KindPermission {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestHistoryReturnsChronologicalOrder(t *testing.T) {
	svc, _, _, _ := newTestMessageService()
	ctx := context.Background()
	alice, bob := uint(1), uint(2)

	for _, content := range []string{"one", "two", "three"} {
		if _, err := svc.Append(ctx, alice, AppendInput{RecipientID: &bob, Content: content}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	messages, err := svc.History(ctx, bob, alice, 0, 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("len = %d, want 3", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Seq <= messages[i-1].Seq {
			t.Errorf("history out of order at %d: %d <= %d", i, messages[i].Seq, messages[i-1].Seq)
		}
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc, _, _, _ := newTestMessageService()

	_, err := svc.Search(context.Background(), 1, "  ", 10)
	if errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
