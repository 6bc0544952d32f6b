package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/saksham310/CommunityNest-sub000/internal/models"
)

type GroupReadStateRepository struct {
	db *gorm.DB
}

func NewGroupReadStateRepository(db *gorm.DB) *GroupReadStateRepository {
	return &GroupReadStateRepository{db: db}
}

func (r *GroupReadStateRepository) EnsureForMember(ctx context.Context, groupID, userID uint) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO group_read_states (group_id, user_id, last_read_seq, created_at, updated_at)
		VALUES (?, ?, 0, NOW(), NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID).Error
}

func (r *GroupReadStateRepository) DeleteForMember(ctx context.Context, groupID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupReadState{}).Error
}

// UpsertMonotonic advances last_read_seq; it never moves backwards, so a
// late arriving read-mark cannot unread newer messages.
func (r *GroupReadStateRepository) UpsertMonotonic(ctx context.Context, groupID, userID uint, lastReadSeq uint64) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO group_read_states (group_id, user_id, last_read_seq, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET last_read_seq = GREATEST(group_read_states.last_read_seq, EXCLUDED.last_read_seq),
			updated_at = NOW()
	`, groupID, userID, lastReadSeq).Error
}

func (r *GroupReadStateRepository) Get(ctx context.Context, groupID, userID uint) (*models.GroupReadState, error) {
	var state models.GroupReadState
	err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}
