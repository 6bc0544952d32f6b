package service

import (
	"context"
	"time"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/models"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
	"github.com/saksham310/CommunityNest-sub000/internal/validation"
)

type GroupService struct {
	groupRepo     repository.GroupRepositoryInterface
	readStateRepo repository.GroupReadStateRepositoryInterface
	timeout       time.Duration
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	readStateRepo repository.GroupReadStateRepositoryInterface,
	timeout time.Duration,
) *GroupService {
	return &GroupService{
		groupRepo:     groupRepo,
		readStateRepo: readStateRepo,
		timeout:       timeout,
	}
}

type CreateGroupInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Icon        string `json:"icon"`
	MemberIDs   []uint `json:"member_ids"`
}

// CreateGroup creates a group with the creator as its admin, so the admin
// set is non-empty from the first moment the group exists.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID uint, input CreateGroupInput) (*models.Group, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        validation.TrimAndLimit(input.Name, 100),
		Description: validation.TrimAndLimit(input.Description, 255),
		Icon:        input.Icon,
		CreatorID:   creatorID,
	}

	sctx, cancel := storeCtx(ctx, s.timeout)
	err := s.groupRepo.Create(sctx, group)
	cancel()
	if err != nil {
		return nil, errs.FromStore("failed to create group", err)
	}

	sctx, cancel = storeCtx(ctx, s.timeout)
	err = s.groupRepo.AddMember(sctx, group.ID, creatorID, models.RoleAdmin)
	cancel()
	if err != nil {
		return nil, errs.FromStore("failed to add group creator", err)
	}
	s.ensureReadState(ctx, group.ID, creatorID)

	for _, memberID := range input.MemberIDs {
		if memberID == creatorID {
			continue
		}
		sctx, cancel = storeCtx(ctx, s.timeout)
		err = s.groupRepo.AddMember(sctx, group.ID, memberID, models.RoleMember)
		cancel()
		if err != nil {
			return nil, errs.FromStore("failed to add group member", err)
		}
		s.ensureReadState(ctx, group.ID, memberID)
	}

	sctx, cancel = storeCtx(ctx, s.timeout)
	defer cancel()
	return s.groupRepo.FindByID(sctx, group.ID)
}

func (s *GroupService) ensureReadState(ctx context.Context, groupID, userID uint) {
	if s.readStateRepo == nil {
		return
	}
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	_ = s.readStateRepo.EnsureForMember(sctx, groupID, userID)
}

// AddMember adds userID to the group; only an admin may do so.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID uint) error {
	if err := s.RequireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}

	sctx, cancel := storeCtx(ctx, s.timeout)
	isMember, err := s.groupRepo.IsMember(sctx, groupID, userID)
	cancel()
	if err != nil {
		return errs.FromStore("failed to check group membership", err)
	}
	if isMember {
		return errs.Validation("user is already a member of this group")
	}

	sctx, cancel = storeCtx(ctx, s.timeout)
	err = s.groupRepo.AddMember(sctx, groupID, userID, models.RoleMember)
	cancel()
	if err != nil {
		return errs.FromStore("failed to add group member", err)
	}
	s.ensureReadState(ctx, groupID, userID)
	return nil
}

// RemoveMember removes userID from the group. An admin may remove anyone;
// any member may remove themselves. The group must keep at least one admin
// while other members remain.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, userID uint) error {
	if actorID != userID {
		if err := s.RequireAdmin(ctx, groupID, actorID); err != nil {
			return err
		}
	}

	sctx, cancel := storeCtx(ctx, s.timeout)
	role, err := s.groupRepo.GetMemberRole(sctx, groupID, userID)
	cancel()
	if err != nil {
		return errs.NotFound("user is not a member of this group")
	}

	if role == models.RoleAdmin {
		sctx, cancel = storeCtx(ctx, s.timeout)
		admins, err := s.groupRepo.CountAdmins(sctx, groupID)
		cancel()
		if err != nil {
			return errs.FromStore("failed to count group admins", err)
		}
		sctx, cancel = storeCtx(ctx, s.timeout)
		members, err := s.groupRepo.GetMemberIDs(sctx, groupID)
		cancel()
		if err != nil {
			return errs.FromStore("failed to list group members", err)
		}
		if admins <= 1 && len(members) > 1 {
			return errs.Validation("group must retain at least one admin")
		}
	}

	sctx, cancel = storeCtx(ctx, s.timeout)
	err = s.groupRepo.RemoveMember(sctx, groupID, userID)
	cancel()
	if err != nil {
		return errs.FromStore("failed to remove group member", err)
	}

	if s.readStateRepo != nil {
		sctx, cancel = storeCtx(ctx, s.timeout)
		_ = s.readStateRepo.DeleteForMember(sctx, groupID, userID)
		cancel()
	}
	return nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	group, err := s.groupRepo.FindByID(sctx, groupID)
	if err != nil {
		return nil, errs.FromStore("group not found", err)
	}
	return group, nil
}

func (s *GroupService) GetUserGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	groups, err := s.groupRepo.GetUserGroups(sctx, userID)
	if err != nil {
		return nil, errs.FromStore("failed to list groups", err)
	}
	return groups, nil
}

func (s *GroupService) GetMembers(ctx context.Context, groupID uint) ([]models.User, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	members, err := s.groupRepo.GetMembers(sctx, groupID)
	if err != nil {
		return nil, errs.FromStore("failed to list group members", err)
	}
	return members, nil
}

func (s *GroupService) GetMemberIDs(ctx context.Context, groupID uint) ([]uint, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	ids, err := s.groupRepo.GetMemberIDs(sctx, groupID)
	if err != nil {
		return nil, errs.FromStore("failed to list group members", err)
	}
	return ids, nil
}

func (s *GroupService) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	isMember, err := s.groupRepo.IsMember(sctx, groupID, userID)
	if err != nil {
		return false, errs.FromStore("failed to check group membership", err)
	}
	return isMember, nil
}

// RequireMember fails with a PermissionError unless userID belongs to the
// group; nothing further may proceed on that failure.
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID uint) error {
	isMember, err := s.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return errs.Permission("not a member of this group")
	}
	return nil
}

func (s *GroupService) RequireAdmin(ctx context.Context, groupID, userID uint) error {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	role, err := s.groupRepo.GetMemberRole(sctx, groupID, userID)
	if err != nil {
		return errs.Permission("not a member of this group")
	}
	if role != models.RoleAdmin {
		return errs.Permission("admin role required")
	}
	return nil
}
