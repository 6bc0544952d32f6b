package service

import (
	"context"
	"time"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/models"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
)

// UserService serves the user projection and keeps its presence columns in
// step with the connection registry.
type UserService struct {
	userRepo repository.UserRepositoryInterface
	timeout  time.Duration
}

func NewUserService(userRepo repository.UserRepositoryInterface, timeout time.Duration) *UserService {
	return &UserService{userRepo: userRepo, timeout: timeout}
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	user, err := s.userRepo.FindByID(sctx, userID)
	if err != nil {
		return nil, errs.FromStore("user not found", err)
	}
	return user, nil
}

func (s *UserService) SetUserOnline(ctx context.Context, userID uint) error {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	return s.userRepo.UpdateOnlineStatus(sctx, userID, true)
}

func (s *UserService) SetUserOffline(ctx context.Context, userID uint) error {
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	return s.userRepo.UpdateOnlineStatus(sctx, userID, false)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	sctx, cancel := storeCtx(ctx, s.timeout)
	defer cancel()
	users, err := s.userRepo.SearchUsers(sctx, query, limit)
	if err != nil {
		return nil, errs.FromStore("user search failed", err)
	}
	return users, nil
}
