package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/thisnaeem/artigma/internal/events"
	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/repository"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSelfAction        = errors.New("cannot perform this action on your own account")
	ErrInvalidTransition = errors.New("status change is not allowed")
)

// UserService is the admin-only user directory: listing, approval
// decisions, role changes and deletion.
type UserService interface {
	List(ctx context.Context, filter repository.UserListFilter) (*repository.PaginatedUsers, error)
	UpdateStatus(ctx context.Context, actorID, targetID uuid.UUID, status model.Status) (*model.User, error)
	UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, role model.Role) (*model.User, error)
	Delete(ctx context.Context, actorID, targetID uuid.UUID) error
}

type userService struct {
	userRepo  repository.UserRepository
	publisher events.EventPublisher
}

func NewUserService(userRepo repository.UserRepository, publisher events.EventPublisher) UserService {
	return &userService{userRepo: userRepo, publisher: publisher}
}

func (s *userService) List(ctx context.Context, filter repository.UserListFilter) (*repository.PaginatedUsers, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *userService) UpdateStatus(ctx context.Context, actorID, targetID uuid.UUID, status model.Status) (*model.User, error) {
	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !target.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.userRepo.UpdateStatus(ctx, targetID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	go s.publisher.PublishUserStatusChanged(updated)

	return updated, nil
}

func (s *userService) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, role model.Role) (*model.User, error) {
	// Admins cannot promote or demote themselves.
	if actorID == targetID {
		return nil, ErrSelfAction
	}

	updated, err := s.userRepo.UpdateRole(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return updated, nil
}

func (s *userService) Delete(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return ErrSelfAction
	}

	err := s.userRepo.Delete(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
