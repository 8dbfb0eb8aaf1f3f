package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/thisnaeem/artigma/internal/auth"
	"github.com/thisnaeem/artigma/internal/events"
	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/repository"
)

var (
	ErrValidation         = errors.New("email and password are required")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account has been rejected")
	ErrAccountSuspended   = errors.New("account has been suspended")
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string, name *string) (*model.PublicUser, error)
	SignIn(ctx context.Context, email, password string) (string, *model.PublicUser, error)
	SignOut(ctx context.Context, token string) error
	// CurrentUser resolves a bearer token to its owning user. Every
	// authentication failure collapses to (nil, nil); a non-nil error
	// means the store itself failed.
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      *auth.Hasher
	codec       *auth.TokenCodec
	publisher   events.EventPublisher
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher *auth.Hasher,
	codec *auth.TokenCodec,
	publisher events.EventPublisher,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		codec:       codec,
		publisher:   publisher,
	}
}

// normalizeEmail lowercases so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignUp(ctx context.Context, email, password string, name *string) (*model.PublicUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: s.hasher.Hash(password),
		Name:         name,
		Role:         model.RoleUser,
		Status:       model.StatusPending,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// The unique index is the backstop for concurrent signups.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = newID

	go s.publisher.PublishUserRegistered(user)

	return user.Public(), nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *model.PublicUser, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same error as a wrong password so account existence
			// is not leaked.
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.StatusApproved:
	case model.StatusPending:
		return "", nil, ErrPendingApproval
	case model.StatusRejected:
		return "", nil, ErrAccountRejected
	case model.StatusSuspended:
		return "", nil, ErrAccountSuspended
	default:
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}

	session := &model.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(auth.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, err
	}

	return token, user.Public(), nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByToken(ctx, token)
}

func (s *authService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := s.codec.Verify(token)
	if err != nil {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		// Lazy expiry: the first resolve after the deadline purges the row.
		if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
			slog.WarnContext(ctx, "Failed to purge expired session", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	if session.UserID != userID {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}
