package service_test

import (
	"context"
	"testing"

	"github.com/thisnaeem/artigma/internal/events"
	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/repository"
	"github.com/thisnaeem/artigma/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, users *repository.MemoryUserRepository, email string, role model.Role, status model.Status) uuid.UUID {
	t.Helper()
	id, err := users.Create(context.Background(), &model.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Status:       status,
	})
	require.NoError(t, err)
	return id
}

func TestUpdateStatus_ApprovesPendingUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)
	aliceID := seedUser(t, users, "alice@example.com", model.RoleUser, model.StatusPending)

	updated, err := svc.UpdateStatus(context.Background(), adminID, aliceID, model.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, updated.Status)
}

func TestUpdateStatus_InvalidTransitions(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})
	ctx := context.Background()

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)
	rejectedID := seedUser(t, users, "rejected@example.com", model.RoleUser, model.StatusRejected)
	pendingID := seedUser(t, users, "pending@example.com", model.RoleUser, model.StatusPending)

	// REJECTED is terminal
	_, err := svc.UpdateStatus(ctx, adminID, rejectedID, model.StatusApproved)
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	// PENDING cannot jump straight to SUSPENDED
	_, err = svc.UpdateStatus(ctx, adminID, pendingID, model.StatusSuspended)
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestUpdateStatus_SuspendAndReinstate(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})
	ctx := context.Background()

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)
	aliceID := seedUser(t, users, "alice@example.com", model.RoleUser, model.StatusApproved)

	updated, err := svc.UpdateStatus(ctx, adminID, aliceID, model.StatusSuspended)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuspended, updated.Status)

	updated, err = svc.UpdateStatus(ctx, adminID, aliceID, model.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, updated.Status)
}

func TestUpdateRole_SelfChangeBlocked(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)

	_, err := svc.UpdateRole(context.Background(), adminID, adminID, model.RoleUser)
	require.ErrorIs(t, err, service.ErrSelfAction)

	// the admin keeps their role
	admin, err := users.FindByID(context.Background(), adminID)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, admin.Role)
}

func TestUpdateRole_PromotesOtherUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)
	aliceID := seedUser(t, users, "alice@example.com", model.RoleUser, model.StatusApproved)

	updated, err := svc.UpdateRole(context.Background(), adminID, aliceID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, updated.Role)
}

func TestDelete_SelfDeleteBlocked(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)

	err := svc.Delete(context.Background(), adminID, adminID)
	require.ErrorIs(t, err, service.ErrSelfAction)

	// the admin row persists
	_, err = users.FindByID(context.Background(), adminID)
	require.NoError(t, err)
}

func TestDelete_OtherUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)
	aliceID := seedUser(t, users, "alice@example.com", model.RoleUser, model.StatusApproved)

	require.NoError(t, svc.Delete(context.Background(), adminID, aliceID))

	_, err := users.FindByID(context.Background(), aliceID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete_UnknownUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	adminID := seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)

	err := svc.Delete(context.Background(), adminID, uuid.New())
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestList_FilterAndPagination(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := service.NewUserService(users, events.NoopPublisher{})

	seedUser(t, users, "admin@example.com", model.RoleAdmin, model.StatusApproved)
	seedUser(t, users, "a@example.com", model.RoleUser, model.StatusPending)
	seedUser(t, users, "b@example.com", model.RoleUser, model.StatusPending)
	seedUser(t, users, "c@example.com", model.RoleUser, model.StatusPending)

	status := model.StatusPending
	result, err := svc.List(context.Background(), repository.UserListFilter{
		Status: &status,
		Page:   1,
		Limit:  2,
	})
	require.NoError(t, err)
	require.Len(t, result.Users, 2)
	require.Equal(t, 3, result.Meta.Total)
	require.Equal(t, 2, result.Meta.Pages)
	require.Equal(t, 1, result.Meta.Page)
	require.Equal(t, 2, result.Meta.Limit)
}
