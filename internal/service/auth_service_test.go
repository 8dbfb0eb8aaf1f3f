package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/thisnaeem/artigma/internal/auth"
	"github.com/thisnaeem/artigma/internal/events"
	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/repository"
	"github.com/thisnaeem/artigma/internal/service"

	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users    *repository.MemoryUserRepository
	sessions *repository.MemorySessionRepository
	svc      service.AuthService
}

func newAuthFixture() *authFixture {
	users := repository.NewMemoryUserRepository()
	sessions := repository.NewMemorySessionRepository()
	svc := service.NewAuthService(
		users,
		sessions,
		auth.NewHasher("test-secret"),
		auth.NewTokenCodec("test-secret"),
		events.NoopPublisher{},
	)
	return &authFixture{users: users, sessions: sessions, svc: svc}
}

func (f *authFixture) approve(t *testing.T, email string) {
	t.Helper()
	user, err := f.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	_, err = f.users.UpdateStatus(context.Background(), user.ID, model.StatusApproved)
	require.NoError(t, err)
}

func TestSignUp_CreatesPendingUser(t *testing.T) {
	f := newAuthFixture()
	name := "Alice"

	user, err := f.svc.SignUp(context.Background(), "alice@example.com", "pw123456", &name)
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, user.Role)
	require.Equal(t, model.StatusPending, user.Status)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestSignUp_MissingInput(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.SignUp(context.Background(), "", "pw123456", nil)
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.SignUp(context.Background(), "alice@example.com", "", nil)
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	first, err := f.svc.SignUp(context.Background(), "alice@example.com", "pw123456", nil)
	require.NoError(t, err)

	_, err = f.svc.SignUp(context.Background(), "alice@example.com", "other-pw", nil)
	require.ErrorIs(t, err, service.ErrEmailTaken)

	// uniqueness is case-insensitive
	_, err = f.svc.SignUp(context.Background(), "ALICE@Example.com", "other-pw", nil)
	require.ErrorIs(t, err, service.ErrEmailTaken)

	// the original record is untouched
	stored, err := f.users.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, stored.Status)
}

func TestSignIn_UnknownAndWrongPasswordLookAlike(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.SignUp(context.Background(), "alice@example.com", "pw123456", nil)
	require.NoError(t, err)
	f.approve(t, "alice@example.com")

	_, _, errUnknown := f.svc.SignIn(context.Background(), "nobody@example.com", "pw123456")
	_, _, errWrongPw := f.svc.SignIn(context.Background(), "alice@example.com", "wrong-pw")

	require.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, service.ErrInvalidCredentials)
	require.Equal(t, errUnknown, errWrongPw)
}

func TestSignIn_StatusGate(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "alice@example.com", "pw123456", nil)
	require.NoError(t, err)

	_, _, err = f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.ErrorIs(t, err, service.ErrPendingApproval)

	user, err := f.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = f.users.UpdateStatus(ctx, user.ID, model.StatusRejected)
	require.NoError(t, err)
	_, _, err = f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.ErrorIs(t, err, service.ErrAccountRejected)

	_, err = f.users.UpdateStatus(ctx, user.ID, model.StatusSuspended)
	require.NoError(t, err)
	_, _, err = f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.ErrorIs(t, err, service.ErrAccountSuspended)
}

func TestSignIn_ApprovedFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "alice@example.com", "pw123456", nil)
	require.NoError(t, err)
	f.approve(t, "alice@example.com")

	token, user, err := f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, model.StatusApproved, user.Status)

	resolved, err := f.svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, user.ID, resolved.ID)
	require.Equal(t, model.RoleUser, resolved.Role)
	require.Equal(t, model.StatusApproved, resolved.Status)
}

func TestSignIn_EmailCaseInsensitive(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "Alice@Example.com", "pw123456", nil)
	require.NoError(t, err)
	f.approve(t, "alice@example.com")

	token, _, err := f.svc.SignIn(ctx, "ALICE@example.COM", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestSignOut_RevokesSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "alice@example.com", "pw123456", nil)
	require.NoError(t, err)
	f.approve(t, "alice@example.com")

	token, _, err := f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(ctx, token))

	resolved, err := f.svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, resolved)

	// revoking again is a no-op
	require.NoError(t, f.svc.SignOut(ctx, token))
	require.NoError(t, f.svc.SignOut(ctx, "never-issued"))
}

func TestCurrentUser_ExpiredSessionIsPurged(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "alice@example.com", "pw123456", nil)
	require.NoError(t, err)
	f.approve(t, "alice@example.com")

	token, _, err := f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)

	// backdate the stored session past its expiry
	session, err := f.sessions.FindByToken(ctx, token)
	require.NoError(t, err)
	session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.sessions.Create(ctx, session))

	resolved, err := f.svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.Nil(t, resolved)

	// lazy GC removed the row
	_, err = f.sessions.FindByToken(ctx, token)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCurrentUser_GarbageTokens(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		resolved, err := f.svc.CurrentUser(ctx, token)
		require.NoError(t, err)
		require.Nil(t, resolved)
	}
}

func TestCurrentUser_SuspendedUserStillResolves(t *testing.T) {
	// Resolution only answers "who is this"; the authorization gate is
	// responsible for rejecting non-APPROVED accounts per request.
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "alice@example.com", "pw123456", nil)
	require.NoError(t, err)
	f.approve(t, "alice@example.com")

	token, user, err := f.svc.SignIn(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)

	_, err = f.users.UpdateStatus(ctx, user.ID, model.StatusSuspended)
	require.NoError(t, err)

	resolved, err := f.svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, model.StatusSuspended, resolved.Status)
}
