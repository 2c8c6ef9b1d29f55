package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xplainit/xplainit-be/internal/auth"
	"github.com/xplainit/xplainit-be/internal/services"
	"github.com/xplainit/xplainit-be/internal/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newAuthService(t *testing.T, ttl time.Duration) (*services.AuthService, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	tokens := auth.NewTokenService([]byte("test-secret"), ttl)
	return services.NewAuthService(store, tokens), store
}

func TestSignup(t *testing.T) {
	svc, store := newAuthService(t, time.Hour)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "a@x.com", "pw123", "Alice A.")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, 0, user.TotalExplanations)
	require.Empty(t, user.PasswordHash, "signup response must not carry the hash")

	stored, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, "pw123", stored.PasswordHash, "password must be hashed at rest")
	require.True(t, stored.IsActive)
}

func TestSignupConflictsUsernameCheckedFirst(t *testing.T) {
	svc, _ := newAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "a@x.com", "pw123", "")
	require.NoError(t, err)

	// Same username, fresh email.
	_, err = svc.Signup(ctx, "alice", "fresh@x.com", "pw123", "")
	require.ErrorIs(t, err, storage.ErrDuplicateUsername)

	// Fresh username, same email.
	_, err = svc.Signup(ctx, "bob", "a@x.com", "pw123", "")
	require.ErrorIs(t, err, storage.ErrDuplicateEmail)

	// Both taken: the username conflict is reported.
	_, err = svc.Signup(ctx, "alice", "a@x.com", "pw123", "")
	require.ErrorIs(t, err, storage.ErrDuplicateUsername)
}

func TestLoginAndResolve(t *testing.T) {
	svc, _ := newAuthService(t, time.Hour)
	ctx := context.Background()

	created, err := svc.Signup(ctx, "alice", "a@x.com", "pw123", "")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, created.ID, resolved.ID)
	require.Equal(t, "alice", resolved.Username)
	require.Empty(t, resolved.PasswordHash)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "a@x.com", "pw123", "")
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "alice", "wrong")
	_, unknown := svc.Login(ctx, "nobody", "pw123")

	require.ErrorIs(t, wrongPw, services.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, services.ErrInvalidCredentials)
	require.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestResolveExpiredToken(t *testing.T) {
	svc, _ := newAuthService(t, time.Nanosecond)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "a@x.com", "pw123", "")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestResolveDeletedUser(t *testing.T) {
	svc, _ := newAuthService(t, time.Hour)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "a@x.com", "pw123", "")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestResolveGarbageToken(t *testing.T) {
	svc, _ := newAuthService(t, time.Hour)

	_, err := svc.Resolve(context.Background(), "not.a.token")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}
