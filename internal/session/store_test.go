package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/db/bunx"
	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/migrations"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
)

type storeFixture struct {
	db       *bun.DB
	users    repository.UserRepository
	sessions repository.SessionRepository
}

func setupStore(t *testing.T) (*Store, storeFixture) {
	t.Helper()
	ctx := context.Background()

	db, err := bunx.NewDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })
	_, err = migrations.Migrate(ctx, db)
	require.NoError(t, err)

	f := storeFixture{
		db:       db,
		users:    repository.NewBunUserRepository(db),
		sessions: repository.NewBunSessionRepository(db),
	}
	return f.newStore(), f
}

func (f storeFixture) newStore() *Store {
	return NewStore(f.sessions, f.users, 100, time.Hour, zerolog.Nop())
}

func (f storeFixture) createUser(t *testing.T, subject string, roles ...string) *models.User {
	t.Helper()
	user := &models.User{Subject: subject, Email: subject + "@muzfi.test", Roles: models.RoleList(roles)}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestStore_CreateAndResolve(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	user := f.createUser(t, "okta-123", "Muzfi_Member")

	token, sess, err := store.Create(ctx, user, map[string]any{"sub": "okta-123"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, []auth.Role{auth.RoleMember}, sess.Principal().Authorities())

	resolved, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Same(t, sess, resolved)

	_, err = store.Resolve(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = store.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestStore_RebuildsFromPersistedRoles(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	user := f.createUser(t, "okta-123", "Muzfi_Member")

	token, _, err := store.Create(ctx, user, map[string]any{"sub": "okta-123", "email": "ada@muzfi.test"}, 0)
	require.NoError(t, err)

	// roles changed while the session was not in memory
	require.NoError(t, f.users.UpdateRoles(ctx, user.ID, models.RoleList{"Muzfi_Member", "Muzfi_Elite"}))

	fresh := f.newStore()
	sess, err := fresh.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "okta-123", sess.Principal().SubjectID())
	assert.Equal(t, "ada@muzfi.test", sess.Principal().Attributes()["email"])
	assert.Equal(t, []auth.Role{auth.RoleMember, auth.RoleElite}, sess.Principal().Authorities())

	again, err := fresh.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Same(t, sess, again)
}

func TestStore_Revoke(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	user := f.createUser(t, "okta-123", "Muzfi_Member")

	token, sess, err := store.Create(ctx, user, nil, 0)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, sess))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = f.newStore().Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestStore_Expiry(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	user := f.createUser(t, "okta-123")

	token, _, err := store.Create(ctx, user, nil, time.Minute)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	fresh := f.newStore()
	fresh.now = store.now
	_, err = fresh.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestStore_ApplyRoleEdit(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	ada := f.createUser(t, "okta-123", "Muzfi_Member")
	bob := f.createUser(t, "okta-456", "Muzfi_Member")

	_, adaLaptop, err := store.Create(ctx, ada, nil, 0)
	require.NoError(t, err)
	_, adaPhone, err := store.Create(ctx, ada, nil, 0)
	require.NoError(t, err)
	_, bobSess, err := store.Create(ctx, bob, nil, 0)
	require.NoError(t, err)

	assert.Len(t, store.ForSubject("okta-123"), 2)
	assert.Equal(t, 2, store.ApplyRoleEdit("okta-123", auth.RoleElite, auth.RoleEditAdd))

	for _, s := range []*Session{adaLaptop, adaPhone} {
		assert.Equal(t, []auth.Role{auth.RoleMember, auth.RoleElite}, s.Principal().Authorities())
	}
	assert.Equal(t, []auth.Role{auth.RoleMember}, bobSess.Principal().Authorities())

	assert.Equal(t, 2, store.ReplaceAuthorities("okta-123", []auth.Role{auth.RoleMember}))
	assert.Equal(t, []auth.Role{auth.RoleMember}, adaPhone.Principal().Authorities())

	assert.Zero(t, store.ApplyRoleEdit("okta-nobody", auth.RoleElite, auth.RoleEditAdd))
	assert.Equal(t, 3, store.Len())
}

func TestStore_PurgeExpired(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	user := f.createUser(t, "okta-123")

	store.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, _, err := store.Create(ctx, user, nil, time.Minute)
	require.NoError(t, err)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_RevalidatesChangesFromAnotherProcess(t *testing.T) {
	server, f := setupStore(t)
	cli := f.newStore()
	ctx := context.Background()
	user := f.createUser(t, "okta-123", "Muzfi_Member", "Muzfi_Admin")

	token, sess, err := server.Create(ctx, user, nil, 0)
	require.NoError(t, err)

	// another process removes a role
	require.NoError(t, f.users.UpdateRoles(ctx, user.ID, models.RoleList{"Muzfi_Member"}))

	resolved, err := server.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []auth.Role{auth.RoleMember, auth.RoleAdmin}, resolved.Principal().Authorities(),
		"cached session is trusted inside the revalidation window")

	base := time.Now()
	server.now = func() time.Time { return base.Add(time.Minute) }
	resolved, err = server.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Same(t, sess, resolved)
	assert.Equal(t, []auth.Role{auth.RoleMember}, resolved.Principal().Authorities())

	// another process revokes every session of the user
	n, err := cli.RevokeUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	server.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = server.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Zero(t, server.Len())
}

func TestStore_RevalidateEveryResolve(t *testing.T) {
	_, f := setupStore(t)
	ctx := context.Background()
	store := NewStore(f.sessions, f.users, 10, time.Hour, zerolog.Nop(), WithRevalidateInterval(0))
	user := f.createUser(t, "okta-123", "Muzfi_Member")

	token, _, err := store.Create(ctx, user, nil, 0)
	require.NoError(t, err)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	_, err = f.sessions.RevokeByUserID(ctx, user.ID)
	require.NoError(t, err)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestStore_RevokeUser(t *testing.T) {
	store, f := setupStore(t)
	ctx := context.Background()
	ada := f.createUser(t, "okta-123", "Muzfi_Member")
	bob := f.createUser(t, "okta-456", "Muzfi_Member")

	adaToken, _, err := store.Create(ctx, ada, nil, 0)
	require.NoError(t, err)
	_, _, err = store.Create(ctx, ada, nil, 0)
	require.NoError(t, err)
	bobToken, _, err := store.Create(ctx, bob, nil, 0)
	require.NoError(t, err)

	n, err := store.RevokeUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, store.Len())

	_, err = store.Resolve(ctx, adaToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = f.newStore().Resolve(ctx, adaToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = store.Resolve(ctx, bobToken)
	assert.NoError(t, err)
}
