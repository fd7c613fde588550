package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadwiabd/insight-edms/internal/assert/helpers"
	"github.com/nadwiabd/insight-edms/internal/bootstrap"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

type announcement struct {
	username string
	password string
}

func newBootstrap(
	t *testing.T,
) (*helpers.TestStoreEnv, *bootstrap.Bootstrap, *[]announcement) {
	t.Helper()
	env := helpers.NewTestStore(t)
	var seen []announcement
	b := bootstrap.New(env.Store, env.Config,
		bootstrap.WithAnnouncer(func(username, password string) {
			seen = append(seen, announcement{username, password})
		}),
	)
	b.Register()
	return env, b, &seen
}

func TestCreateAutoAdmin(t *testing.T) {
	env, _, seen := newBootstrap(t)
	defer env.Cleanup()
	ctx := context.Background()

	_, err := env.Store.Migrate(ctx)
	require.NoError(t, err)

	u, err := env.Store.GetUserByUsername(ctx, env.Config.AutoAdminUsername)
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsActive)
	assert.Equal(t, bootstrap.AutoAdminEmail, u.Email)
	assert.True(t, store.CheckPassword(u, env.Config.AutoAdminPassword))

	aa, err := env.Store.GetAutoAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, aa.Account)
	assert.Equal(t, env.Config.AutoAdminPassword, aa.Password)
	assert.Equal(t, u.PasswordHash, aa.PasswordHash)

	assert.Equal(t, []announcement{{
		env.Config.AutoAdminUsername, env.Config.AutoAdminPassword,
	}}, *seen)

	t.Run("repeated migrations are idempotent", func(t *testing.T) {
		_, err := env.Store.Migrate(ctx)
		require.NoError(t, err)

		users, err := env.Store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Len(t, *seen, 1)
	})
}

func TestCreateAutoAdminOnlyForCommon(t *testing.T) {
	env, b, seen := newBootstrap(t)
	defer env.Cleanup()
	ctx := context.Background()

	require.NoError(t, b.CreateAutoAdmin(ctx, "workflows"))
	_, err := env.Store.GetUserByUsername(ctx, env.Config.AutoAdminUsername)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, *seen)
}

func TestCreateAutoAdminDisabled(t *testing.T) {
	env, b, _ := newBootstrap(t)
	defer env.Cleanup()
	ctx := context.Background()

	env.Config.AutoCreateAdmin = false
	require.NoError(t, b.CreateAutoAdmin(ctx, bootstrap.AppCommon))
	_, err := env.Store.GetUserByUsername(ctx, env.Config.AutoAdminUsername)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestCreateAutoAdminExistingUser(t *testing.T) {
	env, b, seen := newBootstrap(t)
	defer env.Cleanup()
	ctx := context.Background()

	existing := env.CreateUser(t, env.Config.AutoAdminUsername)
	require.NoError(t, b.CreateAutoAdmin(ctx, bootstrap.AppCommon))

	u, err := env.Store.GetUserByUsername(ctx, env.Config.AutoAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
	assert.False(t, u.IsSuperuser)

	_, err = env.Store.GetAutoAdmin(ctx)
	assert.ErrorIs(t, err, store.ErrAutoAdminNotFound)
	assert.Empty(t, *seen)
}

func TestPasswordChangeDropsAutoAdmin(t *testing.T) {
	env, b, _ := newBootstrap(t)
	defer env.Cleanup()
	ctx := context.Background()

	require.NoError(t, b.CreateAutoAdmin(ctx, bootstrap.AppCommon))
	u, err := env.Store.GetUserByUsername(ctx, env.Config.AutoAdminUsername)
	require.NoError(t, err)

	t.Run("saves without a new password keep the record", func(t *testing.T) {
		u.Email = "admin@example.com"
		require.NoError(t, env.Store.SaveUser(ctx, u))
		_, err := env.Store.GetAutoAdmin(ctx)
		assert.NoError(t, err)
	})

	t.Run("other users do not affect the record", func(t *testing.T) {
		other := env.CreateUser(t, "alice")
		require.NoError(t, env.Store.SetPassword(ctx, other, "new-password"))
		_, err := env.Store.GetAutoAdmin(ctx)
		assert.NoError(t, err)
	})

	t.Run("password change removes the record", func(t *testing.T) {
		require.NoError(t, env.Store.SetPassword(ctx, u, "new-password"))
		_, err := env.Store.GetAutoAdmin(ctx)
		assert.ErrorIs(t, err, store.ErrAutoAdminNotFound)
	})

	t.Run("missing record is ignored", func(t *testing.T) {
		b.SyncAutoAdminPassword(ctx, u)
		_, err := env.Store.GetAutoAdmin(ctx)
		assert.ErrorIs(t, err, store.ErrAutoAdminNotFound)
	})
}

func TestSyncAutoAdminSwallowsErrors(t *testing.T) {
	env, b, _ := newBootstrap(t)
	defer env.Cleanup()
	ctx := context.Background()

	require.NoError(t, b.CreateAutoAdmin(ctx, bootstrap.AppCommon))
	aa, err := env.Store.GetAutoAdmin(ctx)
	require.NoError(t, err)

	env.Redis.Close()
	assert.NotPanics(t, func() {
		b.SyncAutoAdminPassword(ctx, &api.User{
			ID: aa.Account, PasswordHash: "changed",
		})
	})
}

func TestTemporaryDirectory(t *testing.T) {
	t.Run("writable directory is kept", func(t *testing.T) {
		dir := t.TempDir()
		got, err := bootstrap.TemporaryDirectory(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("missing directory is replaced", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing")
		got, err := bootstrap.TemporaryDirectory(missing)
		require.NoError(t, err)
		defer func() { _ = os.RemoveAll(got) }()
		assert.NotEqual(t, missing, got)
		assert.DirExists(t, got)
	})

	t.Run("file is replaced", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))
		got, err := bootstrap.TemporaryDirectory(file)
		require.NoError(t, err)
		defer func() { _ = os.RemoveAll(got) }()
		assert.NotEqual(t, file, got)
	})

	t.Run("empty setting creates one", func(t *testing.T) {
		got, err := bootstrap.TemporaryDirectory("")
		require.NoError(t, err)
		defer func() { _ = os.RemoveAll(got) }()
		assert.DirExists(t, got)
	})
}
