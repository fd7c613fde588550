package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadwiabd/insight-edms/internal/assert/helpers"
	"github.com/nadwiabd/insight-edms/internal/store"
)

func TestMigrate(t *testing.T) {
	env := helpers.NewTestStore(t)
	defer env.Cleanup()
	ctx := context.Background()

	var apps []string
	env.Store.OnPostMigrate(func(_ context.Context, app string) error {
		apps = append(apps, app)
		return nil
	})

	applied, err := env.Store.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"common", "permissions", "acls", "workflows"}, applied)
	assert.Equal(t, applied, apps)

	v, err := env.Store.SchemaVersion(ctx, "common")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = env.Store.SchemaVersion(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	t.Run("second run applies nothing but still runs hooks", func(t *testing.T) {
		apps = nil
		applied, err := env.Store.Migrate(ctx)
		require.NoError(t, err)
		assert.Empty(t, applied)
		assert.Len(t, apps, len(store.Migrations))
	})
}

func TestMigrateHookError(t *testing.T) {
	env := helpers.NewTestStore(t)
	defer env.Cleanup()

	boom := errors.New("boom")
	env.Store.OnPostMigrate(func(_ context.Context, app string) error {
		if app == "acls" {
			return boom
		}
		return nil
	})

	_, err := env.Store.Migrate(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "post-migrate acls")
}
