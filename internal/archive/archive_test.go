package archive_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/nadwiabd/insight-edms/internal/archive"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

func TestArchive(t *testing.T) {
	ctx := context.Background()

	a, err := archive.Open(ctx, "mem://", "deleted/")
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	t.Run("Get returns not found for missing record", func(t *testing.T) {
		_, err := a.Get(ctx, api.KindWorkflow, 1)
		assert.ErrorIs(t, err, archive.ErrRecordNotFound)
	})

	t.Run("Put and Get round-trip", func(t *testing.T) {
		wf := &api.Workflow{ID: 1, Label: "Review"}
		rec, err := archive.NewRecord(
			api.KindWorkflow, int64(wf.ID), wf.Label, "admin", wf,
		)
		require.NoError(t, err)
		require.NoError(t, a.Put(ctx, rec))

		got, err := a.Get(ctx, api.KindWorkflow, 1)
		require.NoError(t, err)
		assert.Equal(t, "Review", got.Label)
		assert.Equal(t, "admin", got.DeletedBy)

		var restored api.Workflow
		require.NoError(t, json.Unmarshal(got.Object, &restored))
		assert.Equal(t, wf.Label, restored.Label)
	})

	t.Run("Kinds do not collide", func(t *testing.T) {
		_, err := a.Get(ctx, api.KindState, 1)
		assert.ErrorIs(t, err, archive.ErrRecordNotFound)
	})
}

func TestArchiveKeyFormat(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	a := archive.New(bucket, "tombstones/")
	defer func() { _ = a.Close() }()

	rec, err := archive.NewRecord(api.KindState, 42, "Draft", "", nil)
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, rec))

	exists, err := bucket.Exists(ctx, "tombstones/state/42.json")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestArchiveList(t *testing.T) {
	ctx := context.Background()
	a := archive.New(memblob.OpenBucket(nil), "")
	defer func() { _ = a.Close() }()

	base := time.Now()
	for i, label := range []string{"First", "Second", "Third"} {
		rec, err := archive.NewRecord(api.KindState, int64(i+1), label, "", nil)
		require.NoError(t, err)
		rec.DeletedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, a.Put(ctx, rec))
	}
	other, err := archive.NewRecord(api.KindWorkflow, 9, "Other", "", nil)
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, other))

	recs, err := a.List(ctx, api.KindState)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Third", recs[0].Label)
	assert.Equal(t, "First", recs[2].Label)
}

func TestLocalBucketURL(t *testing.T) {
	ctx := context.Background()
	url, err := archive.LocalBucketURL(t.TempDir())
	require.NoError(t, err)

	a, err := archive.Open(ctx, url, "")
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	rec, err := archive.NewRecord(api.KindWorkflow, 3, "Filed", "", nil)
	require.NoError(t, err)
	assert.NoError(t, a.Put(ctx, rec))

	got, err := a.Get(ctx, api.KindWorkflow, 3)
	require.NoError(t, err)
	assert.Equal(t, "Filed", got.Label)
}
