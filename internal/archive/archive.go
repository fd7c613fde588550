// Package archive keeps tombstones of deleted setup objects in a blob
// bucket (local files, memory, S3, GCS, or Azure Blob Storage)
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/nadwiabd/insight-edms/pkg/api"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

type (
	// Archive stores tombstones in a blob bucket
	Archive struct {
		bucket *blob.Bucket
		prefix string
	}

	// Record is the tombstone written for a deleted object
	Record struct {
		DeletedAt time.Time       `json:"deleted_at"`
		Kind      api.ObjectKind  `json:"kind"`
		Label     string          `json:"label"`
		DeletedBy string          `json:"deleted_by,omitempty"`
		Object    json.RawMessage `json:"object"`
		ID        int64           `json:"id"`
	}
)

const archiveDirectory = "archive"

var (
	ErrRecordNotFound = errors.New("archive record not found")
	ErrOpenBucket     = errors.New("failed to open archive bucket")
)

// Open opens the bucket at bucketURL
func Open(ctx context.Context, bucketURL, prefix string) (*Archive, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenBucket, err)
	}
	return New(bucket, prefix), nil
}

// New wraps an already opened bucket
func New(bucket *blob.Bucket, prefix string) *Archive {
	return &Archive{bucket: bucket, prefix: prefix}
}

// LocalBucketURL returns a file bucket URL rooted under dir, creating the
// directory when needed
func LocalBucketURL(dir string) (string, error) {
	path := filepath.Join(dir, archiveDirectory)
	if err := os.MkdirAll(path, 0o750); err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(path), nil
}

// NewRecord builds a tombstone for obj
func NewRecord(
	kind api.ObjectKind, id int64, label, deletedBy string, obj any,
) (*Record, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return &Record{
		DeletedAt: time.Now(),
		Kind:      kind,
		ID:        id,
		Label:     label,
		DeletedBy: deletedBy,
		Object:    data,
	}, nil
}

// Put writes a tombstone
func (a *Archive) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return a.bucket.WriteAll(ctx, a.keyFor(rec.Kind, rec.ID), data, &blob.WriterOptions{
		ContentType: "application/json",
	})
}

// Get reads the tombstone of one object
func (a *Archive) Get(
	ctx context.Context, kind api.ObjectKind, id int64,
) (*Record, error) {
	data, err := a.bucket.ReadAll(ctx, a.keyFor(kind, id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s %d", ErrRecordNotFound, kind, id)
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the tombstones of one kind, most recently deleted first
func (a *Archive) List(
	ctx context.Context, kind api.ObjectKind,
) ([]*Record, error) {
	iter := a.bucket.List(&blob.ListOptions{
		Prefix: a.prefix + string(kind) + "/",
	})

	var res []*Record
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		data, err := a.bucket.ReadAll(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		res = append(res, &rec)
	}

	slices.SortFunc(res, func(l, r *Record) int {
		return r.DeletedAt.Compare(l.DeletedAt)
	})
	return res, nil
}

// Close releases the bucket
func (a *Archive) Close() error {
	return a.bucket.Close()
}

func (a *Archive) keyFor(kind api.ObjectKind, id int64) string {
	return fmt.Sprintf("%s%s/%d.json", a.prefix, kind, id)
}
