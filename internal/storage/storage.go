// Package storage is the contract over the image bucket. The MinIO
// implementation works with any S3-compatible provider; tests use the
// in-memory MemStore.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound means the key does not exist in the bucket.
	ErrNotFound = errors.New("storage: object not found")
	// ErrUnavailable means the remote store could not be reached.
	ErrUnavailable = errors.New("storage: store unavailable")
)

// Store is the object-store gateway. Put generates an opaque key
// (random name plus the extension inferred from filename) and returns it.
type Store interface {
	Put(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PresignTTL is the lifetime of read URLs handed out for catalog rows.
const PresignTTL = 24 * time.Hour
