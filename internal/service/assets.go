package service

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/storage"
)

// AssetCoordinator pairs catalog writes with object-store mutations.
// The store is the non-transactional peer: uploads happen before the
// DB insert (with a compensating delete if the insert fails), removals
// happen after the DB commit and are best-effort. The bias is "no
// catalog row references missing content"; rare orphan objects in the
// store are accepted.
type AssetCoordinator struct {
	Store storage.Store
}

// UploadedFile is an in-memory multipart part handed down from a
// handler.
type UploadedFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

func NewAssetCoordinator(store storage.Store) *AssetCoordinator {
	return &AssetCoordinator{Store: store}
}

// Upload stores the bytes and returns the generated key.
func (a *AssetCoordinator) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	return a.Store.Put(ctx, data, filename, contentType)
}

// Compensate deletes an uploaded key after a failed row insert.
// Failures are logged, never propagated.
func (a *AssetCoordinator) Compensate(ctx context.Context, key string) {
	if err := a.Store.Remove(ctx, key); err != nil {
		logging.FromContext(ctx).Warn("compensating delete failed", "key", key, "error", err)
	}
}

// RemoveRef deletes the object behind a catalog reference, best
// effort. Legacy full-URL references have their key extracted first.
func (a *AssetCoordinator) RemoveRef(ctx context.Context, ref string) {
	key := RefKey(ref)
	if key == "" {
		logging.FromContext(ctx).Warn("no object key in reference", "ref", ref)
		return
	}
	if err := a.Store.Remove(ctx, key); err != nil {
		logging.FromContext(ctx).Warn("object delete failed", "key", key, "error", err)
	}
}

// Resolve turns a stored reference into a client-facing URL: absolute
// URLs pass through, opaque keys get a presigned URL with a 24h TTL.
// When presigning fails the bare key comes back so reads still work in
// degraded deployments.
func (a *AssetCoordinator) Resolve(ctx context.Context, ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	if strings.HasPrefix(*ref, "http") {
		return ref
	}
	u, err := a.Store.Presign(ctx, *ref, storage.PresignTTL)
	if err != nil {
		logging.FromContext(ctx).Warn("presign failed", "key", *ref, "error", err)
		return ref
	}
	return &u
}

// RefKey extracts the object key from a reference: query parameters
// are stripped and the final path segment taken. Bare keys come back
// unchanged.
func RefKey(ref string) string {
	if ref == "" {
		return ""
	}
	if !strings.HasPrefix(ref, "http") {
		return ref
	}
	trimmed := ref
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return path.Base(trimmed)
	}
	return path.Base(u.Path)
}
