package asset

import (
	"context"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mock_store.go -package=asset

// Store signs URLs against object storage.
type Store interface {
	// SignedURL returns a presigned GET URL, or ErrNoAsset when the object is missing.
	SignedURL(ctx context.Context, ref Ref) (string, error)
	// UploadURL returns a presigned PUT URL for ref.
	UploadURL(ctx context.Context, ref Ref) (string, error)
	// TTL is the lifetime of the URLs the store signs.
	TTL() time.Duration
}

// ModelResolver resolves model URLs by signing them against a Store.
type ModelResolver struct {
	Store Store
}

func (r ModelResolver) ResolveModelURL(ctx context.Context, bookID string) (string, error) {
	return r.Store.SignedURL(ctx, Ref{Kind: KindModel, BookID: bookID})
}
