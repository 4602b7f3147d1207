// Package objectstore signs asset URLs against a MinIO or S3 bucket.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"library3d/internal/asset"
)

const DefaultPresignTTL = time.Hour

type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PresignTTL time.Duration
}

// Store implements asset.Store. Objects live at Ref.Key() inside one bucket.
type Store struct {
	client *mclient.Client
	bucket string
	ttl    time.Duration
}

var _ asset.Store = (*Store)(nil)

// New connects to the endpoint and fails if the bucket does not exist. The
// endpoint may carry an http or https scheme, which selects TLS.
func New(ctx context.Context, cfg Config) (*Store, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("objectstore: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("objectstore: bucket %q does not exist", cfg.Bucket)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &Store{client: client, bucket: cfg.Bucket, ttl: ttl}, nil
}

func (s *Store) TTL() time.Duration { return s.ttl }

// SignedURL returns a presigned GET URL, or asset.ErrNoAsset when the object
// has not been uploaded.
func (s *Store) SignedURL(ctx context.Context, ref asset.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	key := ref.Key()

	if _, err := s.client.StatObject(ctx, s.bucket, key, mclient.StatObjectOptions{}); err != nil {
		resp := mclient.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return "", asset.ErrNoAsset
		}
		return "", fmt.Errorf("stat %s: %w", key, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return u.String(), nil
}

// UploadURL returns a presigned PUT URL for the object at ref.
func (s *Store) UploadURL(ctx context.Context, ref asset.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	key := ref.Key()

	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, s.ttl)
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return u.String(), nil
}
