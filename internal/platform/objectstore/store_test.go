package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"library3d/internal/asset"
)

// Run with: GO_TEST_INTEGRATION=1 go test ./internal/platform/objectstore -v -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "library-assets"
)

func startMinio(t *testing.T, createBucket bool) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	if createBucket {
		admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
			Creds: credentials.NewStaticV4(rootUser, rootPassword, ""),
		})
		require.NoError(t, err)
		require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))
	}

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func newStore(t *testing.T, endpoint string) *Store {
	t.Helper()
	s, err := New(context.Background(), Config{
		Endpoint:   endpoint,
		AccessKey:  rootUser,
		SecretKey:  rootPassword,
		Bucket:     bucket,
		PresignTTL: 2 * time.Minute,
	})
	require.NoError(t, err)
	return s
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	endpoint := startMinio(t, false)

	_, err := New(context.Background(), Config{
		Endpoint:  endpoint,
		AccessKey: rootUser,
		SecretKey: rootPassword,
		Bucket:    bucket,
	})
	require.Error(t, err)
}

func TestIntegration_SignedURL_Missing(t *testing.T) {
	s := newStore(t, startMinio(t, true))

	_, err := s.SignedURL(context.Background(), asset.Ref{Kind: asset.KindModel, BookID: "1"})
	assert.ErrorIs(t, err, asset.ErrNoAsset)
}

func TestIntegration_UploadThenSign(t *testing.T) {
	s := newStore(t, startMinio(t, true))
	ctx := context.Background()
	ref := asset.Ref{Kind: asset.KindPage, BookID: "7", Page: 3}
	body := []byte("page texture")

	uploadURL, err := s.UploadURL(ctx, ref)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, uploadURL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/jpeg")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)

	signed, err := s.SignedURL(ctx, ref)
	require.NoError(t, err)
	assert.Contains(t, signed, "pages/7/3.jpg")

	resp, err = http.Get(signed)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_InvalidRef(t *testing.T) {
	s := newStore(t, startMinio(t, true))

	_, err := s.UploadURL(context.Background(), asset.Ref{Kind: asset.KindPage, BookID: "1", Page: 0})
	assert.ErrorIs(t, err, asset.ErrInvalidRef)
	assert.Equal(t, 2*time.Minute, s.TTL())
}
