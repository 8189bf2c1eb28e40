package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "exp-1", "/programs/hook/src/lib.rs", []byte("fn main() {}")))
	require.NoError(t, s.Put(ctx, "exp-1", "DEPLOY.md", []byte("# deploy")))
	require.NoError(t, s.Put(ctx, "exp-2", "DEPLOY.md", []byte("other")))

	got, err := s.Get(ctx, "exp-1", "programs/hook/src/lib.rs")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", string(got))

	paths, err := s.List(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"DEPLOY.md", "programs/hook/src/lib.rs"}, paths)

	url, err := s.GetURL(ctx, "exp-1", "DEPLOY.md")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestMemoryStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "exp-1", "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Put(ctx, "", "a.md", nil), ErrInvalidKey)
	assert.ErrorIs(t, s.Put(ctx, "exp", "  ", nil), ErrInvalidKey)
	assert.ErrorIs(t, s.Put(ctx, "exp", "../escape.md", nil), ErrInvalidKey)
	assert.ErrorIs(t, s.Put(ctx, "exp", "a/../../b.md", nil), ErrInvalidKey)
	assert.ErrorIs(t, s.Put(ctx, "exp/sub", "a.md", nil), ErrInvalidKey)

	_, err = s.Get(ctx, "exp", "a//b.md")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = s.List(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	paths, err := s.List(ctx, "never-exported")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestMemoryStoreCopiesContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "exp", "a.md", buf))
	buf[0] = 'z'

	got, err := s.Get(ctx, "exp", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/x-rust; charset=utf-8", contentType("programs/hook/src/lib.rs"))
	assert.Equal(t, "application/toml; charset=utf-8", contentType("Cargo.toml"))
	assert.Equal(t, "text/markdown; charset=utf-8", contentType("DEPLOY.md"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewS3Store(S3Config{Endpoint: "minio:9000", Bucket: "b"})
	assert.ErrorContains(t, err, "access key")

	_, err = NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"})
	assert.ErrorContains(t, err, "bucket")

	s, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
	assert.Equal(t, time.Hour, s.urlExpiry)
}

func TestS3StorePresignUsesConfiguredExpiry(t *testing.T) {
	s, err := NewS3Store(S3Config{
		Endpoint:  "minio:9000",
		AccessKey: "a",
		SecretKey: "s",
		Bucket:    "b",
		URLExpiry: 15 * time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.urlExpiry)

	// Region is pinned, so presigning needs no network round trip.
	u, err := s.GetURL(context.Background(), "exp-1", "DEPLOY.md")
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Expires=900")
	assert.Contains(t, u, "/b/exp-1/DEPLOY.md")
}
