package minio

import (
	"context"
	"os"
	"testing"

	"github.com/hupe1980/drum/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration requires a running MinIO instance.
// Set DRUM_MINIO_ENDPOINT (e.g. localhost:9000) to enable it.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("DRUM_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("DRUM_MINIO_ENDPOINT not set")
	}
	bucket := "test-drum"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	require.NoError(t, store.Put(ctx, "snap", []byte("hello minio")))
	data, err := store.Get(ctx, "snap")
	require.NoError(t, err)
	assert.Equal(t, "hello minio", string(data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "snap")

	require.NoError(t, store.Delete(ctx, "snap"))
	_, err = store.Get(ctx, "snap")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_Key(t *testing.T) {
	s := NewStore(nil, "b", "root/")
	assert.Equal(t, "root/a/b", s.key("a/b"))
}
