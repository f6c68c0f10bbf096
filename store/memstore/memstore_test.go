package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/drum/blobstore"
	"github.com/hupe1980/drum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Basic(t *testing.T) {
	s := New()
	require.NoError(t, s.Open("db"))

	_, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	require.NoError(t, s.Put([]byte(""), nil))

	v, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	_, ok, err = s.Get([]byte(""))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete([]byte("a")))
	assert.ErrorIs(t, s.Delete([]byte("a")), store.ErrNotFound)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), store.ErrClosed)

	_, _, err = s.Get([]byte("a"))
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestStore_Ordered(t *testing.T) {
	s := New()
	require.NoError(t, s.Open("db"))
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put([]byte(k), []byte(k)))
	}
	var keys []string
	s.Ascend(func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestStore_PutCopies(t *testing.T) {
	s := New()
	require.NoError(t, s.Open("db"))
	key := []byte("k")
	val := []byte("v")
	require.NoError(t, s.Put(key, val))
	val[0] = 'x'
	got, _, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZSTD, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			blobs := blobstore.NewMemoryStore()

			s := New(WithBlobStore(blobs), WithCompression(c))
			require.NoError(t, s.Open("dir/store"))
			for i := 0; i < 500; i++ {
				require.NoError(t, s.Put([]byte(fmt.Sprintf("key-%04d", i)), []byte(fmt.Sprintf("value-%d", i))))
			}
			require.NoError(t, s.Put([]byte("empty"), nil))
			require.NoError(t, s.Flush())
			require.NoError(t, s.Close())

			names, err := blobs.List(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, []string{"store.snap"}, names)

			r := New(WithBlobStore(blobs))
			require.NoError(t, r.Open("dir/store"))
			assert.Equal(t, 501, r.Len())
			v, ok, err := r.Get([]byte("key-0042"))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "value-42", string(v))
			_, ok, err = r.Get([]byte("empty"))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestStore_FlushOnlyWhenDirty(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	s := New(WithBlobStore(blobs), WithSnapshotName("snap"))
	require.NoError(t, s.Open("ignored"))
	require.NoError(t, s.Flush())

	_, err := blobs.Get(context.Background(), "snap")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, s.Put([]byte("a"), []byte("b")))
	require.NoError(t, s.Flush())
	_, err = blobs.Get(context.Background(), "snap")
	assert.NoError(t, err)
}

func TestStore_CorruptSnapshot(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	s := New(WithBlobStore(blobs), WithCompression(CompressionZSTD))
	require.NoError(t, s.Open("store"))
	require.NoError(t, s.Put([]byte("a"), []byte("b")))
	require.NoError(t, s.Flush())

	data, err := blobs.Get(context.Background(), "store.snap")
	require.NoError(t, err)
	data[headerSize] ^= 0xFF
	require.NoError(t, blobs.Put(context.Background(), "store.snap", data))

	err = New(WithBlobStore(blobs)).Open("store")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	require.NoError(t, blobs.Put(context.Background(), "store.snap", []byte("short")))
	err = New(WithBlobStore(blobs)).Open("store")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestTyped(t *testing.T) {
	s := NewTyped[string, uint64]()
	require.NoError(t, s.Open("x"))
	require.NoError(t, s.Update("k", 7))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), v)
}

// putCounter counts snapshot uploads.
type putCounter struct {
	*blobstore.MemoryStore
	puts int
}

func (p *putCounter) Put(ctx context.Context, name string, data []byte) error {
	p.puts++
	return p.MemoryStore.Put(ctx, name, data)
}

func TestStore_BatchedSnapshots(t *testing.T) {
	blobs := &putCounter{MemoryStore: blobstore.NewMemoryStore()}
	s := New(WithBlobStore(blobs), WithBatchedSnapshots())
	require.NoError(t, s.Open("db"))

	s.BeginBatch()
	for i := 0; i < 8; i++ {
		require.NoError(t, s.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v")))
		require.NoError(t, s.Flush())
	}
	assert.Zero(t, blobs.puts)
	require.NoError(t, s.EndBatch())
	assert.Equal(t, 1, blobs.puts)

	// Outside a batch every dirty Flush snapshots.
	require.NoError(t, s.Put([]byte("x"), nil))
	require.NoError(t, s.Flush())
	assert.Equal(t, 2, blobs.puts)

	reopened := New(WithBlobStore(blobs))
	require.NoError(t, reopened.Open("db"))
	assert.Equal(t, 9, reopened.Len())
}

func TestStore_UnbatchedIgnoresBatch(t *testing.T) {
	blobs := &putCounter{MemoryStore: blobstore.NewMemoryStore()}
	s := New(WithBlobStore(blobs))
	require.NoError(t, s.Open("db"))

	s.BeginBatch()
	require.NoError(t, s.Put([]byte("a"), nil))
	require.NoError(t, s.Flush())
	assert.Equal(t, 1, blobs.puts)
	require.NoError(t, s.EndBatch())
	assert.Equal(t, 1, blobs.puts)
}
