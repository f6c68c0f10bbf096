package cachestore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hupe1980/drum/store"
	"github.com/hupe1980/drum/store/boltstore"
	"github.com/hupe1980/drum/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingKV counts backend reads and can fail writes.
type countingKV struct {
	store.KV
	gets   int
	putErr error
}

func (c *countingKV) Get(key []byte) ([]byte, bool, error) {
	c.gets++
	return c.KV.Get(key)
}

func (c *countingKV) Put(key, value []byte) error {
	if c.putErr != nil {
		return c.putErr
	}
	return c.KV.Put(key, value)
}

func newCounting(t *testing.T) (*Store, *countingKV) {
	t.Helper()
	backend := &countingKV{KV: memstore.New()}
	s := New(backend, 1024)
	require.NoError(t, s.Open("cache"))
	t.Cleanup(func() { _ = s.Close() })
	return s, backend
}

func TestStore_ReadThrough(t *testing.T) {
	s, backend := newCounting(t)
	require.NoError(t, backend.KV.Put([]byte("k"), []byte("v")))

	for range 3 {
		v, ok, err := s.Get([]byte("k"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)
	}
	assert.Equal(t, 1, backend.gets)

	hits, misses := s.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestStore_MissesAreNotCached(t *testing.T) {
	s, backend := newCounting(t)

	for range 2 {
		_, ok, err := s.Get([]byte("absent"))
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 2, backend.gets)
}

func TestStore_WriteThrough(t *testing.T) {
	s, backend := newCounting(t)

	require.NoError(t, s.Put([]byte("k"), []byte("v1")))
	v, ok, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
	assert.Zero(t, backend.gets)

	// Returned slices are copies.
	v[0] = 'x'
	v, _, _ = s.Get([]byte("k"))
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, s.Delete([]byte("k")))
	_, ok, err = s.Get([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Delete([]byte("k")), store.ErrNotFound)
}

func TestStore_FailedPutInvalidates(t *testing.T) {
	s, backend := newCounting(t)
	require.NoError(t, s.Put([]byte("k"), []byte("v1")))

	backend.putErr = errors.New("boom")
	assert.Error(t, s.Put([]byte("k"), []byte("v2")))

	v, ok, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
	assert.Equal(t, 1, backend.gets)
}

func TestStore_EmptyValue(t *testing.T) {
	s, _ := newCounting(t)
	require.NoError(t, s.Put([]byte("k"), nil))

	v, ok, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestStore_TypedOverBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	s := NewTyped[string, uint64](boltstore.New(), 0)
	require.NoError(t, s.Open(path))
	require.NoError(t, s.Update("http://a", 1))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	s = NewTyped[string, uint64](boltstore.New(), 0)
	require.NoError(t, s.Open(path))
	defer s.Close()
	v, ok, err := s.Get("http://a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), v)
}
