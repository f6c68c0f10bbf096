package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/hupe1980/drum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Basic(t *testing.T) {
	s := New()
	require.NoError(t, s.Open(filepath.Join(t.TempDir(), "sub", "store")))
	defer s.Close()

	_, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	require.NoError(t, s.Put(nil, nil))

	v, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	v, ok, err = s.Get(nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Delete([]byte("a")))
	assert.ErrorIs(t, s.Delete([]byte("a")), store.ErrNotFound)
	require.NoError(t, s.Flush())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	s := NewTyped[string, string]()
	require.NoError(t, s.Open(path))
	require.NoError(t, s.Update("http://a", "page a"))
	require.NoError(t, s.Update("http://b", "page b"))
	require.NoError(t, s.Delete("http://b"))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	r := NewTyped[string, string]()
	require.NoError(t, r.Open(path))
	defer r.Close()

	v, ok, err := r.Get("http://a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "page a", v)

	_, ok, err = r.Get("http://b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Closed(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Close(), store.ErrClosed)
	_, _, err := s.Get([]byte("a"))
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, s.Put([]byte("a"), nil), store.ErrClosed)
	assert.ErrorIs(t, s.Flush(), store.ErrClosed)
}
