package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU(1024)

	c.Set("k", []byte("value"))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, int64(6), c.Size())

	c.Remove("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestLRU_Eviction(t *testing.T) {
	// Each entry costs 2 bytes.
	c := NewLRU(6)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))

	// Touch a so b is the oldest.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", []byte("4"))
	_, ok = c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, int64(6), c.Size())
}

func TestLRU_UpdateGrowsAndEvicts(t *testing.T) {
	c := NewLRU(8)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	c.Set("b", []byte("123456"))
	assert.Equal(t, int64(7), c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, []byte("123456"), got)
}

func TestLRU_OversizedNotCached(t *testing.T) {
	c := NewLRU(4)
	c.Set("key", []byte("too long"))
	assert.Zero(t, c.Len())
}

func TestLRU_Purge(t *testing.T) {
	c := NewLRU(1024)
	for i := range 10 {
		c.Set(fmt.Sprint(i), []byte("x"))
	}
	c.Purge()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Size())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU(1 << 10)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := fmt.Sprintf("%d-%d", g, i%50)
				c.Set(k, []byte("value"))
				c.Get(k)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), int64(1<<10))
}
