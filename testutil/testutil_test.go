package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)
	assert.Equal(t, a.URLs(50, 10), b.URLs(50, 10))
	assert.Equal(t, a.Uint64(), b.Uint64())

	a.Reset()
	c := NewRNG(4711)
	assert.Equal(t, c.Bytes(16), a.Bytes(16))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestRNG_URLs(t *testing.T) {
	rng := NewRNG(1)
	urls := rng.URLs(1000, 20)
	assert.Len(t, urls, 1000)

	distinct := map[string]bool{}
	for _, u := range urls {
		distinct[u] = true
	}
	assert.LessOrEqual(t, len(distinct), 20)
	assert.Greater(t, len(distinct), 10)
}

func TestRNG_String(t *testing.T) {
	rng := NewRNG(2)
	for i := 0; i < 100; i++ {
		s := rng.String(2, 5)
		assert.GreaterOrEqual(t, len(s), 2)
		assert.LessOrEqual(t, len(s), 5)
	}
}

func TestZipf(t *testing.T) {
	rng := NewRNG(3)
	counts := make([]int, 10)
	for i := 0; i < 2000; i++ {
		v := rng.Zipf(10, 1.5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
		counts[v]++
	}
	assert.Greater(t, counts[0], counts[9])
}

func TestModel(t *testing.T) {
	cat := func(acc *string, in string) bool {
		if in == "" {
			return false
		}
		*acc += in
		return true
	}
	m := NewModel[string, string](cat, nil)

	assert.Equal(t, UniqueKeyCheck, m.Apply("check", "k", "").Callback)
	assert.Equal(t, DuplicateKeyCheck, m.Apply("check", "k", "").Callback)
	assert.Equal(t, DuplicateKeyUpdate, m.Apply("check_update", "k", "v").Callback)

	ev := m.Apply("check", "k", "")
	assert.Equal(t, DuplicateKeyCheck, ev.Callback)
	assert.Equal(t, "v", ev.Value)

	assert.Equal(t, UniqueKeyAppend, m.Apply("append", "k", "w").Callback)
	v, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "vw", v)

	assert.Equal(t, DuplicateKeyDelete, m.Apply("check_delete", "k", "").Callback)
	assert.Equal(t, UniqueKeyDelete, m.Apply("check_delete", "k", "").Callback)

	m.Apply("check", "x", "")
	m.NextPass()
	assert.Equal(t, UniqueKeyCheck, m.Apply("check", "x", "").Callback)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder[string, int, string]()
	r.UniqueKeyCheck("a", "aux")
	r.Update("b", 2, "")
	r.DuplicateKeyExpel("c", 3, "x")

	assert.Equal(t, []string{UniqueKeyCheck, Update, DuplicateKeyExpel}, r.Callbacks())
	assert.Equal(t, 3, r.Len())
	ev := r.Events()[1]
	assert.Equal(t, "b", ev.Key)
	assert.Equal(t, 2, ev.Value)

	r.Reset()
	assert.Zero(t, r.Len())
}
