// Package cachestore puts a byte-bounded LRU read cache in front of any
// store.KV.
//
// Reads that hit the cache skip the backing store; Put and Delete write
// through and keep the cache coherent. Absent keys are not cached, so a
// miss always consults the backend.
package cachestore

import (
	"github.com/hupe1980/drum/internal/cache"
	"github.com/hupe1980/drum/store"
)

// DefaultCapacity is the cache size used when New gets a non-positive one.
const DefaultCapacity = 64 << 20

// Store is a caching store.KV.
type Store struct {
	kv    store.KV
	cache *cache.LRU
}

var _ store.KV = (*Store)(nil)

// New wraps kv with a cache of capacity bytes.
func New(kv store.KV, capacity int64) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{kv: kv, cache: cache.NewLRU(capacity)}
}

// NewTyped is shorthand for store.NewTyped(New(kv, capacity), nil, nil).
func NewTyped[K, V any](kv store.KV, capacity int64) *store.Typed[K, V] {
	return store.NewTyped[K, V](New(kv, capacity), nil, nil)
}

// Open opens the backing store with an empty cache.
func (s *Store) Open(path string) error {
	s.cache.Purge()
	return s.kv.Open(path)
}

// Close closes the backing store and drops the cache.
func (s *Store) Close() error {
	s.cache.Purge()
	return s.kv.Close()
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	if v, ok := s.cache.Get(string(key)); ok {
		return clone(v), true, nil
	}
	v, ok, err := s.kv.Get(key)
	if err != nil || !ok {
		return v, ok, err
	}
	s.cache.Set(string(key), clone(v))
	return v, true, nil
}

func (s *Store) Put(key, value []byte) error {
	if err := s.kv.Put(key, value); err != nil {
		s.cache.Remove(string(key))
		return err
	}
	s.cache.Set(string(key), clone(value))
	return nil
}

func (s *Store) Delete(key []byte) error {
	s.cache.Remove(string(key))
	return s.kv.Delete(key)
}

func (s *Store) Flush() error { return s.kv.Flush() }

func (s *Store) BeginBatch() {
	if b, ok := s.kv.(store.Batcher); ok {
		b.BeginBatch()
	}
}

func (s *Store) EndBatch() error {
	if b, ok := s.kv.(store.Batcher); ok {
		return b.EndBatch()
	}
	return nil
}

// Stats returns the cache hit and miss counts.
func (s *Store) Stats() (hits, misses int64) { return s.cache.Stats() }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
