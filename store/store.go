// Package store defines the ordered key/value store DRUM merges against.
//
// The store is the single source of truth for whether a key exists and what
// its value is. DRUM only calls it from the merge pass and from GetValue,
// always under its own lock, so implementations need not be safe for
// concurrent use.
//
// Two layers are provided: KV is a byte-level contract implemented by the
// backends in memstore and boltstore, and Typed adapts any KV to the generic
// Store[K, V] through a pair of codecs.
package store

import (
	"errors"
	"fmt"

	"github.com/hupe1980/drum/codec"
)

// ErrNotFound is returned by Delete when the key does not exist.
var ErrNotFound = errors.New("store: key not found")

// ErrClosed is returned when a closed store is used.
var ErrClosed = errors.New("store: closed")

// Store is the typed backing store.
type Store[K, V any] interface {
	// Open prepares the store at path.
	Open(path string) error
	// Close releases the store.
	Close() error
	// Get returns the value of key and whether it exists.
	Get(key K) (V, bool, error)
	// Update inserts or overwrites key.
	Update(key K, value V) error
	// Delete removes key, returning ErrNotFound if it is absent.
	Delete(key K) error
	// Flush persists every accepted write.
	Flush() error
}

// KV is the byte-level backing store.
type KV interface {
	Open(path string) error
	Close() error
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Flush() error
}

// Batcher is implemented by stores whose Flush is expensive enough to defer
// across a merge pass. DRUM calls BeginBatch before merging the first bucket
// and EndBatch after the last, even when the pass fails. A Flush in between
// may return before its writes are durable; EndBatch makes them durable.
type Batcher interface {
	BeginBatch()
	EndBatch() error
}

// Typed adapts a KV to Store[K, V].
type Typed[K, V any] struct {
	kv     KV
	keys   codec.Codec
	values codec.Codec
}

var (
	_ Store[string, string] = (*Typed[string, string])(nil)
	_ Batcher               = (*Typed[string, string])(nil)
)

// NewTyped wraps kv. Nil codecs default to codec.Default.
func NewTyped[K, V any](kv KV, keys, values codec.Codec) *Typed[K, V] {
	if keys == nil {
		keys = codec.Default
	}
	if values == nil {
		values = codec.Default
	}
	return &Typed[K, V]{kv: kv, keys: keys, values: values}
}

// KV returns the wrapped byte-level store.
func (t *Typed[K, V]) KV() KV { return t.kv }

func (t *Typed[K, V]) Open(path string) error { return t.kv.Open(path) }

func (t *Typed[K, V]) Close() error { return t.kv.Close() }

func (t *Typed[K, V]) Flush() error { return t.kv.Flush() }

// BeginBatch forwards to the KV if it is a Batcher.
func (t *Typed[K, V]) BeginBatch() {
	if b, ok := t.kv.(Batcher); ok {
		b.BeginBatch()
	}
}

// EndBatch forwards to the KV if it is a Batcher.
func (t *Typed[K, V]) EndBatch() error {
	if b, ok := t.kv.(Batcher); ok {
		return b.EndBatch()
	}
	return nil
}

func (t *Typed[K, V]) Get(key K) (V, bool, error) {
	var zero V
	k, err := t.keys.Marshal(key)
	if err != nil {
		return zero, false, fmt.Errorf("store: encode key: %w", err)
	}
	data, ok, err := t.kv.Get(k)
	if err != nil || !ok {
		return zero, false, err
	}
	if len(data) == 0 {
		return zero, true, nil
	}
	v, err := codec.Decode[V](t.values, data)
	if err != nil {
		return zero, false, fmt.Errorf("store: decode value: %w", err)
	}
	return v, true, nil
}

func (t *Typed[K, V]) Update(key K, value V) error {
	k, err := t.keys.Marshal(key)
	if err != nil {
		return fmt.Errorf("store: encode key: %w", err)
	}
	v, err := t.values.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode value: %w", err)
	}
	return t.kv.Put(k, v)
}

func (t *Typed[K, V]) Delete(key K) error {
	k, err := t.keys.Marshal(key)
	if err != nil {
		return fmt.Errorf("store: encode key: %w", err)
	}
	return t.kv.Delete(k)
}
