package memstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/btree"
	"github.com/hupe1980/drum/blobstore"
	"github.com/hupe1980/drum/store"
)

const degree = 32

type item struct {
	key   []byte
	value []byte
}

func less(a, b item) bool { return bytes.Compare(a.key, b.key) < 0 }

// Option configures a Store.
type Option func(*Store)

// WithBlobStore persists snapshots to bs. Every Flush that follows a change
// encodes and uploads the whole tree, and DRUM flushes once per merged
// bucket; see WithBatchedSnapshots for remote blob stores.
func WithBlobStore(bs blobstore.BlobStore) Option {
	return func(s *Store) { s.blobs = bs }
}

// WithCompression sets the snapshot compression. Default: CompressionNone.
func WithCompression(c Compression) Option {
	return func(s *Store) { s.compression = c }
}

// WithBatchedSnapshots defers snapshots requested by Flush inside a batch to
// EndBatch, so a merge pass uploads at most one snapshot. Dispatched
// operations of a pass interrupted before EndBatch are not in any snapshot.
func WithBatchedSnapshots() Option {
	return func(s *Store) { s.batched = true }
}

// WithSnapshotName overrides the snapshot blob name.
// Default: base name of the Open path plus ".snap".
func WithSnapshotName(name string) Option {
	return func(s *Store) { s.snapshot = name }
}

// Store is an ordered in-memory store.KV.
type Store struct {
	tree        *btree.BTreeG[item]
	blobs       blobstore.BlobStore
	compression Compression
	snapshot    string
	name        string
	dirty       bool
	open        bool
	batched     bool
	inBatch     bool
}

var (
	_ store.KV      = (*Store)(nil)
	_ store.Batcher = (*Store)(nil)
)

// New creates a store. Call Open before use.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTyped is shorthand for store.NewTyped(New(opts...), nil, nil).
func NewTyped[K, V any](opts ...Option) *store.Typed[K, V] {
	return store.NewTyped[K, V](New(opts...), nil, nil)
}

// Open creates an empty tree and loads the snapshot for path if one exists.
func (s *Store) Open(path string) error {
	s.tree = btree.NewG(degree, less)
	s.dirty = false
	s.name = s.snapshot
	if s.name == "" {
		s.name = filepath.Base(path) + ".snap"
	}

	if s.blobs != nil {
		data, err := s.blobs.Get(context.Background(), s.name)
		switch {
		case errors.Is(err, blobstore.ErrNotFound):
		case err != nil:
			return fmt.Errorf("memstore: load snapshot %s: %w", s.name, err)
		default:
			if err := decodeSnapshot(data, s.tree); err != nil {
				return err
			}
		}
	}
	s.open = true
	return nil
}

// Close releases the tree. Unflushed writes are lost.
func (s *Store) Close() error {
	if !s.open {
		return store.ErrClosed
	}
	s.open = false
	s.tree = nil
	return nil
}

// Len returns the number of keys.
func (s *Store) Len() int {
	if !s.open {
		return 0
	}
	return s.tree.Len()
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	if !s.open {
		return nil, false, store.ErrClosed
	}
	it, ok := s.tree.Get(item{key: key})
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(it.value), true, nil
}

func (s *Store) Put(key, value []byte) error {
	if !s.open {
		return store.ErrClosed
	}
	s.tree.ReplaceOrInsert(item{key: bytes.Clone(key), value: bytes.Clone(value)})
	s.dirty = true
	return nil
}

func (s *Store) Delete(key []byte) error {
	if !s.open {
		return store.ErrClosed
	}
	if _, ok := s.tree.Delete(item{key: key}); !ok {
		return store.ErrNotFound
	}
	s.dirty = true
	return nil
}

// Ascend calls fn for every key in order until fn returns false.
func (s *Store) Ascend(fn func(key, value []byte) bool) {
	if !s.open {
		return
	}
	s.tree.Ascend(func(it item) bool { return fn(it.key, it.value) })
}

// Flush writes a snapshot if a blob store is configured and the tree changed.
func (s *Store) Flush() error {
	if !s.open {
		return store.ErrClosed
	}
	if s.blobs == nil || !s.dirty || s.inBatch {
		return nil
	}
	data, err := encodeSnapshot(s.tree, s.compression)
	if err != nil {
		return fmt.Errorf("memstore: encode snapshot: %w", err)
	}
	if err := s.blobs.Put(context.Background(), s.name, data); err != nil {
		return fmt.Errorf("memstore: write snapshot %s: %w", s.name, err)
	}
	s.dirty = false
	return nil
}

// BeginBatch starts deferring snapshots if WithBatchedSnapshots is set.
func (s *Store) BeginBatch() { s.inBatch = s.batched }

// EndBatch stops deferring and writes a pending snapshot.
func (s *Store) EndBatch() error {
	s.inBatch = false
	if !s.open {
		return nil
	}
	return s.Flush()
}
