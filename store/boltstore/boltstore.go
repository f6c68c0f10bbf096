// Package boltstore implements store.KV on go.etcd.io/bbolt.
//
// Writes go straight into bbolt transactions with fsync disabled; Flush
// syncs the database file. Keys are stored with a one-byte prefix so the
// empty key, which bbolt rejects, is representable.
package boltstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/drum/store"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("drum")

const keyPrefix byte = 'k'

// Store is a persistent ordered store.KV.
type Store struct {
	db      *bolt.DB
	timeout time.Duration
}

var _ store.KV = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds how long Open waits for the file lock.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New creates a store. Call Open before use.
func New(opts ...Option) *Store {
	s := &Store{timeout: time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTyped is shorthand for store.NewTyped(New(opts...), nil, nil).
func NewTyped[K, V any](opts ...Option) *store.Typed[K, V] {
	return store.NewTyped[K, V](New(opts...), nil, nil)
}

func dbKey(key []byte) []byte {
	k := make([]byte, 1+len(key))
	k[0] = keyPrefix
	copy(k[1:], key)
	return k
}

// Open opens or creates the database file at path.
func (s *Store) Open(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("boltstore: create directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: s.timeout, NoSync: true})
	if err != nil {
		return fmt.Errorf("boltstore: open %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return fmt.Errorf("boltstore: create bucket: %w", err)
	}
	s.db = db
	return nil
}

// Close syncs and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return store.ErrClosed
	}
	err := s.db.Sync()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	s.db = nil
	return err
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, store.ErrClosed
	}
	var (
		val []byte
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		val, ok = lookup(tx.Bucket(bucketName), dbKey(key))
		return nil
	})
	return val, ok, err
}

func (s *Store) Put(key, value []byte) error {
	if s.db == nil {
		return store.ErrClosed
	}
	if value == nil {
		value = []byte{}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(dbKey(key), value)
	})
}

func (s *Store) Delete(key []byte) error {
	if s.db == nil {
		return store.ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		k := dbKey(key)
		if _, ok := lookup(b, k); !ok {
			return store.ErrNotFound
		}
		return b.Delete(k)
	})
}

// lookup distinguishes an empty value from a missing key, which
// Bucket.Get does not.
func lookup(b *bolt.Bucket, k []byte) ([]byte, bool) {
	ck, v := b.Cursor().Seek(k)
	if ck == nil || !bytes.Equal(ck, k) {
		return nil, false
	}
	return append([]byte{}, v...), true
}

// Flush fsyncs the database file.
func (s *Store) Flush() error {
	if s.db == nil {
		return store.ErrClosed
	}
	return s.db.Sync()
}

// Len returns the number of keys.
func (s *Store) Len() (int, error) {
	if s.db == nil {
		return 0, store.ErrClosed
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}
