package drum

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/drum/bucket"
	"github.com/hupe1980/drum/internal/bucketfile"
	"github.com/hupe1980/drum/store"
	"github.com/hupe1980/drum/store/boltstore"
)

// Config holds the generic collaborators of a DRUM. Every field is optional
// except Compare for key types without a known order.
type Config[K, V, A any] struct {
	// Store is the backing store. Default: bbolt at <name>/store, encoded
	// with the key and value codecs.
	Store store.Store[K, V]
	// Compare orders keys for the merge sort. Default: the natural order of
	// built-in ordered kinds, []byte, and types with a Compare(K) int method.
	Compare func(a, b K) int
	// Bucketer maps keys to buckets. Default: bucket.For[K].
	Bucketer bucket.Strategy[K]
	// Dispatcher receives results. Default: NoopDispatcher.
	Dispatcher Dispatcher[K, V, A]
	// Merger combines values for Append and Expel. Default: DefaultMerger[V].
	Merger Merger[V]
}

// Stats is a snapshot of a DRUM's counters.
type Stats struct {
	Buckets     int
	Operations  uint64
	Pending     int
	Feeds       uint64
	Merges      uint64
	Dispatched  uint64
	BucketBytes int64
	State       string
}

// DRUM buffers set-style operations on keys of type K with values V, and
// dispatches each with its auxiliary payload A once resolved.
//
// The operation API is not safe for concurrent use; GetValue is.
type DRUM[K, V, A any] struct {
	name string
	opts options
	log  *Logger

	compare    func(a, b K) int
	bucketer   bucket.Strategy[K]
	dispatcher Dispatcher[K, V, A]
	merger     Merger[V]

	numBuckets int
	bits       uint
	buf        *buffers[K, V, A]
	pairs      []*bucketfile.Pair
	state      state
	scratch    scratch[K, V, A]

	// mu guards store.
	mu       sync.Mutex
	store    store.Store[K, V]
	disposed atomic.Bool

	operations uint64
	feeds      uint64
	merges     uint64
	dispatched uint64
}

// New creates the bucket files under the directory name and opens the
// store. The returned DRUM must be closed with Close, or with Synchronize
// and Dispose.
func New[K, V, A any](name string, cfg Config[K, V, A], optFns ...Option) (*DRUM[K, V, A], error) {
	o := applyOptions(optFns)

	switch {
	case name == "":
		return nil, errConfig("empty name")
	case o.numBuckets <= 0:
		return nil, errConfig("num buckets must be positive, got %d", o.numBuckets)
	case o.numBuckets > MaxNumBuckets:
		return nil, errConfig("num buckets must be at most %d, got %d", MaxNumBuckets, o.numBuckets)
	case o.bucketBufferSize <= 0:
		return nil, errConfig("bucket buffer size must be positive, got %d", o.bucketBufferSize)
	case o.bucketByteSize <= 0:
		return nil, errConfig("bucket byte size must be positive, got %d", o.bucketByteSize)
	}

	compare := cfg.Compare
	if compare == nil {
		var ok bool
		if compare, ok = defaultCompare[K](); !ok {
			var zero K
			return nil, errConfig("no natural order for key type %T, set Config.Compare", zero)
		}
	}
	bucketer := cfg.Bucketer
	if bucketer == nil {
		bucketer = bucket.For[K](o.keyCodec, o.fingerprinter)
	}
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = NoopDispatcher[K, V, A]{}
	}
	merger := cfg.Merger
	if merger == nil {
		merger = DefaultMerger[V]()
	}

	numBuckets, bits := roundBuckets(o.numBuckets)

	if err := o.fs.MkdirAll(name, 0o755); err != nil {
		return nil, newError("new", CodeSetup, -1, err)
	}
	pairs := make([]*bucketfile.Pair, numBuckets)
	for b := range pairs {
		pairs[b] = bucketfile.NewPair(o.fs, name, b)
		if err := pairs[b].Create(); err != nil {
			return nil, newError("new", CodeSetup, b, err)
		}
	}

	st := cfg.Store
	if st == nil {
		st = store.NewTyped[K, V](boltstore.New(), o.keyCodec, o.valueCodec)
	}
	storePath := o.storePath
	if storePath == "" {
		storePath = filepath.Join(name, "store")
	}
	if err := st.Open(storePath); err != nil {
		return nil, newError("new", CodeSetup, -1, fmt.Errorf("open store %s: %w", storePath, err))
	}

	d := &DRUM[K, V, A]{
		name:       name,
		opts:       o,
		log:        o.logger.WithName(name),
		compare:    compare,
		bucketer:   bucketer,
		dispatcher: dispatcher,
		merger:     merger,
		numBuckets: numBuckets,
		bits:       bits,
		buf:        newBuffers[K, V, A](numBuckets, o.bucketBufferSize),
		pairs:      pairs,
		store:      st,
	}
	runtime.SetFinalizer(d, (*DRUM[K, V, A]).finalize)

	d.log.Info("opened",
		"buckets", numBuckets,
		"bucket_buffer_size", o.bucketBufferSize,
		"bucket_byte_size", o.bucketByteSize,
		"store", storePath,
	)
	return d, nil
}

// Name returns the directory the structure is bound to.
func (d *DRUM[K, V, A]) Name() string { return d.name }

// NumBuckets returns the bucket count after rounding.
func (d *DRUM[K, V, A]) NumBuckets() int { return d.numBuckets }

// Check reports whether key exists.
func (d *DRUM[K, V, A]) Check(key K) error {
	var v V
	var a A
	return d.submit(OpCheck, key, v, a, false)
}

// CheckWithAux is Check with a payload for the callback.
func (d *DRUM[K, V, A]) CheckWithAux(key K, aux A) error {
	var v V
	return d.submit(OpCheck, key, v, aux, true)
}

// Update upserts key.
func (d *DRUM[K, V, A]) Update(key K, value V) error {
	var a A
	return d.submit(OpUpdate, key, value, a, false)
}

// UpdateWithAux is Update with a payload for the callback.
func (d *DRUM[K, V, A]) UpdateWithAux(key K, value V, aux A) error {
	return d.submit(OpUpdate, key, value, aux, true)
}

// CheckUpdate reports whether key existed, then upserts it.
func (d *DRUM[K, V, A]) CheckUpdate(key K, value V) error {
	var a A
	return d.submit(OpCheckUpdate, key, value, a, false)
}

// CheckUpdateWithAux is CheckUpdate with a payload for the callback.
func (d *DRUM[K, V, A]) CheckUpdateWithAux(key K, value V, aux A) error {
	return d.submit(OpCheckUpdate, key, value, aux, true)
}

// Delete removes key.
func (d *DRUM[K, V, A]) Delete(key K) error {
	var v V
	var a A
	return d.submit(OpDelete, key, v, a, false)
}

// DeleteWithAux is Delete with a payload for the callback.
func (d *DRUM[K, V, A]) DeleteWithAux(key K, aux A) error {
	var v V
	return d.submit(OpDelete, key, v, aux, true)
}

// CheckDelete reports whether key existed, then removes it.
func (d *DRUM[K, V, A]) CheckDelete(key K) error {
	var v V
	var a A
	return d.submit(OpCheckDelete, key, v, a, false)
}

// CheckDeleteWithAux is CheckDelete with a payload for the callback.
func (d *DRUM[K, V, A]) CheckDeleteWithAux(key K, aux A) error {
	var v V
	return d.submit(OpCheckDelete, key, v, aux, true)
}

// Append merges value into the stored value of key through the Merger.
func (d *DRUM[K, V, A]) Append(key K, value V) error {
	var a A
	return d.submit(OpAppend, key, value, a, false)
}

// AppendWithAux is Append with a payload for the callback.
func (d *DRUM[K, V, A]) AppendWithAux(key K, value V, aux A) error {
	return d.submit(OpAppend, key, value, aux, true)
}

// Expel removes value from the stored value of key through the Merger.
func (d *DRUM[K, V, A]) Expel(key K, value V) error {
	var a A
	return d.submit(OpExpel, key, value, a, false)
}

// ExpelWithAux is Expel with a payload for the callback.
func (d *DRUM[K, V, A]) ExpelWithAux(key K, value V, aux A) error {
	return d.submit(OpExpel, key, value, aux, true)
}

// GetValue reads key from the store. Operations that have not been merged
// yet are not visible.
func (d *DRUM[K, V, A]) GetValue(key K) (V, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero V
	if d.disposed.Load() {
		return zero, false, errDisposed("get_value")
	}
	v, ok, err := d.store.Get(key)
	if err != nil {
		return zero, false, newError("get_value", CodeIO, -1, err)
	}
	return v, ok, nil
}

// Synchronize feeds every buffer, merges every bucket, releases the buffers
// and truncates the bucket files. Afterwards every operation issued so far
// has been dispatched.
func (d *DRUM[K, V, A]) Synchronize() (err error) {
	if d.disposed.Load() {
		return errDisposed("synchronize")
	}
	start := time.Now()
	defer func() { d.log.LogSynchronize(context.Background(), time.Since(start), err) }()

	if _, err := d.feedAll(); err != nil {
		return err
	}
	d.state = stateNeedsMerge
	if err := d.mergeAll(); err != nil {
		return err
	}
	d.state = stateIdle
	d.buf.release()

	for b, p := range d.pairs {
		if err := p.Truncate(); err != nil {
			return newError("synchronize", CodeIO, b, err)
		}
	}
	return nil
}

// Dispose closes the store. Pending operations that were not synchronized
// are dropped. Every later call returns ErrDisposed.
func (d *DRUM[K, V, A]) Dispose() (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.disposed.CompareAndSwap(false, true) {
		return errDisposed("dispose")
	}
	runtime.SetFinalizer(d, nil)
	defer func() { d.log.LogDispose(context.Background(), err) }()

	if pending := d.buf.len(); pending > 0 {
		d.log.Warn("disposing with unsynchronized operations", "pending", pending)
	}
	d.buf.release()

	if err := d.store.Close(); err != nil {
		return newError("dispose", CodeIO, -1, err)
	}
	return nil
}

// Close synchronizes and disposes. The store is closed even when
// synchronizing fails.
func (d *DRUM[K, V, A]) Close() error {
	if d.disposed.Load() {
		return errDisposed("close")
	}
	syncErr := d.Synchronize()
	return errors.Join(syncErr, d.Dispose())
}

// Stats returns a snapshot of the counters.
func (d *DRUM[K, V, A]) Stats() Stats {
	var bytes int64
	for _, p := range d.pairs {
		kv, aux := p.Offsets()
		bytes += kv + aux
	}
	return Stats{
		Buckets:     d.numBuckets,
		Operations:  d.operations,
		Pending:     d.buf.len(),
		Feeds:       d.feeds,
		Merges:      d.merges,
		Dispatched:  d.dispatched,
		BucketBytes: bytes,
		State:       d.state.String(),
	}
}

func (d *DRUM[K, V, A]) finalize() {
	if d.disposed.Load() {
		return
	}
	if err := d.Close(); err != nil {
		d.log.Error("close on finalize failed", "error", err)
	}
}

func (d *DRUM[K, V, A]) submit(op OpCode, key K, value V, aux A, present bool) (err error) {
	defer func() { d.opts.metricsCollector.RecordOperation(op, err) }()

	if d.disposed.Load() {
		return errDisposed(op.String())
	}
	// A failed feed or merge leaves the trigger raised; drain it before a
	// full bucket takes another record.
	if d.state != stateIdle {
		if err := d.advance(); err != nil {
			return err
		}
	}

	b, err := d.bucketer.Bucket(key, d.bits)
	if err != nil {
		return newError(op.String(), CodeIO, -1, err)
	}
	b = min(max(b, 0), d.numBuckets-1)

	if _, full := d.buf.add(b, slot[K, V, A]{key: key, value: value, aux: aux, op: op, present: present}); full {
		d.state = stateNeedsFeed
	}
	d.operations++
	return d.advance()
}

// advance runs whatever the trigger asks for:
// idle → needsFeed → needsMerge → idle.
func (d *DRUM[K, V, A]) advance() error {
	if d.state == stateNeedsFeed {
		mergeDue, err := d.feedAll()
		if err != nil {
			return err
		}
		d.state = stateIdle
		if mergeDue {
			d.state = stateNeedsMerge
		}
	}
	if d.state == stateNeedsMerge {
		if err := d.mergeAll(); err != nil {
			return err
		}
		d.state = stateIdle
	}
	return nil
}
