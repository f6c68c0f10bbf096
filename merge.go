package drum

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/drum/codec"
	"github.com/hupe1980/drum/internal/bucketfile"
	"github.com/hupe1980/drum/store"
)

// scratch is the per-bucket merge state, reused across buckets.
type scratch[K, V, A any] struct {
	records []record[K, V]
	unsort  []int
	aux     []A
}

func (s *scratch[K, V, A]) clear() {
	clear(s.records)
	clear(s.aux)
	s.records = s.records[:0]
	s.unsort = s.unsort[:0]
	s.aux = s.aux[:0]
}

// mergeAll merges every bucket in index order. Each bucket's offsets are
// rewound as soon as its records have been dispatched, so a failure in a
// later bucket never dispatches an earlier one twice.
func (d *DRUM[K, V, A]) mergeAll() (err error) {
	start := time.Now()
	total := 0
	defer func() {
		d.opts.metricsCollector.RecordMerge(total, time.Since(start), err)
		d.log.LogMerge(context.Background(), total, time.Since(start), err)
	}()

	if bs, ok := d.store.(store.Batcher); ok {
		d.mu.Lock()
		bs.BeginBatch()
		d.mu.Unlock()
		defer func() {
			d.mu.Lock()
			berr := bs.EndBatch()
			d.mu.Unlock()
			if berr != nil {
				err = errors.Join(err, newError("merge", CodePersist, -1, berr))
			}
		}()
	}

	for b := range d.pairs {
		n, err := d.mergeBucket(b)
		total += n
		if err != nil {
			d.log.LogMergeBucket(context.Background(), b, n, err)
			return err
		}
		if n > 0 {
			d.log.LogMergeBucket(context.Background(), b, n, nil)
		}
	}
	d.merges++
	return nil
}

func (d *DRUM[K, V, A]) mergeBucket(b int) (int, error) {
	pair := d.pairs[b]
	if kv, aux := pair.Offsets(); kv == 0 && aux == 0 {
		return 0, nil
	}
	sc := &d.scratch
	defer sc.clear()

	// Load, in arrival order.
	err := pair.LoadRecords(func(e bucketfile.Entry) error {
		op := OpCode(e.Op)
		if !op.Valid() {
			return fmt.Errorf("%w: unknown op %d in record %d", bucketfile.ErrCorrupt, e.Op, len(sc.records))
		}
		key, err := codec.Decode[K](d.opts.keyCodec, e.Key)
		if err != nil {
			return fmt.Errorf("decode key of record %d: %w", len(sc.records), err)
		}
		r := record[K, V]{key: key, op: op, arrival: len(sc.records)}
		if len(e.Value) > 0 {
			if r.value, err = codec.Decode[V](d.opts.valueCodec, e.Value); err != nil {
				return fmt.Errorf("decode value of record %d: %w", len(sc.records), err)
			}
		}
		sc.records = append(sc.records, r)
		return nil
	})
	if err != nil {
		return len(sc.records), newError("merge", ioCode(err), b, err)
	}
	n := len(sc.records)

	// Sort. Stability keeps equal keys in arrival order.
	slices.SortStableFunc(sc.records, func(x, y record[K, V]) int {
		return d.compare(x.key, y.key)
	})

	// Resolve and flush under the store lock.
	if err := d.resolveLocked(b, sc.records); err != nil {
		return n, err
	}

	// Unsort.
	sc.unsort = slices.Grow(sc.unsort[:0], n)[:n]
	for i := range sc.records {
		sc.unsort[sc.records[i].arrival] = i
	}

	// Load aux, in arrival order.
	err = pair.LoadAux(func(data []byte) error {
		var a A
		if len(data) > 0 {
			var err error
			if a, err = codec.Decode[A](d.opts.auxCodec, data); err != nil {
				return fmt.Errorf("decode aux %d: %w", len(sc.aux), err)
			}
		}
		sc.aux = append(sc.aux, a)
		return nil
	})
	if err != nil {
		return n, newError("merge", ioCode(err), b, err)
	}
	if len(sc.aux) != n {
		return n, newError("merge", CodeCorrupt, b,
			fmt.Errorf("%w: %d records but %d aux entries", bucketfile.ErrCorrupt, n, len(sc.aux)))
	}

	// Dispatch, in arrival order.
	for i := 0; i < n; i++ {
		r := &sc.records[sc.unsort[i]]
		dispatch(d.dispatcher, r, sc.aux[i])
		d.opts.metricsCollector.RecordDispatch(r.op, r.result)
		d.dispatched++
	}

	pair.Reset()
	return n, nil
}

// group accumulates consecutive Append/Expel records of one key.
type group[K, V any] struct {
	active bool
	dirty  bool
	key    K
	value  V
}

func (d *DRUM[K, V, A]) resolveLocked(b int, recs []record[K, V]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.resolve(b, recs); err != nil {
		return err
	}
	if err := d.store.Flush(); err != nil {
		return newError("merge", CodePersist, b, err)
	}
	return nil
}

// resolve runs one pass over the sorted records of bucket b against the
// store. A key that a Check reported Unique counts as seen for the rest of
// the pass, so later checks of it report Duplicate until the store changes
// for that key.
func (d *DRUM[K, V, A]) resolve(b int, recs []record[K, V]) error {
	var (
		g        group[K, V]
		seen     K
		haveSeen bool
	)
	forget := func(key K) {
		if haveSeen && d.compare(seen, key) == 0 {
			haveSeen = false
		}
	}
	commit := func() error {
		if g.active && g.dirty {
			if err := d.store.Update(g.key, g.value); err != nil {
				return newError("merge", CodeMerge, b, fmt.Errorf("commit group: %w", err))
			}
			forget(g.key)
		}
		g = group[K, V]{}
		return nil
	}

	for i := range recs {
		r := &recs[i]

		if g.active && (!r.op.grouped() || d.compare(g.key, r.key) != 0) {
			if err := commit(); err != nil {
				return err
			}
		}

		if r.op.checks() {
			v, ok, err := d.store.Get(r.key)
			if err != nil {
				return newError("merge", CodeMerge, b, fmt.Errorf("check: %w", err))
			}
			switch {
			case ok:
				r.result = Duplicate
				r.found = true
				if r.op == OpCheck {
					r.value = v
				}
			case haveSeen && d.compare(seen, r.key) == 0:
				r.result = Duplicate
			default:
				r.result = Unique
				if r.op == OpCheck {
					seen, haveSeen = r.key, true
				}
			}
		}

		switch r.op {
		case OpUpdate, OpCheckUpdate:
			if err := d.store.Update(r.key, r.value); err != nil {
				return newError("merge", CodeMerge, b, fmt.Errorf("update: %w", err))
			}
			forget(r.key)

		case OpDelete, OpCheckDelete:
			err := d.store.Delete(r.key)
			switch {
			case err == nil:
			case r.found:
				return newError("merge", CodeMerge, b, fmt.Errorf("delete existing key: %w", err))
			case !errors.Is(err, store.ErrNotFound):
				d.log.Warn("delete failed", "bucket", b, "op", r.op.String(), "error", err)
			}
			forget(r.key)

		case OpAppend, OpExpel:
			if !g.active {
				v, ok, err := d.store.Get(r.key)
				if err != nil {
					return newError("merge", CodeMerge, b, fmt.Errorf("load group: %w", err))
				}
				g = group[K, V]{active: true, key: r.key}
				if ok {
					g.value = v
				}
			}
			var changed bool
			if r.op == OpAppend {
				changed = d.merger.Append(&g.value, r.value)
			} else {
				changed = d.merger.Remove(&g.value, r.value)
			}
			if changed {
				r.result = Unique
				g.dirty = true
			} else {
				r.result = Duplicate
			}
		}
	}
	return commit()
}
