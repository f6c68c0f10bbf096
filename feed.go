package drum

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/drum/internal/bucketfile"
)

// feedAll appends the buffers of every bucket with pending operations to its
// files, in bucket order, and reports whether any bucket file is past the
// merge threshold. The threshold is checked against every bucket, so a
// bucket fed by an earlier, partly failed pass still raises the merge.
func (d *DRUM[K, V, A]) feedAll() (mergeDue bool, err error) {
	start := time.Now()
	var buckets, records int
	var written int64
	defer func() {
		d.opts.metricsCollector.RecordFeed(buckets, records, written, time.Since(start), err)
		d.log.LogFeed(context.Background(), buckets, records, written, mergeDue, err)
	}()

	for b, pair := range d.pairs {
		pending := d.buf.pending(b)
		if len(pending) == 0 {
			continue
		}
		kv0, aux0 := pair.Offsets()
		if err := pair.Append(func(w *bucketfile.Writer) error {
			return d.writeBucket(w, pending)
		}); err != nil {
			return d.overThreshold(), newError("feed", CodeIO, b, err)
		}
		kv, aux := pair.Offsets()
		written += kv - kv0 + aux - aux0
		buckets++
		records += len(pending)
		d.buf.reset(b)
	}
	d.feeds++
	return d.overThreshold(), nil
}

func (d *DRUM[K, V, A]) overThreshold() bool {
	for _, pair := range d.pairs {
		if kv, aux := pair.Offsets(); kv > d.opts.bucketByteSize || aux > d.opts.bucketByteSize {
			return true
		}
	}
	return false
}

func (d *DRUM[K, V, A]) writeBucket(w *bucketfile.Writer, pending []slot[K, V, A]) error {
	for i := range pending {
		s := &pending[i]
		key, err := d.opts.keyCodec.Marshal(s.key)
		if err != nil {
			return fmt.Errorf("encode key: %w", err)
		}
		var value []byte
		if s.op.hasValue() {
			if value, err = d.opts.valueCodec.Marshal(s.value); err != nil {
				return fmt.Errorf("encode value: %w", err)
			}
		}
		if err := w.WriteRecord(byte(s.op), key, value); err != nil {
			return err
		}

		var aux []byte
		if s.present {
			if aux, err = d.opts.auxCodec.Marshal(s.aux); err != nil {
				return fmt.Errorf("encode aux: %w", err)
			}
		}
		if err := w.WriteAux(aux); err != nil {
			return err
		}
	}
	return nil
}
