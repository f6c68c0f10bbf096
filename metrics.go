package drum

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    operations *prometheus.CounterVec
//	    merges     prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordOperation(op drum.OpCode, err error) {
//	    p.operations.WithLabelValues(op.String()).Inc()
//	}
//
// See examples/observability for a complete collector.
type MetricsCollector interface {
	// RecordOperation is called after each buffered operation.
	// err is non-nil when the operation, or the feed or merge it triggered, failed.
	RecordOperation(op OpCode, err error)

	// RecordFeed is called after each feed of all buckets.
	// buckets is the number of buckets that had pending records,
	// bytes the number of bytes appended to bucket files.
	RecordFeed(buckets, records int, bytes int64, duration time.Duration, err error)

	// RecordMerge is called after each merge of all buckets.
	RecordMerge(records int, duration time.Duration, err error)

	// RecordDispatch is called once per dispatched callback.
	RecordDispatch(op OpCode, result Result)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperation(OpCode, error)                    {}
func (NoopMetricsCollector) RecordFeed(int, int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordMerge(int, time.Duration, error)            {}
func (NoopMetricsCollector) RecordDispatch(OpCode, Result)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OperationCount   atomic.Int64
	OperationErrors  atomic.Int64
	FeedCount        atomic.Int64
	FeedErrors       atomic.Int64
	FedRecords       atomic.Int64
	FedBytes         atomic.Int64
	FeedTotalNanos   atomic.Int64
	MergeCount       atomic.Int64
	MergeErrors      atomic.Int64
	MergedRecords    atomic.Int64
	MergeTotalNanos  atomic.Int64
	UniqueDispatches atomic.Int64
	DupDispatches    atomic.Int64
	PlainDispatches  atomic.Int64
}

// RecordOperation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOperation(_ OpCode, err error) {
	b.OperationCount.Add(1)
	if err != nil {
		b.OperationErrors.Add(1)
	}
}

// RecordFeed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFeed(_, records int, bytes int64, duration time.Duration, err error) {
	b.FeedCount.Add(1)
	b.FeedTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FeedErrors.Add(1)
		return
	}
	b.FedRecords.Add(int64(records))
	b.FedBytes.Add(bytes)
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(records int, duration time.Duration, err error) {
	b.MergeCount.Add(1)
	b.MergeTotalNanos.Add(duration.Nanoseconds())
	b.MergedRecords.Add(int64(records))
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

// RecordDispatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDispatch(_ OpCode, result Result) {
	switch result {
	case Unique:
		b.UniqueDispatches.Add(1)
	case Duplicate:
		b.DupDispatches.Add(1)
	default:
		b.PlainDispatches.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OperationCount:   b.OperationCount.Load(),
		OperationErrors:  b.OperationErrors.Load(),
		FeedCount:        b.FeedCount.Load(),
		FeedErrors:       b.FeedErrors.Load(),
		FedRecords:       b.FedRecords.Load(),
		FedBytes:         b.FedBytes.Load(),
		FeedAvgNanos:     avg(b.FeedTotalNanos.Load(), b.FeedCount.Load()),
		MergeCount:       b.MergeCount.Load(),
		MergeErrors:      b.MergeErrors.Load(),
		MergedRecords:    b.MergedRecords.Load(),
		MergeAvgNanos:    avg(b.MergeTotalNanos.Load(), b.MergeCount.Load()),
		UniqueDispatches: b.UniqueDispatches.Load(),
		DupDispatches:    b.DupDispatches.Load(),
		PlainDispatches:  b.PlainDispatches.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OperationCount   int64
	OperationErrors  int64
	FeedCount        int64
	FeedErrors       int64
	FedRecords       int64
	FedBytes         int64
	FeedAvgNanos     int64
	MergeCount       int64
	MergeErrors      int64
	MergedRecords    int64
	MergeAvgNanos    int64
	UniqueDispatches int64
	DupDispatches    int64
	PlainDispatches  int64
}
