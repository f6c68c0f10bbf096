package drum

import (
	"log/slog"

	"github.com/hupe1980/drum/codec"
	"github.com/hupe1980/drum/fingerprint"
	"github.com/hupe1980/drum/internal/fs"
)

const (
	// DefaultNumBuckets is the default number of buckets.
	DefaultNumBuckets = 64
	// DefaultBucketBufferSize is the default in-memory capacity per bucket, in records.
	DefaultBucketBufferSize = 4096
	// DefaultBucketByteSize is the default per-bucket file size that triggers a merge.
	DefaultBucketByteSize = 8 << 20
	// MaxNumBuckets bounds the number of buckets. Every bucket owns two files.
	MaxNumBuckets = 1 << 16
)

type options struct {
	numBuckets       int
	bucketBufferSize int
	bucketByteSize   int64
	keyCodec         codec.Codec
	valueCodec       codec.Codec
	auxCodec         codec.Codec
	fingerprinter    fingerprint.Fingerprinter
	storePath        string
	metricsCollector MetricsCollector
	logger           *Logger
	fs               fs.FileSystem
}

// Option configures DRUM construction.
type Option func(*options)

// WithNumBuckets sets the number of buckets. It is rounded up to a power of two
// and must not exceed MaxNumBuckets.
func WithNumBuckets(n int) Option {
	return func(o *options) {
		o.numBuckets = n
	}
}

// WithBucketBufferSize sets the in-memory capacity of each bucket, in records.
// Filling any bucket feeds every bucket to disk.
func WithBucketBufferSize(n int) Option {
	return func(o *options) {
		o.bucketBufferSize = n
	}
}

// WithBucketByteSize sets the per-bucket file size that triggers a merge of
// all buckets after a feed.
func WithBucketByteSize(n int64) Option {
	return func(o *options) {
		o.bucketByteSize = n
	}
}

// WithKeyCodec configures the codec for keys in bucket files and in the
// default store. If nil is passed, codec.Default is used.
func WithKeyCodec(c codec.Codec) Option {
	return func(o *options) {
		o.keyCodec = c
	}
}

// WithValueCodec configures the codec for values.
// If nil is passed, codec.Default is used.
func WithValueCodec(c codec.Codec) Option {
	return func(o *options) {
		o.valueCodec = c
	}
}

// WithAuxCodec configures the codec for auxiliary payloads.
// If nil is passed, codec.Default is used.
func WithAuxCodec(c codec.Codec) Option {
	return func(o *options) {
		o.auxCodec = c
	}
}

// WithFingerprinter replaces the Rabin fingerprint used for bucketing
// string and serialized keys.
func WithFingerprinter(fp fingerprint.Fingerprinter) Option {
	return func(o *options) {
		o.fingerprinter = fp
	}
}

// WithStorePath overrides the path passed to Store.Open.
// Default: <name>/store.
func WithStorePath(path string) Option {
	return func(o *options) {
		o.storePath = path
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &drum.BasicMetricsCollector{}
//	d, _ := drum.New[string, string, string]("./seen", cfg, drum.WithMetricsCollector(metrics))
//	// ... use d ...
//	stats := metrics.GetStats()
//	fmt.Printf("Merges: %d, Avg latency: %dns\n", stats.MergeCount, stats.MergeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := drum.NewJSONLogger(slog.LevelInfo)
//	d, _ := drum.New[string, string, string]("./seen", cfg, drum.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// withFileSystem swaps the file system under the bucket files.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		numBuckets:       DefaultNumBuckets,
		bucketBufferSize: DefaultBucketBufferSize,
		bucketByteSize:   DefaultBucketByteSize,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.keyCodec == nil {
		o.keyCodec = codec.Default
	}
	if o.valueCodec == nil {
		o.valueCodec = codec.Default
	}
	if o.auxCodec == nil {
		o.auxCodec = codec.Default
	}
	if o.fingerprinter == nil {
		o.fingerprinter = fingerprint.Default
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.fs == nil {
		o.fs = fs.Default
	}
	return o
}

// roundBuckets rounds n up to a power of two and returns it with its log2.
func roundBuckets(n int) (int, uint) {
	size, bits := 1, uint(0)
	for size < n {
		size <<= 1
		bits++
	}
	return size, bits
}
