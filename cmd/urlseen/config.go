package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/drum"
	"github.com/hupe1980/drum/store/memstore"
)

// Configuration is read from flags and environment by goconfig.
type Configuration struct {
	Dir        string `usage:"data directory for bucket files and the store"`
	Input      string `usage:"file with one URL per line, - for stdin"`
	Buckets    int    `usage:"number of buckets, rounded up to a power of two"`
	BufferSize int    `usage:"operations buffered per bucket before a feed"`
	ByteSize   int64  `usage:"bucket file size that triggers a merge"`
	Normalize  bool   `usage:"lower-case scheme and host, drop fragments"`
	PrintDups  bool   `usage:"print duplicates to stderr"`

	Store       string `usage:"backing store: bolt or memory"`
	CacheSize   int64  `usage:"bolt read cache in bytes, 0 disables"`
	Snapshot    string `usage:"memory store snapshot target: none, local, minio or s3"`
	Compression string `usage:"memory store snapshot compression: none, zstd or lz4"`

	MinioEndpoint  string `usage:"MinIO endpoint host:port"`
	MinioAccessKey string `usage:"MinIO access key"`
	MinioSecretKey string `usage:"MinIO secret key"`
	MinioSecure    bool   `usage:"use TLS for MinIO"`
	Bucket         string `usage:"object storage bucket for snapshots"`
	Prefix         string `usage:"object key prefix for snapshots"`

	LogLevel  string `usage:"debug, info, warn or error"`
	LogFormat string `usage:"text or json"`

	ShowStats  bool `usage:"print counters on exit"`
	ShowConfig bool `usage:"print config"`
	Version    bool `usage:"show version and exit"`
}

// Default returns the configuration used when nothing is set.
func Default() Configuration {
	return Configuration{
		Dir:         "urlseen-data",
		Input:       "-",
		Buckets:     drum.DefaultNumBuckets,
		BufferSize:  drum.DefaultBucketBufferSize,
		ByteSize:    drum.DefaultBucketByteSize,
		Normalize:   true,
		Store:       "bolt",
		CacheSize:   16 << 20,
		Snapshot:    "local",
		Compression: "zstd",
		Prefix:      "urlseen/",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func (c Configuration) validate() error {
	switch c.Store {
	case "bolt", "memory":
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.Snapshot {
	case "none", "local":
	case "minio":
		if c.MinioEndpoint == "" || c.Bucket == "" {
			return fmt.Errorf("snapshot minio needs minioendpoint and bucket")
		}
	case "s3":
		if c.Bucket == "" {
			return fmt.Errorf("snapshot s3 needs bucket")
		}
	default:
		return fmt.Errorf("unknown snapshot target %q", c.Snapshot)
	}
	if _, err := c.compression(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Configuration) compression() (memstore.Compression, error) {
	switch strings.ToLower(c.Compression) {
	case "none", "":
		return memstore.CompressionNone, nil
	case "zstd":
		return memstore.CompressionZSTD, nil
	case "lz4":
		return memstore.CompressionLZ4, nil
	}
	return 0, fmt.Errorf("unknown compression %q", c.Compression)
}

func (c Configuration) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

func (c Configuration) logger() *drum.Logger {
	l, _ := c.level()
	if c.LogFormat == "json" {
		return drum.NewJSONLogger(l)
	}
	return drum.NewTextLogger(l)
}
