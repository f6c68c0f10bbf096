package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/drum"
	"github.com/hupe1980/drum/blobstore"
	miniostore "github.com/hupe1980/drum/blobstore/minio"
	s3store "github.com/hupe1980/drum/blobstore/s3"
	"github.com/hupe1980/drum/fingerprint"
	"github.com/hupe1980/drum/store"
	"github.com/hupe1980/drum/store/boltstore"
	"github.com/hupe1980/drum/store/cachestore"
	"github.com/hupe1980/drum/store/memstore"
)

type summary struct {
	Lines      int
	Invalid    int
	Unique     int
	Duplicates int
}

// seenStore maps a URL fingerprint to the input line it was last seen on.
type seenStore = store.Store[fingerprint.Uint128, uint64]

func run(ctx context.Context, c Configuration, in io.Reader, out, dups io.Writer) (sum summary, err error) {
	st, err := openStore(ctx, c)
	if err != nil {
		return sum, err
	}

	w := bufio.NewWriter(out)
	dispatcher := drum.DispatcherFuncs[fingerprint.Uint128, uint64, string]{
		OnUniqueKeyUpdate: func(_ fingerprint.Uint128, _ uint64, u string) {
			sum.Unique++
			fmt.Fprintln(w, u)
		},
		OnDuplicateKeyUpdate: func(_ fingerprint.Uint128, line uint64, u string) {
			sum.Duplicates++
			if c.PrintDups {
				fmt.Fprintf(dups, "%d: %s\n", line, u)
			}
		},
	}

	logger := c.logger()
	d, err := drum.New[fingerprint.Uint128, uint64, string](c.Dir,
		drum.Config[fingerprint.Uint128, uint64, string]{Store: st, Dispatcher: dispatcher},
		drum.WithNumBuckets(c.Buckets),
		drum.WithBucketBufferSize(c.BufferSize),
		drum.WithBucketByteSize(c.ByteSize),
		drum.WithLogger(logger),
	)
	if err != nil {
		return sum, err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = ferr
		}
		if c.ShowStats {
			logger.Info("done",
				"lines", sum.Lines,
				"invalid", sum.Invalid,
				"unique", sum.Unique,
				"duplicates", sum.Duplicates,
			)
		}
	}()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Lines++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		u, ok := canonical(raw, c.Normalize)
		if !ok {
			sum.Invalid++
			logger.Debug("skipping invalid url", "line", sum.Lines, "url", raw)
			continue
		}
		key := fingerprint.Default128.Sum128([]byte(u))
		if err := d.CheckUpdateWithAux(key, uint64(sum.Lines), u); err != nil {
			return sum, err
		}
	}
	return sum, sc.Err()
}

// canonical parses raw as an absolute URL. With normalize, scheme and host
// are lower-cased and the fragment is dropped.
func canonical(raw string, normalize bool) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	if !normalize {
		return raw, true
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}

func openStore(ctx context.Context, c Configuration) (seenStore, error) {
	if c.Store == "bolt" {
		if c.CacheSize > 0 {
			return cachestore.NewTyped[fingerprint.Uint128, uint64](boltstore.New(), c.CacheSize), nil
		}
		return boltstore.NewTyped[fingerprint.Uint128, uint64](), nil
	}

	comp, err := c.compression()
	if err != nil {
		return nil, err
	}
	opts := []memstore.Option{memstore.WithCompression(comp)}

	var bs blobstore.BlobStore
	switch c.Snapshot {
	case "local":
		bs = blobstore.NewLocalStore(filepath.Join(c.Dir, "snapshots"))
	case "minio":
		client, err := minio.New(c.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.MinioAccessKey, c.MinioSecretKey, ""),
			Secure: c.MinioSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		bs = miniostore.NewStore(client, c.Bucket, c.Prefix)
	case "s3":
		s, err := s3store.NewFromConfig(ctx, c.Bucket, c.Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		bs = s
	}
	if bs != nil {
		opts = append(opts, memstore.WithBlobStore(bs), memstore.WithBatchedSnapshots())
	}
	return memstore.NewTyped[fingerprint.Uint128, uint64](opts...), nil
}
