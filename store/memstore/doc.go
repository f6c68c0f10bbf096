// Package memstore provides an ordered in-memory store.KV backed by a
// B-tree.
//
// Without a blob store the contents live only as long as the process. With
// WithBlobStore every Flush that follows a mutation writes a snapshot of the
// whole tree, optionally compressed, and Open loads the latest snapshot back.
//
// Snapshot layout:
//
//	[8]  magic "DRUMSNAP"
//	[1]  version
//	[1]  compression (0 none, 1 zstd, 2 lz4)
//	[..] payload: uvarint count, then count x (uvarint klen, key, uvarint vlen, value)
//	[4]  CRC32C (little-endian) of everything before it
//
// The payload is compressed as a whole.
package memstore
