// Package bucketfile implements the on-disk layout of DRUM buckets.
//
// Every bucket owns two append-only files that are written in arrival order
// and read back in full during a merge:
//
//	bucket<N>.kv   [1-byte op][u64 key_len][key][u64 value_len][value] ...
//	bucket<N>.aux  [u64 aux_len][aux] ...
//
// Lengths are 8-byte little-endian integers (size_t on the 64-bit
// little-endian platforms the format was defined on). The layout is
// bit-exact and must not change.
//
// A Pair remembers the current write offset of each file so that repeated
// feeds append rather than overwrite. Bytes beyond the offsets are stale
// leftovers of earlier merge cycles and are never read.
package bucketfile
