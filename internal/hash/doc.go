// Package hash provides checksums for persisted DRUM artifacts.
//
// Store snapshots end with a CRC32-Castagnoli (CRC32C) footer over their
// payload so that truncated or corrupted snapshots are rejected on load
// instead of silently restoring a partial key space:
//
//	sum := hash.CRC32C(payload)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
//
// Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when available.
package hash
