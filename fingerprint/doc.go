// Package fingerprint computes fixed-width fingerprints of byte sequences.
//
// Fingerprints are used to spread keys across DRUM buckets. They are not
// cryptographic and they are never used for identity comparison: two keys
// with the same fingerprint simply land in the same bucket.
//
// # Rabin fingerprints
//
// Rabin64 treats its input as a polynomial over GF(2) and reduces it modulo
// an irreducible polynomial of degree 64. Eight 256-entry tables are built
// once at construction, one per byte of the 64-bit accumulator, so the hot
// loop is a table lookup and an xor per input byte:
//
//	fp := fingerprint.Default.Sum64([]byte("http://example.com/"))
//
// Rabin128 pairs two Rabin64 engines over independent polynomials.
//
// # Alternatives
//
// Any type implementing Fingerprinter can be plugged into bucketing; Murmur3
// wraps github.com/spaolacci/murmur3 for callers that prefer it.
package fingerprint
