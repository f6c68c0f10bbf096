// Package bucket maps DRUM keys to bucket indexes.
//
// A bucket index is the top bits of a 64-bit quantity: the fingerprint of the
// serialized key for byte-like and structured keys, or the key itself for
// fixed-width unsigned integers, which are assumed to be well distributed in
// their high bits already. Each key-type family has its own Strategy; For
// picks the right one for a key type once, at construction time.
package bucket

import (
	"fmt"

	"github.com/hupe1980/drum/codec"
	"github.com/hupe1980/drum/fingerprint"
)

// Strategy computes the bucket of a key given the number of bucket bits.
// The result is always in [0, 2^bits-1].
type Strategy[K any] interface {
	Bucket(key K, bits uint) (int, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc[K any] func(key K, bits uint) (int, error)

// Bucket implements Strategy.
func (f StrategyFunc[K]) Bucket(key K, bits uint) (int, error) { return f(key, bits) }

// Top returns the top bits of v. Zero bits always yields bucket 0.
func Top(v uint64, bits uint) int {
	if bits == 0 {
		return 0
	}
	if bits > 63 {
		bits = 63
	}
	return int(v >> (64 - bits))
}

// Top32 returns the top bits of a 32-bit value.
func Top32(v uint32, bits uint) int {
	if bits == 0 {
		return 0
	}
	if bits > 32 {
		bits = 32
	}
	return int(v >> (32 - bits))
}

// Top128 returns the top bits of a 128-bit value.
func Top128(v fingerprint.Uint128, bits uint) int {
	return Top(v.Hi, bits)
}

// Uint32 buckets 32-bit integer keys by their own high bits.
type Uint32[K ~uint32] struct{}

// Bucket implements Strategy.
func (Uint32[K]) Bucket(key K, bits uint) (int, error) { return Top32(uint32(key), bits), nil }

// Uint64 buckets 64-bit integer keys by their own high bits.
type Uint64[K ~uint64] struct{}

// Bucket implements Strategy.
func (Uint64[K]) Bucket(key K, bits uint) (int, error) { return Top(uint64(key), bits), nil }

// Uint128 buckets 128-bit integer keys by their own high bits.
type Uint128 struct{}

// Bucket implements Strategy.
func (Uint128) Bucket(key fingerprint.Uint128, bits uint) (int, error) {
	return Top128(key, bits), nil
}

// String fingerprints the raw bytes of string keys.
type String[K ~string] struct {
	Fingerprinter fingerprint.Fingerprinter
}

// Bucket implements Strategy.
func (s String[K]) Bucket(key K, bits uint) (int, error) {
	return Top(fingerprinterOrDefault(s.Fingerprinter).Sum64([]byte(key)), bits), nil
}

// Serialized encodes keys with Codec and fingerprints the result.
type Serialized[K any] struct {
	Codec         codec.Codec
	Fingerprinter fingerprint.Fingerprinter
}

// Bucket implements Strategy.
func (s Serialized[K]) Bucket(key K, bits uint) (int, error) {
	data, err := codec.Encode(s.Codec, key)
	if err != nil {
		return 0, fmt.Errorf("bucket: encode key: %w", err)
	}
	return Top(fingerprinterOrDefault(s.Fingerprinter).Sum64(data), bits), nil
}

// For returns the strategy for K's type family: the integer strategies for
// uint32, uint64 and fingerprint.Uint128, String for string, and Serialized
// for everything else.
func For[K any](c codec.Codec, fp fingerprint.Fingerprinter) Strategy[K] {
	var zero K
	var s any
	switch any(zero).(type) {
	case uint32:
		s = Uint32[uint32]{}
	case uint64:
		s = Uint64[uint64]{}
	case fingerprint.Uint128:
		s = Uint128{}
	case string:
		s = String[string]{Fingerprinter: fp}
	default:
		return Serialized[K]{Codec: c, Fingerprinter: fp}
	}
	return s.(Strategy[K])
}

func fingerprinterOrDefault(fp fingerprint.Fingerprinter) fingerprint.Fingerprinter {
	if fp == nil {
		return fingerprint.Default
	}
	return fp
}
