// Package codec centralizes key, value and auxiliary payload encoding.
//
// DRUM treats codec selection as a breaking-change boundary: bucket files and
// store snapshots hold raw codec output, so bytes written by one codec cannot
// be read back by another.
package codec

import "fmt"

// Codec encodes/decodes values.
// Marshal must return a buffer owned by the caller.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "binary":
		return Binary{}, true
	case "msgpack":
		return Msgpack{}, true
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Encode marshals v with c, or with Default when c is nil.
func Encode[T any](c Codec, v T) ([]byte, error) {
	if c == nil {
		c = Default
	}
	return c.Marshal(v)
}

// Decode unmarshals data into a fresh T with c, or with Default when c is nil.
func Decode[T any](c Codec, data []byte) (T, error) {
	if c == nil {
		c = Default
	}
	var v T
	err := c.Unmarshal(data, &v)
	return v, err
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
