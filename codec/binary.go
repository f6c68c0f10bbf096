package codec

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrInvalidLength is returned when fixed-width data has the wrong size.
var ErrInvalidLength = errors.New("codec: invalid length")

var binaryUnmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()

// Binary encodes strings and byte slices as their raw bytes, fixed-width
// numbers as big-endian integers, and types implementing
// encoding.BinaryMarshaler through their own method. Every other type goes
// through Fallback (Msgpack when nil).
//
// Big-endian integers keep the byte order of unsigned keys equal to their
// numeric order, which byte-ordered stores rely on for range scans.
type Binary struct {
	Fallback Codec
}

func (b Binary) fallback() Codec {
	if b.Fallback != nil {
		return b.Fallback
	}
	return Msgpack{}
}

// Name returns the unique name of the codec ("binary").
func (Binary) Name() string { return "binary" }

// Marshal encodes v.
func (b Binary) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return bytes.Clone(x), nil
	case bool:
		if x {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case uint8:
		return []byte{x}, nil
	case int8:
		return []byte{byte(x)}, nil
	case uint16:
		return binary.BigEndian.AppendUint16(nil, x), nil
	case int16:
		return binary.BigEndian.AppendUint16(nil, uint16(x)), nil
	case uint32:
		return binary.BigEndian.AppendUint32(nil, x), nil
	case int32:
		return binary.BigEndian.AppendUint32(nil, uint32(x)), nil
	case float32:
		return binary.BigEndian.AppendUint32(nil, math.Float32bits(x)), nil
	case uint64:
		return binary.BigEndian.AppendUint64(nil, x), nil
	case int64:
		return binary.BigEndian.AppendUint64(nil, uint64(x)), nil
	case uint:
		return binary.BigEndian.AppendUint64(nil, uint64(x)), nil
	case int:
		return binary.BigEndian.AppendUint64(nil, uint64(x)), nil
	case float64:
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(x)), nil
	case encoding.BinaryMarshaler:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil
		}
		return x.MarshalBinary()
	default:
		return b.fallback().Marshal(v)
	}
}

// Unmarshal decodes data into v, which must be a non-nil pointer.
func (b Binary) Unmarshal(data []byte, v any) error {
	switch p := v.(type) {
	case *string:
		*p = string(data)
	case *[]byte:
		*p = bytes.Clone(data)
	case *bool:
		if err := want(data, 1); err != nil {
			return err
		}
		*p = data[0] != 0
	case *uint8:
		if err := want(data, 1); err != nil {
			return err
		}
		*p = data[0]
	case *int8:
		if err := want(data, 1); err != nil {
			return err
		}
		*p = int8(data[0])
	case *uint16:
		if err := want(data, 2); err != nil {
			return err
		}
		*p = binary.BigEndian.Uint16(data)
	case *int16:
		if err := want(data, 2); err != nil {
			return err
		}
		*p = int16(binary.BigEndian.Uint16(data))
	case *uint32:
		if err := want(data, 4); err != nil {
			return err
		}
		*p = binary.BigEndian.Uint32(data)
	case *int32:
		if err := want(data, 4); err != nil {
			return err
		}
		*p = int32(binary.BigEndian.Uint32(data))
	case *float32:
		if err := want(data, 4); err != nil {
			return err
		}
		*p = math.Float32frombits(binary.BigEndian.Uint32(data))
	case *uint64:
		if err := want(data, 8); err != nil {
			return err
		}
		*p = binary.BigEndian.Uint64(data)
	case *int64:
		if err := want(data, 8); err != nil {
			return err
		}
		*p = int64(binary.BigEndian.Uint64(data))
	case *uint:
		if err := want(data, 8); err != nil {
			return err
		}
		*p = uint(binary.BigEndian.Uint64(data))
	case *int:
		if err := want(data, 8); err != nil {
			return err
		}
		*p = int(binary.BigEndian.Uint64(data))
	case *float64:
		if err := want(data, 8); err != nil {
			return err
		}
		*p = math.Float64frombits(binary.BigEndian.Uint64(data))
	case encoding.BinaryUnmarshaler:
		return p.UnmarshalBinary(data)
	default:
		if u, ok := pointerUnmarshaler(v); ok {
			return u.UnmarshalBinary(data)
		}
		return b.fallback().Unmarshal(data, v)
	}
	return nil
}

// pointerUnmarshaler handles **T where *T implements
// encoding.BinaryUnmarshaler, allocating the inner pointer when nil.
func pointerUnmarshaler(v any) (encoding.BinaryUnmarshaler, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Pointer || !elem.Type().Implements(binaryUnmarshalerType) {
		return nil, false
	}
	if elem.IsNil() {
		elem.Set(reflect.New(elem.Type().Elem()))
	}
	u, ok := elem.Interface().(encoding.BinaryUnmarshaler)
	return u, ok
}

func want(data []byte, n int) error {
	if len(data) != n {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidLength, n, len(data))
	}
	return nil
}
