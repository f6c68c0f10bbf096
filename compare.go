package drum

import (
	"bytes"
	"cmp"
	"reflect"
	"strings"
)

// defaultCompare returns a total order for K when one is known: built-in
// ordered kinds (including named types over them), []byte, and types with a
// Compare(K) int method such as fingerprint.Uint128.
func defaultCompare[K any]() (func(a, b K) int, bool) {
	if _, ok := any(*new(K)).(interface{ Compare(K) int }); ok {
		return func(a, b K) int {
			return any(a).(interface{ Compare(K) int }).Compare(b)
		}, true
	}

	t := reflect.TypeFor[K]()
	switch t.Kind() {
	case reflect.String:
		if t == reflect.TypeFor[string]() {
			return func(a, b K) int { return strings.Compare(any(a).(string), any(b).(string)) }, true
		}
		return func(a, b K) int {
			return strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
		}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if t == reflect.TypeFor[uint64]() {
			return func(a, b K) int { return cmp.Compare(any(a).(uint64), any(b).(uint64)) }, true
		}
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
		}, true
	case reflect.Float32, reflect.Float64:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return func(a, b K) int {
				return bytes.Compare(reflect.ValueOf(a).Bytes(), reflect.ValueOf(b).Bytes())
			}, true
		}
	}
	return nil, false
}
