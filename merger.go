package drum

import (
	"bytes"
	"reflect"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Merger combines values for Append and Expel. Both methods report whether
// acc changed; that decides between the Unique and Duplicate callbacks.
type Merger[V any] interface {
	Append(acc *V, in V) bool
	Remove(acc *V, in V) bool
}

// NoopMerger never changes the accumulator.
type NoopMerger[V any] struct{}

func (NoopMerger[V]) Append(*V, V) bool { return false }
func (NoopMerger[V]) Remove(*V, V) bool { return false }

// StringMerger concatenates on Append and removes every occurrence of the
// incoming string on Remove.
type StringMerger struct{}

func (StringMerger) Append(acc *string, in string) bool {
	if in == "" {
		return false
	}
	*acc += in
	return true
}

func (StringMerger) Remove(acc *string, in string) bool {
	if in == "" || !strings.Contains(*acc, in) {
		return false
	}
	*acc = strings.ReplaceAll(*acc, in, "")
	return true
}

// BytesMerger is StringMerger for byte slices.
type BytesMerger struct{}

func (BytesMerger) Append(acc *[]byte, in []byte) bool {
	if len(in) == 0 {
		return false
	}
	*acc = append(*acc, in...)
	return true
}

func (BytesMerger) Remove(acc *[]byte, in []byte) bool {
	if len(in) == 0 || !bytes.Contains(*acc, in) {
		return false
	}
	*acc = bytes.ReplaceAll(*acc, in, nil)
	return true
}

// SliceMerger appends elements on Append and drops every element equal to
// one of the incoming elements on Remove.
type SliceMerger[T comparable] struct{}

func (SliceMerger[T]) Append(acc *[]T, in []T) bool {
	if len(in) == 0 {
		return false
	}
	*acc = append(*acc, in...)
	return true
}

func (SliceMerger[T]) Remove(acc *[]T, in []T) bool {
	n := len(*acc)
	*acc = slices.DeleteFunc(*acc, func(v T) bool { return slices.Contains(in, v) })
	return len(*acc) != n
}

// SetMerger treats map[T]struct{} as a set: union on Append, difference on
// Remove.
type SetMerger[T comparable] struct{}

func (SetMerger[T]) Append(acc *map[T]struct{}, in map[T]struct{}) bool {
	changed := false
	for k := range in {
		if _, ok := (*acc)[k]; ok {
			continue
		}
		if *acc == nil {
			*acc = make(map[T]struct{}, len(in))
		}
		(*acc)[k] = struct{}{}
		changed = true
	}
	return changed
}

func (SetMerger[T]) Remove(acc *map[T]struct{}, in map[T]struct{}) bool {
	changed := false
	for k := range in {
		if _, ok := (*acc)[k]; ok {
			delete(*acc, k)
			changed = true
		}
	}
	return changed
}

// MapMerger merges maps key-wise: Append inserts or overwrites entries,
// Remove deletes the incoming keys.
type MapMerger[K comparable, T comparable] struct{}

func (MapMerger[K, T]) Append(acc *map[K]T, in map[K]T) bool {
	changed := false
	for k, v := range in {
		if old, ok := (*acc)[k]; ok && old == v {
			continue
		}
		if *acc == nil {
			*acc = make(map[K]T, len(in))
		}
		(*acc)[k] = v
		changed = true
	}
	return changed
}

func (MapMerger[K, T]) Remove(acc *map[K]T, in map[K]T) bool {
	changed := false
	for k := range in {
		if _, ok := (*acc)[k]; ok {
			delete(*acc, k)
			changed = true
		}
	}
	return changed
}

// BitmapMerger unions on Append and subtracts on Remove.
type BitmapMerger struct{}

func (BitmapMerger) Append(acc **roaring.Bitmap, in *roaring.Bitmap) bool {
	if in == nil || in.IsEmpty() {
		return false
	}
	if *acc == nil {
		*acc = roaring.New()
	}
	before := (*acc).GetCardinality()
	(*acc).Or(in)
	return (*acc).GetCardinality() != before
}

func (BitmapMerger) Remove(acc **roaring.Bitmap, in *roaring.Bitmap) bool {
	if *acc == nil || in == nil {
		return false
	}
	before := (*acc).GetCardinality()
	(*acc).AndNot(in)
	return (*acc).GetCardinality() != before
}

// DefaultMerger picks a merger for V: StringMerger, BytesMerger and
// BitmapMerger for their types, element-wise append/remove for other
// slices, key-wise union/difference for maps, and NoopMerger otherwise.
func DefaultMerger[V any]() Merger[V] {
	var zero V
	var m any
	switch any(zero).(type) {
	case string:
		m = StringMerger{}
	case []byte:
		m = BytesMerger{}
	case *roaring.Bitmap:
		m = BitmapMerger{}
	default:
		switch reflect.TypeFor[V]().Kind() {
		case reflect.String:
			return reflectStringMerger[V]{}
		case reflect.Slice:
			return reflectSliceMerger[V]{}
		case reflect.Map:
			return reflectMapMerger[V]{}
		}
		return NoopMerger[V]{}
	}
	return m.(Merger[V])
}

// reflectStringMerger is StringMerger for named string types.
type reflectStringMerger[V any] struct{}

func (reflectStringMerger[V]) Append(acc *V, in V) bool {
	av := reflect.ValueOf(acc).Elem()
	s := av.String()
	if !(StringMerger{}).Append(&s, reflect.ValueOf(in).String()) {
		return false
	}
	av.SetString(s)
	return true
}

func (reflectStringMerger[V]) Remove(acc *V, in V) bool {
	av := reflect.ValueOf(acc).Elem()
	s := av.String()
	if !(StringMerger{}).Remove(&s, reflect.ValueOf(in).String()) {
		return false
	}
	av.SetString(s)
	return true
}

type reflectSliceMerger[V any] struct{}

func (reflectSliceMerger[V]) Append(acc *V, in V) bool {
	iv := reflect.ValueOf(in)
	if iv.Len() == 0 {
		return false
	}
	av := reflect.ValueOf(acc).Elem()
	av.Set(reflect.AppendSlice(av, iv))
	return true
}

func (reflectSliceMerger[V]) Remove(acc *V, in V) bool {
	av := reflect.ValueOf(acc).Elem()
	iv := reflect.ValueOf(in)
	if av.Len() == 0 || iv.Len() == 0 {
		return false
	}
	out := reflect.MakeSlice(av.Type(), 0, av.Len())
	for i := 0; i < av.Len(); i++ {
		e := av.Index(i)
		drop := false
		for j := 0; j < iv.Len(); j++ {
			if reflect.DeepEqual(e.Interface(), iv.Index(j).Interface()) {
				drop = true
				break
			}
		}
		if !drop {
			out = reflect.Append(out, e)
		}
	}
	if out.Len() == av.Len() {
		return false
	}
	av.Set(out)
	return true
}

type reflectMapMerger[V any] struct{}

func (reflectMapMerger[V]) Append(acc *V, in V) bool {
	av := reflect.ValueOf(acc).Elem()
	iv := reflect.ValueOf(in)
	changed := false
	iter := iv.MapRange()
	for iter.Next() {
		k, v := iter.Key(), iter.Value()
		if old := av.MapIndex(k); old.IsValid() && reflect.DeepEqual(old.Interface(), v.Interface()) {
			continue
		}
		if av.IsNil() {
			av.Set(reflect.MakeMapWithSize(av.Type(), iv.Len()))
		}
		av.SetMapIndex(k, v)
		changed = true
	}
	return changed
}

func (reflectMapMerger[V]) Remove(acc *V, in V) bool {
	av := reflect.ValueOf(acc).Elem()
	iv := reflect.ValueOf(in)
	if av.IsNil() {
		return false
	}
	changed := false
	iter := iv.MapRange()
	for iter.Next() {
		if av.MapIndex(iter.Key()).IsValid() {
			av.SetMapIndex(iter.Key(), reflect.Value{})
			changed = true
		}
	}
	return changed
}
