package testutil

import "fmt"

// Model is an in-memory reference of the backing store. Apply predicts the
// callback DRUM dispatches for an operation, given that every operation of
// one merge pass is applied in issue order.
type Model[K comparable, V any] struct {
	Data   map[K]V
	append func(acc *V, in V) bool
	remove func(acc *V, in V) bool
	seen   map[K]bool
}

// NewModel creates an empty model. appendFn and removeFn mirror the merger
// and may be nil when no Append or Expel is applied.
func NewModel[K comparable, V any](appendFn, removeFn func(acc *V, in V) bool) *Model[K, V] {
	return &Model[K, V]{
		Data:   make(map[K]V),
		append: appendFn,
		remove: removeFn,
		seen:   make(map[K]bool),
	}
}

// NextPass starts a new merge pass: keys reported unique by a check stop
// counting as seen.
func (m *Model[K, V]) NextPass() {
	clear(m.seen)
}

// Get returns the modelled value of key.
func (m *Model[K, V]) Get(key K) (V, bool) {
	v, ok := m.Data[key]
	return v, ok
}

// Apply applies op ("check", "update", "check_update", "delete",
// "check_delete", "append" or "expel") and returns the expected event.
func (m *Model[K, V]) Apply(op string, key K, value V) Event[K, V, struct{}] {
	var zero V
	ev := Event[K, V, struct{}]{Key: key}

	switch op {
	case "check":
		if v, ok := m.Data[key]; ok {
			ev.Callback, ev.Value = DuplicateKeyCheck, v
		} else if m.seen[key] {
			ev.Callback = DuplicateKeyCheck
		} else {
			ev.Callback = UniqueKeyCheck
			m.seen[key] = true
		}
	case "update":
		ev.Callback, ev.Value = Update, value
		m.set(key, value)
	case "check_update":
		if m.exists(key) {
			ev.Callback = DuplicateKeyUpdate
		} else {
			ev.Callback = UniqueKeyUpdate
		}
		ev.Value = value
		m.set(key, value)
	case "delete":
		ev.Callback = Delete
		m.del(key)
	case "check_delete":
		if m.exists(key) {
			ev.Callback = DuplicateKeyDelete
		} else {
			ev.Callback = UniqueKeyDelete
		}
		m.del(key)
	case "append", "expel":
		acc, ok := m.Data[key]
		if !ok {
			acc = zero
		}
		var changed bool
		if op == "append" {
			changed = m.append(&acc, value)
		} else {
			changed = m.remove(&acc, value)
		}
		switch {
		case op == "append" && changed:
			ev.Callback = UniqueKeyAppend
		case op == "append":
			ev.Callback = DuplicateKeyAppend
		case changed:
			ev.Callback = UniqueKeyExpel
		default:
			ev.Callback = DuplicateKeyExpel
		}
		ev.Value = value
		if changed {
			m.set(key, acc)
		}
	default:
		panic(fmt.Sprintf("testutil: unknown op %q", op))
	}
	return ev
}

func (m *Model[K, V]) exists(key K) bool {
	_, ok := m.Data[key]
	return ok || m.seen[key]
}

func (m *Model[K, V]) set(key K, value V) {
	m.Data[key] = value
	delete(m.seen, key)
}

func (m *Model[K, V]) del(key K) {
	delete(m.Data, key)
	delete(m.seen, key)
}
