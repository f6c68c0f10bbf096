package drum

import "fmt"

// Dispatcher receives the resolved operations of a merge, one call per
// operation, in the order the operations were issued.
type Dispatcher[K, V, A any] interface {
	UniqueKeyCheck(key K, aux A)
	// DuplicateKeyCheck receives the value currently in the store.
	DuplicateKeyCheck(key K, value V, aux A)
	Update(key K, value V, aux A)
	UniqueKeyUpdate(key K, value V, aux A)
	DuplicateKeyUpdate(key K, value V, aux A)
	Delete(key K, aux A)
	UniqueKeyDelete(key K, aux A)
	DuplicateKeyDelete(key K, aux A)
	UniqueKeyAppend(key K, value V, aux A)
	DuplicateKeyAppend(key K, value V, aux A)
	UniqueKeyExpel(key K, value V, aux A)
	DuplicateKeyExpel(key K, value V, aux A)
}

// NoopDispatcher ignores every result. Use it when only the side effects on
// the store matter.
type NoopDispatcher[K, V, A any] struct{}

var _ Dispatcher[string, string, string] = NoopDispatcher[string, string, string]{}

func (NoopDispatcher[K, V, A]) UniqueKeyCheck(K, A)        {}
func (NoopDispatcher[K, V, A]) DuplicateKeyCheck(K, V, A)  {}
func (NoopDispatcher[K, V, A]) Update(K, V, A)             {}
func (NoopDispatcher[K, V, A]) UniqueKeyUpdate(K, V, A)    {}
func (NoopDispatcher[K, V, A]) DuplicateKeyUpdate(K, V, A) {}
func (NoopDispatcher[K, V, A]) Delete(K, A)                {}
func (NoopDispatcher[K, V, A]) UniqueKeyDelete(K, A)       {}
func (NoopDispatcher[K, V, A]) DuplicateKeyDelete(K, A)    {}
func (NoopDispatcher[K, V, A]) UniqueKeyAppend(K, V, A)    {}
func (NoopDispatcher[K, V, A]) DuplicateKeyAppend(K, V, A) {}
func (NoopDispatcher[K, V, A]) UniqueKeyExpel(K, V, A)     {}
func (NoopDispatcher[K, V, A]) DuplicateKeyExpel(K, V, A)  {}

// DispatcherFuncs adapts plain functions to a Dispatcher. Nil fields are
// skipped.
type DispatcherFuncs[K, V, A any] struct {
	OnUniqueKeyCheck     func(key K, aux A)
	OnDuplicateKeyCheck  func(key K, value V, aux A)
	OnUpdate             func(key K, value V, aux A)
	OnUniqueKeyUpdate    func(key K, value V, aux A)
	OnDuplicateKeyUpdate func(key K, value V, aux A)
	OnDelete             func(key K, aux A)
	OnUniqueKeyDelete    func(key K, aux A)
	OnDuplicateKeyDelete func(key K, aux A)
	OnUniqueKeyAppend    func(key K, value V, aux A)
	OnDuplicateKeyAppend func(key K, value V, aux A)
	OnUniqueKeyExpel     func(key K, value V, aux A)
	OnDuplicateKeyExpel  func(key K, value V, aux A)
}

var _ Dispatcher[string, string, string] = DispatcherFuncs[string, string, string]{}

func (f DispatcherFuncs[K, V, A]) UniqueKeyCheck(key K, aux A) {
	if f.OnUniqueKeyCheck != nil {
		f.OnUniqueKeyCheck(key, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) DuplicateKeyCheck(key K, value V, aux A) {
	if f.OnDuplicateKeyCheck != nil {
		f.OnDuplicateKeyCheck(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) Update(key K, value V, aux A) {
	if f.OnUpdate != nil {
		f.OnUpdate(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) UniqueKeyUpdate(key K, value V, aux A) {
	if f.OnUniqueKeyUpdate != nil {
		f.OnUniqueKeyUpdate(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) DuplicateKeyUpdate(key K, value V, aux A) {
	if f.OnDuplicateKeyUpdate != nil {
		f.OnDuplicateKeyUpdate(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) Delete(key K, aux A) {
	if f.OnDelete != nil {
		f.OnDelete(key, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) UniqueKeyDelete(key K, aux A) {
	if f.OnUniqueKeyDelete != nil {
		f.OnUniqueKeyDelete(key, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) DuplicateKeyDelete(key K, aux A) {
	if f.OnDuplicateKeyDelete != nil {
		f.OnDuplicateKeyDelete(key, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) UniqueKeyAppend(key K, value V, aux A) {
	if f.OnUniqueKeyAppend != nil {
		f.OnUniqueKeyAppend(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) DuplicateKeyAppend(key K, value V, aux A) {
	if f.OnDuplicateKeyAppend != nil {
		f.OnDuplicateKeyAppend(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) UniqueKeyExpel(key K, value V, aux A) {
	if f.OnUniqueKeyExpel != nil {
		f.OnUniqueKeyExpel(key, value, aux)
	}
}

func (f DispatcherFuncs[K, V, A]) DuplicateKeyExpel(key K, value V, aux A) {
	if f.OnDuplicateKeyExpel != nil {
		f.OnDuplicateKeyExpel(key, value, aux)
	}
}

// dispatch invokes the callback for r's (op, result) pair.
func dispatch[K, V, A any](d Dispatcher[K, V, A], r *record[K, V], aux A) {
	switch {
	case r.op == OpCheck && r.result == Unique:
		d.UniqueKeyCheck(r.key, aux)
	case r.op == OpCheck && r.result == Duplicate:
		d.DuplicateKeyCheck(r.key, r.value, aux)
	case r.op == OpUpdate:
		d.Update(r.key, r.value, aux)
	case r.op == OpCheckUpdate && r.result == Unique:
		d.UniqueKeyUpdate(r.key, r.value, aux)
	case r.op == OpCheckUpdate && r.result == Duplicate:
		d.DuplicateKeyUpdate(r.key, r.value, aux)
	case r.op == OpDelete:
		d.Delete(r.key, aux)
	case r.op == OpCheckDelete && r.result == Unique:
		d.UniqueKeyDelete(r.key, aux)
	case r.op == OpCheckDelete && r.result == Duplicate:
		d.DuplicateKeyDelete(r.key, aux)
	case r.op == OpAppend && r.result == Unique:
		d.UniqueKeyAppend(r.key, r.value, aux)
	case r.op == OpAppend && r.result == Duplicate:
		d.DuplicateKeyAppend(r.key, r.value, aux)
	case r.op == OpExpel && r.result == Unique:
		d.UniqueKeyExpel(r.key, r.value, aux)
	case r.op == OpExpel && r.result == Duplicate:
		d.DuplicateKeyExpel(r.key, r.value, aux)
	default:
		panic(fmt.Sprintf("drum: no dispatch for %s/%s", r.op, r.result))
	}
}
