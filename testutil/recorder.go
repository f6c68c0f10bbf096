package testutil

import "sync"

// Callback names, one per Dispatcher method.
const (
	UniqueKeyCheck     = "UniqueKeyCheck"
	DuplicateKeyCheck  = "DuplicateKeyCheck"
	Update             = "Update"
	UniqueKeyUpdate    = "UniqueKeyUpdate"
	DuplicateKeyUpdate = "DuplicateKeyUpdate"
	Delete             = "Delete"
	UniqueKeyDelete    = "UniqueKeyDelete"
	DuplicateKeyDelete = "DuplicateKeyDelete"
	UniqueKeyAppend    = "UniqueKeyAppend"
	DuplicateKeyAppend = "DuplicateKeyAppend"
	UniqueKeyExpel     = "UniqueKeyExpel"
	DuplicateKeyExpel  = "DuplicateKeyExpel"
)

// Event is one recorded callback. Value is the zero value for callbacks
// that do not receive one.
type Event[K, V, A any] struct {
	Callback string
	Key      K
	Value    V
	Aux      A
}

// Recorder is a dispatcher that records every callback in call order.
// It is safe for concurrent use.
type Recorder[K, V, A any] struct {
	mu     sync.Mutex
	events []Event[K, V, A]
}

// NewRecorder creates an empty Recorder.
func NewRecorder[K, V, A any]() *Recorder[K, V, A] {
	return &Recorder[K, V, A]{}
}

// Events returns a copy of the recorded events.
func (r *Recorder[K, V, A]) Events() []Event[K, V, A] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event[K, V, A](nil), r.events...)
}

// Callbacks returns the callback names in call order.
func (r *Recorder[K, V, A]) Callbacks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Callback
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder[K, V, A]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset drops all recorded events.
func (r *Recorder[K, V, A]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *Recorder[K, V, A]) record(cb string, key K, value V, aux A) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event[K, V, A]{Callback: cb, Key: key, Value: value, Aux: aux})
}

func (r *Recorder[K, V, A]) UniqueKeyCheck(key K, aux A) {
	var v V
	r.record(UniqueKeyCheck, key, v, aux)
}

func (r *Recorder[K, V, A]) DuplicateKeyCheck(key K, value V, aux A) {
	r.record(DuplicateKeyCheck, key, value, aux)
}

func (r *Recorder[K, V, A]) Update(key K, value V, aux A) {
	r.record(Update, key, value, aux)
}

func (r *Recorder[K, V, A]) UniqueKeyUpdate(key K, value V, aux A) {
	r.record(UniqueKeyUpdate, key, value, aux)
}

func (r *Recorder[K, V, A]) DuplicateKeyUpdate(key K, value V, aux A) {
	r.record(DuplicateKeyUpdate, key, value, aux)
}

func (r *Recorder[K, V, A]) Delete(key K, aux A) {
	var v V
	r.record(Delete, key, v, aux)
}

func (r *Recorder[K, V, A]) UniqueKeyDelete(key K, aux A) {
	var v V
	r.record(UniqueKeyDelete, key, v, aux)
}

func (r *Recorder[K, V, A]) DuplicateKeyDelete(key K, aux A) {
	var v V
	r.record(DuplicateKeyDelete, key, v, aux)
}

func (r *Recorder[K, V, A]) UniqueKeyAppend(key K, value V, aux A) {
	r.record(UniqueKeyAppend, key, value, aux)
}

func (r *Recorder[K, V, A]) DuplicateKeyAppend(key K, value V, aux A) {
	r.record(DuplicateKeyAppend, key, value, aux)
}

func (r *Recorder[K, V, A]) UniqueKeyExpel(key K, value V, aux A) {
	r.record(UniqueKeyExpel, key, value, aux)
}

func (r *Recorder[K, V, A]) DuplicateKeyExpel(key K, value V, aux A) {
	r.record(DuplicateKeyExpel, key, value, aux)
}
