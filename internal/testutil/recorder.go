package testutil

import "sync"

// Recorder is an observer that keeps every state it is notified with.
//
//	rec := testutil.NewRecorder[*imageselection.State]()
//	unsubscribe := eng.Subscribe(rec.Observe)
type Recorder[S any] struct {
	mu     sync.Mutex
	states []S
}

// NewRecorder creates an empty recorder.
func NewRecorder[S any]() *Recorder[S] {
	return &Recorder[S]{}
}

// Observe records s. Pass it to Subscribe.
func (r *Recorder[S]) Observe(s S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

// States returns a copy of the recorded states in notification order.
func (r *Recorder[S]) States() []S {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]S, len(r.states))
	copy(out, r.states)
	return out
}

// Len returns the number of notifications seen.
func (r *Recorder[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Last returns the latest recorded state and whether there was one.
func (r *Recorder[S]) Last() (S, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero S
	if len(r.states) == 0 {
		return zero, false
	}
	return r.states[len(r.states)-1], true
}
