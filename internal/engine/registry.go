package engine

import "sync"

type subscription[S any] struct {
	id uint64
	fn func(S)
}

// registry keeps observers in registration order. Notification iterates a
// copy, so observers may unsubscribe (themselves or others) mid-notification.
type registry[S any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscription[S]
}

func (r *registry[S]) add(fn func(S)) (id uint64, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.subs = append(r.subs, subscription[S]{id: r.next, fn: fn})
	return r.next, len(r.subs)
}

// remove reports whether id was registered and the count left.
func (r *registry[S]) remove(id uint64) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.subs {
		if s.id == id {
			subs := make([]subscription[S], 0, len(r.subs)-1)
			subs = append(subs, r.subs[:i]...)
			r.subs = append(subs, r.subs[i+1:]...)
			return true, len(r.subs)
		}
	}
	return false, len(r.subs)
}

func (r *registry[S]) snapshot() []subscription[S] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs
}

func (r *registry[S]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *registry[S]) notify(state S) {
	for _, s := range r.snapshot() {
		s.fn(state)
	}
}
