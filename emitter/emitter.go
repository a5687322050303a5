package emitter

import (
	"sync"

	"github.com/vinayprograms/uibridge/disposal"
)

// subscriber pairs a callback with the id used to remove it.
type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Emitter is an ordered, synchronous signal source.
// The zero value is not usable; create with New.
type Emitter[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	subs     []subscriber[T]
	disposed bool
}

// New creates an empty emitter.
func New[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

// Subscribe registers fn to be invoked on every subsequent Fire.
// The returned handle removes exactly this subscription; disposing it more
// than once is safe. On a disposed emitter, Subscribe returns an inert
// handle and fn is never invoked.
func (e *Emitter[T]) Subscribe(fn func(T)) disposal.Disposable {
	if fn == nil {
		return disposal.DisposeFunc(nil)
	}

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return disposal.DisposeFunc(nil)
	}
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})
	e.mu.Unlock()

	return disposal.DisposeFunc(func() { e.remove(id) })
}

// Fire invokes every current subscriber with v, synchronously and in
// subscription order. Subscribers registered or removed by a callback take
// effect for the next Fire, not the current one.
func (e *Emitter[T]) Fire(v T) {
	e.mu.Lock()
	subs := make([]subscriber[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of current subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Dispose drops all subscribers and marks the emitter inert.
// Safe to call more than once.
func (e *Emitter[T]) Dispose() {
	e.mu.Lock()
	e.disposed = true
	e.subs = nil
	e.mu.Unlock()
}

func (e *Emitter[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}
