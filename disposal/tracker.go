package disposal

import "sync"

// Disposable is anything that can release its resources.
type Disposable interface {
	// Dispose releases the resource. Implementations must tolerate
	// repeated calls.
	Dispose()
}

// DisposeFunc is a function adapter for Disposable.
type DisposeFunc func()

// Dispose calls the function. A nil DisposeFunc is a no-op.
func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Tracker owns a set of release functions and runs them all exactly once
// on disposal. The zero value is not usable; create with NewTracker.
type Tracker struct {
	mu       sync.Mutex
	disposed bool
	releases []func()
}

// NewTracker creates an active tracker with no tracked resources.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add tracks a release function to be run on disposal.
// If the tracker is already disposed, release runs immediately so the
// resource is not leaked.
func (t *Tracker) Add(release func()) {
	if release == nil {
		return
	}

	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		release()
		return
	}
	t.releases = append(t.releases, release)
	t.mu.Unlock()
}

// AddDisposable tracks a Disposable's Dispose method.
func (t *Tracker) AddDisposable(d Disposable) {
	if d == nil {
		return
	}
	t.Add(d.Dispose)
}

// Disposed reports whether Dispose has been called.
func (t *Tracker) Disposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

// Dispose transitions the tracker to Disposed and runs every tracked
// release exactly once. Repeated calls are no-ops. Releases run outside
// the lock, so they may call back into the tracker.
func (t *Tracker) Dispose() {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.disposed = true
	releases := t.releases
	t.releases = nil
	t.mu.Unlock()

	for _, release := range releases {
		release()
	}
}
