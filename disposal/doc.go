// Package disposal provides resource lifecycle tracking for transport bridges.
//
// # Overview
//
// A Tracker collects release functions for resources owned by a component
// (listener registrations, signal emitter teardown) and runs all of them
// exactly once when the component is disposed. The transition is one-way:
// Active -> Disposed, with no intermediate states.
//
// # Usage
//
//	tracker := disposal.NewTracker()
//	tracker.Add(func() { sub.Unsubscribe() })
//	tracker.Add(emitter.Dispose)
//
//	// Later, release everything. Safe to call more than once.
//	tracker.Dispose()
//
// # Semantics
//
//   - Dispose runs every tracked release exactly once. Repeated calls are
//     no-ops.
//   - Releases run outside the tracker's lock, so a release may safely call
//     back into the tracker.
//   - Add on a disposed tracker runs the release immediately: a resource
//     created in a race with disposal is released rather than leaked.
package disposal
