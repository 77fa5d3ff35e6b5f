package scopedio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Region is one lexical resource-owning scope.
//
// A Region is created by [Run], [RunScope], or [RunSub] and handed to the
// scope body; it must not be retained past the body. Resources register
// release actions via [Region.Defer] (done implicitly by [Open] and friends)
// and are released in reverse registration order when the scope body
// finishes.
//
// Region bookkeeping is safe for concurrent use, so a body may register
// resources from goroutines it spawns - provided those goroutines are joined
// before the body returns. The release loop runs only after the body's own
// execution has finished; it does not race in-flight body work that the body
// failed to join.
type Region struct {
	parent *Region

	mu      sync.Mutex
	entries []*Releaser
	closed  bool
}

// Releaser is the registration token for a single release action.
//
// The action runs at most once: either early via [Releaser.Release], or at
// region unwind, whichever comes first.
type Releaser struct {
	fn   func() error
	done atomic.Bool
}

// rootRegion is the ancestor of every region created by this package. It is
// never unwound; it owns the standard stream handles.
var rootRegion = &Region{}

// Defer registers a release action with the region and returns its token.
//
// Actions run in reverse registration order at region unwind. Defer panics
// if the region has already completed: registering into a dead scope is a
// programming error that would silently leak the resource.
func (r *Region) Defer(release func() error) *Releaser {
	rel := &Releaser{fn: release}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		panic("scopedio: Defer on completed region")
	}

	r.entries = append(r.entries, rel)
	r.mu.Unlock()

	return rel
}

// Release runs the release action now, removing it from the region's unwind.
//
// At-most-once: if the action already ran (early or at unwind), Release is a
// no-op returning nil.
func (t *Releaser) Release() error {
	if t == nil || !t.done.CompareAndSwap(false, true) {
		return nil
	}

	return t.fn()
}

// detach marks the token as consumed without running the action.
//
// Used by [Duplicate] to transfer ownership of the release action to another
// region. Returns false if the action already ran.
func (t *Releaser) detach() bool {
	return t.done.CompareAndSwap(false, true)
}

// isAncestorOf reports whether r is an ancestor-or-self of other.
func (r *Region) isAncestorOf(other *Region) bool {
	for s := other; s != nil; s = s.parent {
		if s == r {
			return true
		}
	}

	return false
}

// related reports whether one of r, other is an ancestor-or-self of the
// other. This is the validity condition for [Duplicate].
func (r *Region) related(other *Region) bool {
	return r.isAncestorOf(other) || other.isAncestorOf(r)
}

// unwind marks the region closed and runs every registered release action in
// reverse registration order.
//
// Each action runs exactly once regardless of earlier failures; all failures
// are joined. The loop deliberately takes no context: releases are masked
// from cancellation so an interrupt cannot leak descriptors mid-unwind.
func (r *Region) unwind() error {
	r.mu.Lock()
	r.closed = true
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()

	var err error

	for i := len(entries) - 1; i >= 0; i-- {
		err = errors.Join(err, entries[i].Release())
	}

	return err
}

// runRegion opens a child region of parent and executes body in it.
//
// The unwind runs on every exit path: normal return, body error, and body
// panic (the panic is re-raised after the unwind). An already-cancelled
// context prevents body from starting; cancellation observed by body is
// body's own concern and does not short-circuit the unwind.
func runRegion[T any](ctx context.Context, parent *Region, body func(context.Context, *Region) (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r := &Region{parent: parent}

	completed := false

	defer func() {
		if !completed {
			// Unwinding due to a panic in body. The release errors have no
			// error return to land in; the panic wins. Releases still run.
			_ = r.unwind()
		}
	}()

	result, err := body(ctx, r)

	completed = true

	if relErr := r.unwind(); relErr != nil {
		err = errors.Join(err, relErr)
	}

	if err != nil {
		return zero, err
	}

	return result, nil
}
