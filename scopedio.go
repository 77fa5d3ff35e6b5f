// Package scopedio provides scope-bound, mode-tagged file handles.
//
// Handles are opened inside a [Region] and are closed automatically, exactly
// once, when that region completes - on normal return, on error, and on panic.
// Each handle carries its access mode as a type parameter, so read operations
// on write-only handles (and vice versa) are rejected at compile time, with no
// runtime capability check on the hot path.
//
// # Regions
//
// A region is a lexical resource scope. [Run] and [RunScope] open a region,
// invoke a body, and release every resource registered with the region in
// reverse registration order when the body finishes:
//
//	err := scopedio.Run(ctx, func(ctx context.Context, r *scopedio.Region) error {
//		h, err := scopedio.Open[scopedio.WriteOnly](r, "out.txt")
//		if err != nil {
//			return err
//		}
//		return scopedio.PutLine(h, "hello")
//	})
//	// out.txt is flushed and closed here, even if PutLine failed.
//
// Regions nest via [RunSub]. A handle opened in an ancestor region is usable
// from any descendant region; completing the descendant never closes the
// ancestor's handles. [Duplicate] re-homes a handle's close action into a
// related region without ever duplicating the close.
//
// # Access modes
//
// The four mode markers are [ReadOnly], [WriteOnly], [AppendOnly], and
// [ReadWrite]. Operations are generic over the capability they need:
// read-family operations require [Readable] (ReadOnly or ReadWrite),
// write-family operations require [Writable] (WriteOnly, AppendOnly, or
// ReadWrite). Mode-mismatched calls do not compile:
//
//	h, _ := scopedio.Open[scopedio.ReadOnly](r, "in.txt")
//	scopedio.PutString(h, "x") // compile error: ReadOnly is not Writable
//
// # Cancellation
//
// Blocking entry points take a context. Acquisition is atomic with respect
// to cancellation: once a descriptor has been acquired its close action is
// always registered, so cancellation can never leak a descriptor. Release
// actions themselves run with cancellation masked - the unwind loop never
// consults the context.
//
// # Errors
//
// Failed operations return an [*IOError] carrying the path, the operation
// name, and the underlying cause. Causes are categorized and inspectable via
// [errors.Is]: [ErrNotExist], [ErrPermission], [ErrBusy], [ErrDeviceFull],
// [ErrVanished], and [ErrUnsupported]. End of stream is reported as [io.EOF].
//
// # Concurrency
//
// The package adds no locking of its own around handle I/O. A handle may be
// used from multiple goroutines only if the underlying platform primitive is
// itself safe for concurrent use; buffered text operations are not. Region
// bookkeeping (registration, early release, duplication) is safe for
// concurrent use.
package scopedio

import (
	"context"
)

// Run opens a new region, invokes body with it, and releases every resource
// registered with the region when body returns, panics, or the surrounding
// context is cancelled before body starts.
//
// Release actions run in reverse registration order. A failing release never
// prevents the remaining releases from running; all release failures are
// joined with body's error (see [errors.Join]). A panic in body propagates
// after the region has unwound.
//
// The region is parented to the package root region, so the standard stream
// handles ([Stdin], [Stdout], [Stderr]) are usable inside body.
func Run(ctx context.Context, body func(context.Context, *Region) error) error {
	_, err := RunScope(ctx, func(ctx context.Context, r *Region) (struct{}, error) {
		return struct{}{}, body(ctx, r)
	})

	return err
}

// RunScope is [Run] for bodies that produce a value.
//
// The value is returned after the region has unwound. Handles must not be
// smuggled out through the result; a handle's descriptor is closed by the
// time RunScope returns.
func RunScope[T any](ctx context.Context, body func(context.Context, *Region) (T, error)) (T, error) {
	return runRegion(ctx, rootRegion, body)
}

// RunSub opens a child region of parent and runs body in it.
//
// Resources registered with parent (or any ancestor of parent) remain usable
// inside body. Resources registered with the child are released when body
// finishes, before RunSub returns; parent's resources are untouched.
func RunSub[T any](ctx context.Context, parent *Region, body func(context.Context, *Region) (T, error)) (T, error) {
	return runRegion(ctx, parent, body)
}
