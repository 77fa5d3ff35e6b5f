package scopedio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Handle is an open file or stream, tagged with its access mode M and owned
// by the region that opened it.
//
// A Handle is only obtainable from [Open], [OpenBinary], [OpenTemp],
// [WithFile], the standard streams, [Cast], or [Duplicate]. Its descriptor is
// closed exactly once, when the owning region completes (write-capable
// handles are flushed first). The zero Handle is invalid.
//
// Handle values are cheap to copy; copies share the same underlying
// descriptor and buffers.
type Handle[M Mode] struct {
	h *handle
}

// handle is the untyped core shared by every Handle instantiation. The mode
// tag lives only in the type system; the core carries the resolved modeSpec
// for diagnostics and advisory checks.
type handle struct {
	fd   sysFD
	path string
	spec modeSpec

	owner *Region
	rel   *Releaser

	// closed is advisory: it backs IsOpen/IsClosed and String. Operations
	// do not consult it; a misused closed handle surfaces as a descriptor
	// error from the backend.
	closed atomic.Bool

	binary bool
	enc    Encoding
	nl     NewlineMode

	bufMode BufferMode

	// Reader state. peek holds pushed-back bytes (LookAhead, IsEOF) and is
	// consumed before br; br exists unless buffering is off.
	peek []byte
	br   *bufio.Reader

	// Writer state. bw exists unless buffering is off; line mode flushes
	// after any write containing a newline.
	bw *bufio.Writer
}

// Open opens path in the access mode given by the type argument and
// registers the close with region r.
//
// The concrete open flags follow the mode marker: [ReadOnly] requires the
// file to exist, [WriteOnly] creates/truncates, [AppendOnly] creates and
// appends, [ReadWrite] creates without truncating. See the Option functions
// for permissions and exclusive creation.
//
// On failure nothing is registered and the error is an [*IOError] with a
// categorized cause ([ErrNotExist], [ErrPermission], [ErrBusy]).
//
// There is no cancellation window between acquiring the descriptor and
// registering its close: Open takes no context, and the registration cannot
// fail on a live region. A caller racing Open against its own region's
// completion is misusing the scope discipline; Open closes the descriptor
// and panics rather than leak it.
func Open[M Mode](r *Region, path string, opts ...Option) (Handle[M], error) {
	return openMode[M](r, path, false, opts)
}

// OpenBinary is [Open] without newline translation and with byte-transparent
// text operations. Use it for data where 0x0A/0x0D must pass through
// untouched on every platform.
func OpenBinary[M Mode](r *Region, path string, opts ...Option) (Handle[M], error) {
	return openMode[M](r, path, true, opts)
}

func openMode[M Mode](r *Region, path string, binary bool, opts []Option) (Handle[M], error) {
	spec := specFor[M]()
	cfg := applyOptions(opts)

	flags := spec.flags
	if cfg.exclusive {
		flags |= flagExclusive
	}

	if cfg.noCreate {
		flags &^= flagCreate
	}

	fd, err := sysOpen(path, flags, cfg.perm)
	if err != nil {
		return Handle[M]{}, opErr(path, "open", err)
	}

	h := newHandle(fd, path, spec, binary, cfg)

	if !registerClose(r, h) {
		_ = sysClose(fd)
		panic("scopedio: Open on completed region")
	}

	h.owner = r

	return Handle[M]{h: h}, nil
}

// newHandle builds the handle core and its buffering state.
func newHandle(fd sysFD, path string, spec modeSpec, binary bool, cfg openOptions) *handle {
	h := &handle{
		fd:     fd,
		path:   path,
		spec:   spec,
		binary: binary,
		enc:    UTF8,
		nl:     NativeNewlineMode(),
	}

	if binary {
		h.nl = NoNewlineTranslation()
	}

	if cfg.enc != nil {
		h.enc = *cfg.enc
	}

	if cfg.nl != nil && !binary {
		h.nl = *cfg.nl
	}

	mode := DefaultBuffering()
	if cfg.buf != nil {
		mode = *cfg.buf
	}

	h.applyBuffering(mode)

	return h
}

// registerClose attaches the handle's close action to r. Returns false if r
// already completed (the caller must dispose of the descriptor itself).
func registerClose(r *Region, h *handle) bool {
	rel := &Releaser{fn: h.closeNow}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return false
	}

	r.entries = append(r.entries, rel)
	r.mu.Unlock()

	h.rel = rel

	return true
}

// closeNow is the handle's release action: flush buffered writes, then close
// the descriptor. The descriptor is released even if the flush fails; both
// failures surface.
func (h *handle) closeNow() error {
	var flushErr error
	if h.bw != nil {
		flushErr = h.bw.Flush()
	}

	closeErr := sysClose(h.fd)

	h.closed.Store(true)

	if flushErr == nil && closeErr == nil {
		return nil
	}

	return opErr(h.path, "close", errors.Join(flushErr, closeErr))
}

// Close releases the handle early: flush, close the descriptor, and remove
// the close action from the owning region's unwind. At-most-once: closing an
// already-closed handle is a no-op returning nil.
func (h Handle[M]) Close() error {
	return h.h.rel.Release()
}

// WithFile opens path in a fresh region, hands the handle to body, and
// closes it when body finishes. The handle cannot outlive body: by the time
// WithFile returns its descriptor has been released.
func WithFile[M Mode, T any](ctx context.Context, path string, body func(context.Context, *Region, Handle[M]) (T, error), opts ...Option) (T, error) {
	return RunScope(ctx, func(ctx context.Context, r *Region) (T, error) {
		h, err := Open[M](r, path, opts...)
		if err != nil {
			var zero T

			return zero, err
		}

		return body(ctx, r, h)
	})
}

// Duplicate re-homes the handle's close action into region to, which must be
// an ancestor or descendant of the current owner. The returned handle shares
// the descriptor with h and stays usable after the old owner completes; the
// close fires exactly once, when to completes.
func Duplicate[M Mode](h Handle[M], to *Region) (Handle[M], error) {
	core := h.h

	if !core.owner.related(to) {
		return Handle[M]{}, opErr(core.path, "duplicate", ErrUnrelatedRegion)
	}

	// Consume the old registration first so a failure cannot yield two live
	// close actions for one descriptor.
	if !core.rel.detach() {
		return Handle[M]{}, opErr(core.path, "duplicate", ErrClosed)
	}

	if !registerClose(to, core) {
		// Target region completed concurrently. The old registration is
		// already consumed; close now rather than leak.
		_ = core.closeNow()

		return Handle[M]{}, opErr(core.path, "duplicate", ErrClosed)
	}

	core.owner = to

	return Handle[M]{h: core}, nil
}

// Cast re-tags the handle with mode To, without reopening or re-registering.
// It succeeds only if the platform confirms the descriptor supports every
// capability of To; otherwise it returns [ErrUnsupported].
//
// Cast exists for the standard streams, whose default tags are conservative,
// but is safe on any handle: the returned handle shares the descriptor and
// the original registration, so the close still fires exactly once.
func Cast[To Mode, From Mode](h Handle[From]) (Handle[To], error) {
	spec := specFor[To]()

	readable, writable, err := sysAccess(h.h.fd)
	if err != nil {
		return Handle[To]{}, opErr(h.h.path, "cast", err)
	}

	if (spec.readable && !readable) || (spec.writable && !writable) {
		return Handle[To]{}, opErr(h.h.path, "cast", ErrUnsupported)
	}

	return Handle[To]{h: h.h}, nil
}

// Fd returns the underlying descriptor value for interop with code that
// needs it. The descriptor is still owned by the region; do not close it.
func (h Handle[M]) Fd() uintptr {
	return sysFdValue(h.h.fd)
}

// Path returns the path the handle was opened on. Standard streams report
// their diagnostic name.
func (h Handle[M]) Path() string {
	return h.h.path
}

// String describes the handle for diagnostics.
func (h Handle[M]) String() string {
	if h.h == nil {
		return "{invalid handle}"
	}

	state := ""
	if h.h.closed.Load() {
		state = "closed "
	}

	return fmt.Sprintf("{%shandle: %s (%s)}", state, h.h.path, h.h.spec.name)
}

// ============================================================================
// Advisory properties
// ============================================================================
//
// These exist for tests and diagnostics only. They always agree with the
// static mode tag; the operation hot paths never consult them.

// IsOpen reports whether the descriptor has not been released yet.
func (h Handle[M]) IsOpen() bool { return !h.h.closed.Load() }

// IsClosed reports whether the descriptor has been released.
func (h Handle[M]) IsClosed() bool { return h.h.closed.Load() }

// IsReadable reports whether the handle's mode is read-capable.
func (h Handle[M]) IsReadable() bool { return h.h.spec.readable }

// IsWritable reports whether the handle's mode is write-capable.
func (h Handle[M]) IsWritable() bool { return h.h.spec.writable }

// IsSeekable reports whether the descriptor supports repositioning (regular
// files do, pipes and terminals do not).
func (h Handle[M]) IsSeekable() bool {
	_, err := sysSeek(h.h.fd, 0, seekCurrent)

	return err == nil
}
