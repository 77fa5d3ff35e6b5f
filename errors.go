package scopedio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
)

// IOError is returned when a file or stream operation fails.
type IOError struct {
	// Path is the path of the file the handle was opened on. Standard
	// streams use their diagnostic name ("<stdin>", "<stdout>", "<stderr>").
	Path string
	// Op is the operation that failed: "open", "read", "write", "seek",
	// "close", "truncate", "poll", "echo", or "cast".
	Op string
	// Err is the underlying error, categorized where possible. Test with
	// errors.Is against the Err* sentinels of this package.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Categorized failure causes. Acquisition failures surface the first three;
// the rest surface from individual operations. All are matched with
// errors.Is through [IOError].
var (
	// ErrNotExist indicates the path does not exist.
	ErrNotExist = fs.ErrNotExist

	// ErrPermission indicates the open or operation was not permitted.
	ErrPermission = fs.ErrPermission

	// ErrBusy indicates the file is already in use (locked or busy).
	ErrBusy = errors.New("already in use")

	// ErrDeviceFull indicates the device ran out of space.
	ErrDeviceFull = errors.New("device full")

	// ErrVanished indicates the peer end of the stream went away (broken
	// pipe or connection reset).
	ErrVanished = errors.New("resource vanished")

	// ErrUnsupported indicates the platform or handle does not support the
	// operation (for example echo control on a non-terminal).
	ErrUnsupported = errors.New("operation unsupported")

	// ErrClosed indicates the handle's descriptor has already been released.
	// Under the region discipline this is only reachable through an explicit
	// early close or a duplicate of a consumed handle.
	ErrClosed = errors.New("handle closed")

	// ErrUnrelatedRegion indicates a Duplicate target region that is neither
	// an ancestor nor a descendant of the handle's owning region.
	ErrUnrelatedRegion = errors.New("regions not related")

	// ErrEndOfStream is the end-of-input condition. It is [io.EOF], so
	// errors.Is matches it under either name.
	ErrEndOfStream = io.EOF
)

// catError attaches a category sentinel to an underlying cause without
// changing its message. errors.Is matches both the sentinel and the cause.
type catError struct {
	cat error
	err error
}

func (e *catError) Error() string { return e.err.Error() }

func (e *catError) Unwrap() error { return e.err }

func (e *catError) Is(target error) bool { return target == e.cat }

// categorize maps platform errors onto the package's error taxonomy. Errors
// that already match a category (os wraps fs.ErrNotExist etc.) pass through
// untouched; raw errnos from the syscall backend get a sentinel attached.
func categorize(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return err
	case errors.Is(err, syscall.ENOENT), errors.Is(err, syscall.ENOTDIR):
		return &catError{cat: ErrNotExist, err: err}
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return &catError{cat: ErrPermission, err: err}
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.ETXTBSY), errors.Is(err, syscall.EWOULDBLOCK):
		return &catError{cat: ErrBusy, err: err}
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		return &catError{cat: ErrDeviceFull, err: err}
	case errors.Is(err, syscall.EPIPE), errors.Is(err, syscall.ECONNRESET):
		return &catError{cat: ErrVanished, err: err}
	case errors.Is(err, syscall.ENOTSUP), errors.Is(err, syscall.ENOTTY):
		return &catError{cat: ErrUnsupported, err: err}
	default:
		return err
	}
}

// opErr wraps a failure in an [*IOError] after categorizing it. io.EOF is
// passed through bare: end of stream is a condition, not an operation
// failure, and callers match it with errors.Is(err, io.EOF).
func opErr(path, op string, err error) error {
	if err == nil {
		return nil
	}

	if err == io.EOF {
		return io.EOF
	}

	return &IOError{Path: path, Op: op, Err: categorize(err)}
}
