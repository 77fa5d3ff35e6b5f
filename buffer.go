package scopedio

// ============================================================================
// Region-bound binary buffer I/O
// ============================================================================
//
// Buffers mirror the handle discipline: allocated inside a region, released
// (detached from their storage) when the region completes. A buffer and a
// handle used together need not share a region - both must merely be live at
// the call, which the region discipline already guarantees for anything
// reachable from the current scope (see DESIGN.md).

import (
	"errors"
	"io"
	"sync/atomic"
)

// ErrBufferFreed indicates a buffer whose owning region has completed.
var ErrBufferFreed = errors.New("buffer released")

// Buffer is a byte buffer bound to a region. After the owning region
// completes the buffer is detached from its storage and every operation on
// it fails with [ErrBufferFreed].
type Buffer struct {
	data  []byte
	freed atomic.Bool
}

// AllocBuffer allocates a size-byte buffer owned by region r.
func AllocBuffer(r *Region, size int) *Buffer {
	b := &Buffer{data: make([]byte, size)}

	r.Defer(func() error {
		b.freed.Store(true)
		b.data = nil

		return nil
	})

	return b
}

// Bytes returns the buffer's storage. Valid until the owning region
// completes; nil afterwards.
func (b *Buffer) Bytes() []byte {
	if b.freed.Load() {
		return nil
	}

	return b.data
}

// Len returns the buffer's size, or 0 after release.
func (b *Buffer) Len() int {
	return len(b.Bytes())
}

// clamp validates the buffer and bounds n to its size.
func (b *Buffer) clamp(n int) (int, error) {
	if b.freed.Load() {
		return 0, ErrBufferFreed
	}

	if n < 0 {
		n = 0
	}

	if n > len(b.data) {
		n = len(b.data)
	}

	return n, nil
}

// WriteBuf writes the first n bytes of b to the handle. Bytes pass through
// untranslated regardless of the handle's newline mode.
func WriteBuf[M Writable](h Handle[M], b *Buffer, n int) error {
	n, err := b.clamp(n)
	if err != nil {
		return opErr(h.h.path, "write", err)
	}

	if err := h.h.writeBytes(b.data[:n]); err != nil {
		return opErr(h.h.path, "write", err)
	}

	return nil
}

// ReadBuf reads until n bytes have been read or the stream ends, and returns
// the count. A short count signals end of stream; ReadBuf never returns
// [io.EOF].
func ReadBuf[M Readable](h Handle[M], b *Buffer, n int) (int, error) {
	n, err := b.clamp(n)
	if err != nil {
		return 0, opErr(h.h.path, "read", err)
	}

	total := 0

	for total < n {
		read, err := h.h.readInto(b.data[total:n])
		total += read

		if err == io.EOF {
			break
		}

		if err != nil {
			return total, opErr(h.h.path, "read", err)
		}
	}

	return total, nil
}

// ReadBufSome performs a single read of up to n bytes, blocking only until
// some input is available. Returns 0 at end of stream, never [io.EOF].
func ReadBufSome[M Readable](h Handle[M], b *Buffer, n int) (int, error) {
	n, err := b.clamp(n)
	if err != nil {
		return 0, opErr(h.h.path, "read", err)
	}

	read, err := h.h.readInto(b.data[:n])
	if err == io.EOF {
		return read, nil
	}

	if err != nil {
		return read, opErr(h.h.path, "read", err)
	}

	return read, nil
}

// ReadBufNonBlocking reads up to n bytes without blocking: if no input is
// available right now it returns 0 immediately. End of stream also returns
// 0; it is never reported as an error here.
func ReadBufNonBlocking[M Readable](h Handle[M], b *Buffer, n int) (int, error) {
	n, err := b.clamp(n)
	if err != nil {
		return 0, opErr(h.h.path, "read", err)
	}

	if n == 0 {
		return 0, nil
	}

	if h.h.readBuffered() == 0 {
		ready, err := sysPoll(h.h.fd, 0)
		if err != nil {
			return 0, opErr(h.h.path, "poll", err)
		}

		if !ready {
			return 0, nil
		}
	}

	read, err := h.h.readInto(b.data[:n])
	if err == io.EOF {
		return read, nil
	}

	if err != nil {
		return read, opErr(h.h.path, "read", err)
	}

	return read, nil
}

// WriteBufNonBlocking writes as much of the first n bytes as the descriptor
// accepts without blocking, and returns the count (possibly 0). Buffered
// handles flush pending output first, which may block; use [NoBuffering]
// handles for strict non-blocking behavior.
func WriteBufNonBlocking[M Writable](h Handle[M], b *Buffer, n int) (int, error) {
	n, err := b.clamp(n)
	if err != nil {
		return 0, opErr(h.h.path, "write", err)
	}

	if n == 0 {
		return 0, nil
	}

	if err := h.h.flush(); err != nil {
		return 0, opErr(h.h.path, "write", err)
	}

	ready, err := sysPollOut(h.h.fd, 0)
	if err != nil {
		return 0, opErr(h.h.path, "poll", err)
	}

	if !ready {
		return 0, nil
	}

	written, err := sysWriteSome(h.h.fd, b.data[:n])
	if err != nil {
		return written, opErr(h.h.path, "write", err)
	}

	return written, nil
}
