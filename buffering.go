package scopedio

// ============================================================================
// Buffering modes and the internal buffered read/write plumbing
// ============================================================================

import (
	"bufio"
	"bytes"
)

// BufferKind selects a buffering strategy.
type BufferKind uint8

const (
	// BufferNone performs one backend call per operation. Reads still
	// support one-rune pushback for LookAhead.
	BufferNone BufferKind = iota
	// BufferLine buffers writes and flushes whenever a newline is written.
	// Reads are block-buffered.
	BufferLine
	// BufferBlock buffers reads and writes in fixed-size blocks.
	BufferBlock
)

// BufferMode is a handle's buffering configuration.
type BufferMode struct {
	Kind BufferKind
	// Size is the block size in bytes; 0 means the default. Ignored by
	// BufferNone.
	Size int
}

// defaultBufSize matches bufio's default.
const defaultBufSize = 4096

// DefaultBuffering is the mode handles start in: block buffering with the
// default size.
func DefaultBuffering() BufferMode {
	return BufferMode{Kind: BufferBlock}
}

// NoBuffering returns the unbuffered mode.
func NoBuffering() BufferMode {
	return BufferMode{Kind: BufferNone}
}

// LineBuffering returns the line-buffered mode.
func LineBuffering() BufferMode {
	return BufferMode{Kind: BufferLine}
}

// BlockBuffering returns block buffering with the given size (0 for the
// default).
func BlockBuffering(size int) BufferMode {
	return BufferMode{Kind: BufferBlock, Size: size}
}

// SetBuffering changes the handle's buffering mode.
//
// Pending writes are flushed first. Bytes already read ahead into the old
// read buffer are carried over, so no input is lost.
func (h Handle[M]) SetBuffering(mode BufferMode) error {
	if err := h.h.flush(); err != nil {
		return opErr(h.h.path, "write", err)
	}

	h.h.applyBuffering(mode)

	return nil
}

// Buffering returns the handle's buffering mode.
func (h Handle[M]) Buffering() BufferMode {
	return h.h.bufMode
}

// Flush writes out any buffered output. A no-op in unbuffered mode.
func Flush[M Writable](h Handle[M]) error {
	if err := h.h.flush(); err != nil {
		return opErr(h.h.path, "write", err)
	}

	return nil
}

// rawReader adapts the descriptor to io.Reader for bufio.
type rawReader struct {
	h *handle
}

func (r rawReader) Read(p []byte) (int, error) {
	return sysRead(r.h.fd, p)
}

// rawWriter adapts the descriptor to io.Writer for bufio.
type rawWriter struct {
	h *handle
}

func (w rawWriter) Write(p []byte) (int, error) {
	return sysWrite(w.h.fd, p)
}

// logicalReader reads through the handle's pushback and read buffer. It is
// what fmt.Fscan and GetContents consume.
type logicalReader struct {
	h *handle
}

func (r logicalReader) Read(p []byte) (int, error) {
	return r.h.readInto(p)
}

// applyBuffering rebuilds the bufio layers for mode. Any bytes sitting in
// the old read buffer move to the pushback slice so they are not lost.
// Callers flush pending writes first.
func (h *handle) applyBuffering(mode BufferMode) {
	if h.br != nil {
		if n := h.br.Buffered(); n > 0 {
			carried := make([]byte, n)
			_, _ = h.br.Read(carried)
			h.peek = append(h.peek, carried...)
		}
	}

	size := mode.Size
	if size <= 0 {
		size = defaultBufSize
	}

	h.bufMode = mode
	h.br = nil
	h.bw = nil

	if mode.Kind == BufferNone {
		return
	}

	if h.spec.readable {
		h.br = bufio.NewReaderSize(rawReader{h: h}, size)
	}

	if h.spec.writable {
		h.bw = bufio.NewWriterSize(rawWriter{h: h}, size)
	}
}

// readByte produces the next input byte: pushback first, then the read
// buffer, then the descriptor.
func (h *handle) readByte() (byte, error) {
	if len(h.peek) > 0 {
		b := h.peek[0]
		h.peek = h.peek[1:]

		return b, nil
	}

	if h.br != nil {
		return h.br.ReadByte()
	}

	var one [1]byte

	_, err := sysRead(h.fd, one[:])
	if err != nil {
		return 0, err
	}

	return one[0], nil
}

// unread pushes bytes back onto the input; the next readByte returns p[0].
func (h *handle) unread(p []byte) {
	if len(p) == 0 {
		return
	}

	h.peek = append(append(make([]byte, 0, len(p)+len(h.peek)), p...), h.peek...)
}

// readInto drains the pushback and read buffer before touching the
// descriptor. Returns (0, io.EOF) at end of stream.
func (h *handle) readInto(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(h.peek) > 0 {
		n := copy(p, h.peek)
		h.peek = h.peek[n:]

		return n, nil
	}

	if h.br != nil {
		return h.br.Read(p)
	}

	return sysRead(h.fd, p)
}

// readBuffered reports how many input bytes are buffered ahead of the
// logical position.
func (h *handle) readBuffered() int {
	n := len(h.peek)
	if h.br != nil {
		n += h.br.Buffered()
	}

	return n
}

// clearReadBuf drops all buffered input. Callers rewind the descriptor if
// the logical position must be preserved (see syncPos).
func (h *handle) clearReadBuf() {
	h.peek = nil

	if h.br != nil {
		h.br.Reset(rawReader{h: h})
	}
}

// writeBytes sends p through the write buffer, honoring line buffering.
func (h *handle) writeBytes(p []byte) error {
	if h.bw == nil {
		_, err := sysWrite(h.fd, p)

		return err
	}

	if _, err := h.bw.Write(p); err != nil {
		return err
	}

	if h.bufMode.Kind == BufferLine && bytes.IndexByte(p, '\n') >= 0 {
		return h.bw.Flush()
	}

	return nil
}

// flush empties the write buffer, if any.
func (h *handle) flush() error {
	if h.bw == nil {
		return nil
	}

	return h.bw.Flush()
}
