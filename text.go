package scopedio

// ============================================================================
// Text input (Readable) and text output (Writable)
// ============================================================================
//
// Everything here is pass-through over the buffered plumbing in buffering.go
// plus the handle's encoding/newline configuration. The mode constraint on
// each function is the only access check; there is none at runtime.

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// GetChar reads and returns the next character.
//
// With CRLF input translation, "\r\n" is folded into a single '\n'. At end
// of stream the error is [io.EOF].
func GetChar[M Readable](h Handle[M]) (rune, error) {
	r, _, err := h.h.readRuneText(nil)
	if err != nil {
		return 0, opErr(h.h.path, "read", err)
	}

	return r, nil
}

// LookAhead returns the next character without consuming it.
func LookAhead[M Readable](h Handle[M]) (rune, error) {
	var scratch [8]byte

	r, consumed, err := h.h.readRuneText(scratch[:0])
	if err != nil {
		return 0, opErr(h.h.path, "read", err)
	}

	h.h.unread(consumed)

	return r, nil
}

// GetLine reads a line, without its terminator.
//
// The terminator is '\n', or "\r\n" under CRLF input translation. A final
// line without a terminator is returned as-is; [io.EOF] is only returned
// when no input at all was available.
func GetLine[M Readable](h Handle[M]) (string, error) {
	var line []byte

	for {
		b, err := h.h.readByte()
		if err == io.EOF {
			if len(line) == 0 {
				return "", io.EOF
			}

			break
		}

		if err != nil {
			return "", opErr(h.h.path, "read", err)
		}

		if b == '\n' {
			if h.h.nl.Input == CRLF && len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}

			break
		}

		line = append(line, b)
	}

	s, err := decodeText(line, h.h.enc)
	if err != nil {
		return "", opErr(h.h.path, "read", err)
	}

	return s, nil
}

// GetContents reads everything from the current position to end of stream.
// Returns "" (not [io.EOF]) when already at the end.
func GetContents[M Readable](h Handle[M]) (string, error) {
	raw, err := io.ReadAll(logicalReader{h: h.h})
	if err != nil {
		return "", opErr(h.h.path, "read", err)
	}

	s, err := decodeText(raw, h.h.enc)
	if err != nil {
		return "", opErr(h.h.path, "read", err)
	}

	if h.h.nl.Input == CRLF {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}

	return s, nil
}

// IsEOF reports whether the handle is at end of input. Like a read, it may
// block until input arrives or the stream ends.
func IsEOF[M Readable](h Handle[M]) (bool, error) {
	if h.h.readBuffered() > 0 {
		return false, nil
	}

	b, err := h.h.readByte()
	if err == io.EOF {
		return true, nil
	}

	if err != nil {
		return false, opErr(h.h.path, "read", err)
	}

	h.h.unread([]byte{b})

	return false, nil
}

// WaitForInput blocks until input is available or the timeout elapses, and
// reports availability. A negative timeout blocks indefinitely; zero polls.
// Buffered input counts as available. End of stream counts as available (the
// next read returns [io.EOF] without blocking).
func WaitForInput[M Readable](h Handle[M], timeout time.Duration) (bool, error) {
	if h.h.readBuffered() > 0 {
		return true, nil
	}

	ready, err := sysPoll(h.h.fd, timeout)
	if err != nil {
		return false, opErr(h.h.path, "poll", err)
	}

	return ready, nil
}

// InputReady reports whether input is available right now, without blocking.
func InputReady[M Readable](h Handle[M]) (bool, error) {
	return WaitForInput(h, 0)
}

// PutChar writes a single character. With CRLF output translation, '\n' is
// written as "\r\n".
func PutChar[M Writable](h Handle[M], r rune) error {
	var scratch [8]byte

	out, err := h.h.encodeRuneText(scratch[:0], r)
	if err != nil {
		return opErr(h.h.path, "write", err)
	}

	if err := h.h.writeBytes(out); err != nil {
		return opErr(h.h.path, "write", err)
	}

	return nil
}

// PutString writes s, translating newlines per the handle's output mode.
func PutString[M Writable](h Handle[M], s string) error {
	out, err := h.h.encodeText(s)
	if err != nil {
		return opErr(h.h.path, "write", err)
	}

	if err := h.h.writeBytes(out); err != nil {
		return opErr(h.h.path, "write", err)
	}

	return nil
}

// PutLine writes s followed by the handle's line terminator.
func PutLine[M Writable](h Handle[M], s string) error {
	if err := PutString(h, s); err != nil {
		return err
	}

	return PutChar(h, '\n')
}

// Print formats v like [fmt.Sprint] and writes it as a line.
func Print[M Writable](h Handle[M], v any) error {
	return PutLine(h, fmt.Sprint(v))
}

// readRuneText decodes the next character per the handle's encoding, folding
// "\r\n" into '\n' under CRLF input translation. consumed (appended to buf)
// holds the raw bytes taken, so callers can push the character back.
func (h *handle) readRuneText(buf []byte) (r rune, consumed []byte, err error) {
	r, consumed, err = h.readRuneRaw(buf)
	if err != nil {
		return 0, nil, err
	}

	if r == '\r' && h.nl.Input == CRLF {
		b, err := h.readByte()

		switch {
		case err == io.EOF:
			// Lone trailing CR.
		case err != nil:
			return 0, nil, err
		case b == '\n':
			return '\n', append(consumed, b), nil
		default:
			h.unread([]byte{b})
		}
	}

	return r, consumed, nil
}

// readRuneRaw decodes one character with no newline translation.
func (h *handle) readRuneRaw(buf []byte) (rune, []byte, error) {
	b0, err := h.readByte()
	if err != nil {
		return 0, nil, err
	}

	if h.enc != UTF8 {
		if h.enc == ASCII && b0 >= 0x80 {
			return 0, nil, ErrBadEncoding
		}

		return rune(b0), append(buf, b0), nil
	}

	var rb [4]byte

	rb[0] = b0
	n := 1

	for !utf8.FullRune(rb[:n]) && n < utf8.UTFMax {
		b, err := h.readByte()
		if err == io.EOF {
			break
		}

		if err != nil {
			return 0, nil, err
		}

		rb[n] = b
		n++
	}

	r, size := utf8.DecodeRune(rb[:n])
	if size < n {
		h.unread(rb[size:n])
	}

	return r, append(buf, rb[:size]...), nil
}

// encodeRuneText encodes r per the handle's encoding, expanding '\n' to
// "\r\n" under CRLF output translation.
func (h *handle) encodeRuneText(buf []byte, r rune) ([]byte, error) {
	if r == '\n' && h.nl.Output == CRLF {
		buf = append(buf, '\r')
	}

	return appendRune(buf, r, h.enc)
}

// encodeText encodes s per the handle's encoding and output newline mode.
func (h *handle) encodeText(s string) ([]byte, error) {
	if h.enc == UTF8 && h.nl.Output != CRLF {
		return []byte(s), nil
	}

	out := make([]byte, 0, len(s)+len(s)/8)

	var err error
	for _, r := range s {
		out, err = h.encodeRuneText(out, r)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// decodeText decodes raw input bytes per enc.
func decodeText(raw []byte, enc Encoding) (string, error) {
	switch enc {
	case Latin1, ASCII:
		if enc == ASCII {
			for _, b := range raw {
				if b >= 0x80 {
					return "", ErrBadEncoding
				}
			}
		}

		var sb strings.Builder

		sb.Grow(len(raw))

		for _, b := range raw {
			sb.WriteRune(rune(b))
		}

		return sb.String(), nil
	default:
		return string(raw), nil
	}
}
