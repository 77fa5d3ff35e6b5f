package scopedio

import (
	"errors"
	"runtime"
	"unicode/utf8"
)

// ============================================================================
// Text encoding and newline translation
// ============================================================================
//
// Both are pass-through configuration on the handle: the region and mode
// machinery is unaware of them. Binary handles fix the encoding to UTF8 and
// the newline mode to no-translation.

// Encoding selects how text operations map runes to bytes.
type Encoding uint8

// Named encodings.
const (
	// UTF8 is the default encoding. Invalid input sequences decode to
	// utf8.RuneError, consuming one byte, as bufio does.
	UTF8 Encoding = iota
	// Latin1 maps bytes 0x00-0xFF directly to the first 256 code points.
	// Writing a rune above U+00FF fails with ErrBadEncoding.
	Latin1
	// ASCII accepts only code points below U+0080 in both directions.
	ASCII
)

// ErrBadEncoding indicates a rune not representable in the handle's
// encoding, or input bytes invalid for it.
var ErrBadEncoding = errors.New("invalid for encoding")

func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "latin1"
	case ASCII:
		return "ascii"
	default:
		return "utf-8"
	}
}

// SetEncoding changes the handle's text encoding. Buffered data already read
// or written is unaffected; change the encoding at a character boundary.
func (h Handle[M]) SetEncoding(enc Encoding) {
	h.h.enc = enc
}

// Encoding returns the handle's text encoding.
func (h Handle[M]) Encoding() Encoding {
	return h.h.enc
}

// appendRune encodes r per enc, appending to dst.
func appendRune(dst []byte, r rune, enc Encoding) ([]byte, error) {
	switch enc {
	case Latin1:
		if r > 0xFF {
			return dst, ErrBadEncoding
		}

		return append(dst, byte(r)), nil
	case ASCII:
		if r >= 0x80 {
			return dst, ErrBadEncoding
		}

		return append(dst, byte(r)), nil
	default:
		return utf8.AppendRune(dst, r), nil
	}
}

// Newline selects a line-terminator convention.
type Newline uint8

const (
	// LF terminates lines with "\n" and performs no input translation.
	LF Newline = iota
	// CRLF terminates output lines with "\r\n" and folds "\r\n" into '\n'
	// on input.
	CRLF
)

// NewlineMode is a handle's newline translation, set independently for the
// input and output directions.
type NewlineMode struct {
	Input  Newline
	Output Newline
}

// NativeNewlineMode returns the platform convention: CRLF both ways on
// Windows, LF elsewhere. This is the default for text handles.
func NativeNewlineMode() NewlineMode {
	if runtime.GOOS == "windows" {
		return NewlineMode{Input: CRLF, Output: CRLF}
	}

	return NewlineMode{Input: LF, Output: LF}
}

// UniversalNewlineMode folds CRLF to '\n' on input and writes plain '\n' on
// output, regardless of platform.
func UniversalNewlineMode() NewlineMode {
	return NewlineMode{Input: CRLF, Output: LF}
}

// NoNewlineTranslation disables translation in both directions. This is the
// fixed mode of binary handles.
func NoNewlineTranslation() NewlineMode {
	return NewlineMode{Input: LF, Output: LF}
}

// SetNewlineMode changes the handle's newline translation. No-op on binary
// handles, which never translate.
func (h Handle[M]) SetNewlineMode(mode NewlineMode) {
	if h.h.binary {
		return
	}

	h.h.nl = mode
}

// NewlineMode returns the handle's newline translation.
func (h Handle[M]) NewlineMode() NewlineMode {
	return h.h.nl
}
