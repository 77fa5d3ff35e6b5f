package scopedio

import (
	"fmt"
	"os"
)

// ============================================================================
// Standard streams
// ============================================================================
//
// The three process streams are pre-existing handles owned by the package
// root region, which is an ancestor of every region - so they are usable in
// any scope. Their default tags are the conventional ones; use [Cast] to
// re-tag a redirected stream (for example stdout redirected from a file
// opened read-write).
//
// Defaults: stdin is block-buffered, stdout line-buffered, stderr
// unbuffered.

var (
	stdinH  = newStdHandle(sysStdin(), "<stdin>", modeSpec{flags: os.O_RDONLY, name: "read", readable: true}, BlockBuffering(0))
	stdoutH = newStdHandle(sysStdout(), "<stdout>", modeSpec{flags: os.O_WRONLY, name: "write", writable: true}, LineBuffering())
	stderrH = newStdHandle(sysStderr(), "<stderr>", modeSpec{flags: os.O_WRONLY, name: "write", writable: true}, NoBuffering())
)

func newStdHandle(fd sysFD, name string, spec modeSpec, buf BufferMode) *handle {
	h := &handle{
		fd:    fd,
		path:  name,
		spec:  spec,
		owner: rootRegion,
		enc:   UTF8,
		nl:    NativeNewlineMode(),
	}

	h.applyBuffering(buf)

	// Detached token: the root region never unwinds, so the stream closes
	// only through an explicit Close.
	h.rel = &Releaser{fn: h.closeNow}

	return h
}

// Stdin returns the process standard input as a read-only handle.
func Stdin() Handle[ReadOnly] { return Handle[ReadOnly]{h: stdinH} }

// Stdout returns the process standard output as a write-only handle.
func Stdout() Handle[WriteOnly] { return Handle[WriteOnly]{h: stdoutH} }

// Stderr returns the process standard error as a write-only handle.
func Stderr() Handle[WriteOnly] { return Handle[WriteOnly]{h: stderrH} }

// ============================================================================
// Standard-stream conveniences
// ============================================================================

// PutStr writes s to standard output. Output may stay buffered until the
// next newline or flush.
func PutStr(s string) error {
	return PutString(Stdout(), s)
}

// PutStrLn writes s and a newline to standard output.
func PutStrLn(s string) error {
	return PutLine(Stdout(), s)
}

// PrintValue formats v like [fmt.Sprint] and writes it as a line to
// standard output.
func PrintValue(v any) error {
	return Print(Stdout(), v)
}

// ReadLine reads a line from standard input, without its terminator.
func ReadLine() (string, error) {
	return GetLine(Stdin())
}

// ReadChar reads a single character from standard input.
func ReadChar() (rune, error) {
	return GetChar(Stdin())
}

// ReadValue scans space-separated values from standard input into dst, with
// [fmt.Fscan] semantics.
func ReadValue(dst ...any) error {
	_, err := fmt.Fscan(logicalReader{h: stdinH}, dst...)

	return err
}

// Interact reads all of standard input, applies f, and writes the result to
// standard output.
func Interact(f func(string) string) error {
	in, err := GetContents(Stdin())
	if err != nil {
		return err
	}

	if err := PutString(Stdout(), f(in)); err != nil {
		return err
	}

	return Flush(Stdout())
}
