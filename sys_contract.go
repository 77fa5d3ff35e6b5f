package scopedio

import (
	"io/fs"
	"time"
)

// ============================================================================
// Internal platform backend contract
// ============================================================================
//
// The handle layer (handle.go and the operation files) is written against a
// small set of unexported, platform-specific functions and one type, sysFD.
//
// Implementations live in build-tagged backend files:
//   - Mainstream Unix (linux, macOS, BSDs): sys_unix.go
//     (termios request constants per OS family in sys_termios_linux.go
//     and sys_termios_bsd.go)
//   - "Other" platforms (windows, solaris, aix, mobile): sys_other.go
//
// This file contains no runtime dispatch: compile-time assignments document
// the required surface and ensure each build provides it.
//
// Semantics expected by the handle layer:
//
//   - sysRead returns (0, io.EOF) at end of stream, never (n>0, io.EOF).
//
//   - sysOpenImpl takes os.O_* flags and must not follow a symlink when
//     O_EXCL is set (exclusive temp creation relies on this).
//
//   - sysPoll reports input readability; timeout < 0 blocks indefinitely,
//     timeout == 0 polls. Backends without a readiness primitive return
//     ErrUnsupported.
//
//   - sysClose must release the descriptor even when it reports an error.
//
//   - All backends retry EINTR internally; callers never see it.
//
// In test builds tagged scopedio_testhooks, sysOpen/sysClose divert through
// installable hooks (sys_hooks.go) so tests can count acquisitions and
// releases; normal builds forward directly (sys_hooks_stub.go).

// Function signatures required by the handle layer.
var (
	_ func(string, int, fs.FileMode) (sysFD, error) = sysOpenImpl
	_ func(sysFD) error                             = sysCloseImpl
	_ func(sysFD, []byte) (int, error)              = sysRead
	_ func(sysFD, []byte) (int, error)              = sysWrite
	_ func(sysFD, int64, int) (int64, error)        = sysSeek
	_ func(sysFD, int64) error                      = sysTruncate
	_ func(sysFD) (int64, error)                    = sysSize
	_ func(sysFD, time.Duration) (bool, error)      = sysPoll
	_ func(sysFD, time.Duration) (bool, error)      = sysPollOut
	_ func(sysFD, []byte) (int, error)              = sysWriteSome
	_ func(sysFD) bool                              = sysIsTerminal
	_ func(sysFD, bool) error                       = sysSetEcho
	_ func(sysFD) (bool, error)                     = sysGetEcho
	_ func(sysFD) (bool, bool, error)               = sysAccess
	_ func() sysFD                                  = sysStdin
	_ func() sysFD                                  = sysStdout
	_ func() sysFD                                  = sysStderr
	_ func(sysFD) uintptr                           = sysFdValue
)
