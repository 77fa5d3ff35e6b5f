//go:build windows || ios || solaris || illumos || aix

// sys_other.go implements the internal platform backend contract (see
// sys_contract.go) for platforms where we don't maintain a syscall-level
// backend. It uses only portable stdlib APIs (os.OpenFile and the *os.File
// method set).
//
// Fidelity notes for this backend:
//   - Input readiness (sysPoll) has no portable primitive; WaitForInput,
//     InputReady, and the non-blocking buffer reads report ErrUnsupported.
//   - Terminal echo control reports ErrUnsupported.
//   - The kernel access mode cannot be queried, so sysAccess answers from
//     the flags recorded at open time.
//
// The handle layer is identical on all platforms; only these primitives
// degrade.
package scopedio

import (
	"io/fs"
	"os"
	"time"
)

// sysFD wraps an open *os.File plus the flags it was opened with.
type sysFD struct {
	f        *os.File
	readable bool
	writable bool
}

func sysOpenImpl(path string, flags int, perm fs.FileMode) (sysFD, error) {
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return sysFD{}, err
	}

	acc := flags & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR)

	return sysFD{
		f:        f,
		readable: acc == os.O_RDONLY || acc == os.O_RDWR,
		writable: acc == os.O_WRONLY || acc == os.O_RDWR,
	}, nil
}

func sysCloseImpl(fd sysFD) error {
	if fd.f == nil {
		return nil
	}

	return fd.f.Close()
}

func sysRead(fd sysFD, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	return fd.f.Read(p)
}

func sysWrite(fd sysFD, p []byte) (int, error) {
	return fd.f.Write(p)
}

func sysSeek(fd sysFD, offset int64, whence int) (int64, error) {
	return fd.f.Seek(offset, whence)
}

func sysTruncate(fd sysFD, size int64) error {
	return fd.f.Truncate(size)
}

func sysSize(fd sysFD) (int64, error) {
	info, err := fd.f.Stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func sysPoll(_ sysFD, _ time.Duration) (bool, error) {
	return false, ErrUnsupported
}

func sysPollOut(_ sysFD, _ time.Duration) (bool, error) {
	return false, ErrUnsupported
}

func sysWriteSome(fd sysFD, p []byte) (int, error) {
	return fd.f.Write(p)
}

func sysIsTerminal(fd sysFD) bool {
	info, err := fd.f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func sysSetEcho(_ sysFD, _ bool) error {
	return ErrUnsupported
}

func sysGetEcho(_ sysFD) (bool, error) {
	return false, ErrUnsupported
}

func sysAccess(fd sysFD) (readable, writable bool, err error) {
	return fd.readable, fd.writable, nil
}

func sysStdin() sysFD { return sysFD{f: os.Stdin, readable: true} }

func sysStdout() sysFD { return sysFD{f: os.Stdout, writable: true} }

func sysStderr() sysFD { return sysFD{f: os.Stderr, writable: true} }

func sysFdValue(fd sysFD) uintptr {
	if fd.f == nil {
		return 0
	}

	return fd.f.Fd()
}
