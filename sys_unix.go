//go:build linux || (darwin && !ios) || freebsd || openbsd || netbsd || dragonfly

// sys_unix.go implements the internal platform backend contract (see
// sys_contract.go) for mainstream Unix platforms:
//   - Linux
//   - macOS (darwin, excluding iOS)
//   - the BSD family (FreeBSD/OpenBSD/NetBSD/DragonFly)
//
// The backend is syscall-oriented (raw descriptors, EINTR retry loops) so the
// handle layer stays a thin, allocation-free shim over the kernel. Termios
// request constants differ between Linux and the BSD family and live in
// sys_termios_linux.go / sys_termios_bsd.go.
package scopedio

import (
	"io"
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// sysFD wraps an open file descriptor.
type sysFD struct {
	fd int
}

func sysOpenImpl(path string, flags int, perm fs.FileMode) (sysFD, error) {
	for {
		fd, err := unix.Open(path, flags|unix.O_CLOEXEC, uint32(perm.Perm()))
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return sysFD{fd: -1}, err
		}

		return sysFD{fd: fd}, nil
	}
}

// sysCloseImpl releases the descriptor.
//
// Close is not retried on EINTR: on Linux (and POSIX in general) the
// descriptor is gone regardless, and retrying can close a descriptor that
// was already reused by another thread.
func sysCloseImpl(fd sysFD) error {
	if fd.fd < 0 {
		return nil
	}

	err := unix.Close(fd.fd)
	if err == unix.EINTR {
		return nil
	}

	return err
}

func sysRead(fd sysFD, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		n, err := unix.Read(fd.fd, p)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, err
		}

		if n == 0 {
			return 0, io.EOF
		}

		return n, nil
	}
}

func sysWrite(fd sysFD, p []byte) (int, error) {
	written := 0

	for written < len(p) {
		n, err := unix.Write(fd.fd, p[written:])
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return written, err
		}

		written += n
	}

	return written, nil
}

func sysSeek(fd sysFD, offset int64, whence int) (int64, error) {
	for {
		pos, err := unix.Seek(fd.fd, offset, whence)
		if err == unix.EINTR {
			continue
		}

		return pos, err
	}
}

func sysTruncate(fd sysFD, size int64) error {
	for {
		err := unix.Ftruncate(fd.fd, size)
		if err == unix.EINTR {
			continue
		}

		return err
	}
}

func sysSize(fd sysFD) (int64, error) {
	var st unix.Stat_t

	for {
		err := unix.Fstat(fd.fd, &st)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, err
		}

		return st.Size, nil
	}
}

// sysPoll reports whether the descriptor has input available.
// timeout < 0 blocks until input or error; timeout == 0 polls.
func sysPoll(fd sysFD, timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	for {
		fds := []unix.PollFd{{Fd: int32(fd.fd), Events: unix.POLLIN}}

		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return false, err
		}

		if n == 0 {
			return false, nil
		}

		// POLLHUP/POLLERR count as ready: the next read returns immediately
		// (EOF or the pending error) instead of blocking.
		return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}

// sysPollOut reports whether the descriptor can accept output without
// blocking. Same timeout semantics as sysPoll.
func sysPollOut(fd sysFD, timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	for {
		fds := []unix.PollFd{{Fd: int32(fd.fd), Events: unix.POLLOUT}}

		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return false, err
		}

		if n == 0 {
			return false, nil
		}

		return fds[0].Revents&(unix.POLLOUT|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}

// sysWriteSome performs a single write attempt; unlike sysWrite it does not
// loop to drain p. Used by the non-blocking write path after a readiness
// poll.
func sysWriteSome(fd sysFD, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd.fd, p)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, err
		}

		return n, nil
	}
}

func sysIsTerminal(fd sysFD) bool {
	_, err := unix.IoctlGetTermios(fd.fd, termiosGetReq)

	return err == nil
}

func sysSetEcho(fd sysFD, on bool) error {
	t, err := unix.IoctlGetTermios(fd.fd, termiosGetReq)
	if err != nil {
		return err
	}

	if on {
		t.Lflag |= unix.ECHO
	} else {
		t.Lflag &^= unix.ECHO
	}

	return unix.IoctlSetTermios(fd.fd, termiosSetReq, t)
}

func sysGetEcho(fd sysFD) (bool, error) {
	t, err := unix.IoctlGetTermios(fd.fd, termiosGetReq)
	if err != nil {
		return false, err
	}

	return t.Lflag&unix.ECHO != 0, nil
}

// sysAccess reports the descriptor's kernel-level access mode. Used by Cast
// to confirm a re-tag against what the descriptor actually supports.
func sysAccess(fd sysFD) (readable, writable bool, err error) {
	fl, err := unix.FcntlInt(uintptr(fd.fd), unix.F_GETFL, 0)
	if err != nil {
		return false, false, err
	}

	switch fl & unix.O_ACCMODE {
	case unix.O_RDONLY:
		return true, false, nil
	case unix.O_WRONLY:
		return false, true, nil
	default:
		return true, true, nil
	}
}

func sysStdin() sysFD { return sysFD{fd: 0} }

func sysStdout() sysFD { return sysFD{fd: 1} }

func sysStderr() sysFD { return sysFD{fd: 2} }

func sysFdValue(fd sysFD) uintptr {
	if fd.fd < 0 {
		return 0
	}

	return uintptr(fd.fd)
}
