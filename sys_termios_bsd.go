//go:build (darwin && !ios) || freebsd || openbsd || netbsd || dragonfly

package scopedio

import "golang.org/x/sys/unix"

// BSD-family termios ioctl requests (macOS included).
const (
	termiosGetReq = unix.TIOCGETA
	termiosSetReq = unix.TIOCSETA
)
