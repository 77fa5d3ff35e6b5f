//go:build linux

package scopedio

import "golang.org/x/sys/unix"

// Linux termios ioctl requests.
const (
	termiosGetReq = unix.TCGETS
	termiosSetReq = unix.TCSETS
)
