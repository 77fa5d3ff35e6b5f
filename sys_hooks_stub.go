//go:build !scopedio_testhooks

package scopedio

import "io/fs"

func sysOpen(path string, flags int, perm fs.FileMode) (sysFD, error) {
	return sysOpenImpl(path, flags, perm)
}

func sysClose(fd sysFD) error {
	return sysCloseImpl(fd)
}

// Compile-time guards: wrapper signatures must match the backend contract.
var (
	_ func(string, int, fs.FileMode) (sysFD, error) = sysOpen
	_ func(sysFD) error                             = sysClose
)
