//go:build scopedio_testhooks

package scopedio

import (
	"io/fs"
	"sync/atomic"
)

// This file provides test-only hooks around descriptor acquisition and
// release.
//
// Build tag:
//   - Enabled only when tests are run with: go test -tags scopedio_testhooks ./...
//   - Normal builds use sys_hooks_stub.go, which forwards directly to the
//     backend implementation with zero hook overhead.
//
// The hooks let tests count every open and close that reaches the platform,
// which is how the close-exactly-once region property is verified without a
// fake filesystem.
//
// Scope and safety:
//   - Hooks are global to the test binary. Tests that install them MUST NOT
//     run in parallel with other hook users.
//   - Atomic pointers avoid data races with non-hooked tests.

type (
	sysOpenHookFn  func(string, int, fs.FileMode) (sysFD, error)
	sysCloseHookFn func(sysFD) error
)

var (
	sysOpenHook  atomic.Pointer[sysOpenHookFn]
	sysCloseHook atomic.Pointer[sysCloseHookFn]
)

// setSysOpenHook installs a hook and returns a restore function.
// Passing nil removes any previously-installed hook.
func setSysOpenHook(hook sysOpenHookFn) func() {
	if hook == nil {
		sysOpenHook.Store(nil)

		return func() {}
	}

	ptr := new(sysOpenHookFn)
	*ptr = hook
	sysOpenHook.Store(ptr)

	return func() {
		sysOpenHook.Store(nil)
	}
}

// setSysCloseHook installs a hook and returns a restore function.
// Passing nil removes any previously-installed hook.
func setSysCloseHook(hook sysCloseHookFn) func() {
	if hook == nil {
		sysCloseHook.Store(nil)

		return func() {}
	}

	ptr := new(sysCloseHookFn)
	*ptr = hook
	sysCloseHook.Store(ptr)

	return func() {
		sysCloseHook.Store(nil)
	}
}

// sysOpen wraps the backend implementation and optionally diverts to the
// test hook. The call signature matches the backend contract exactly.
func sysOpen(path string, flags int, perm fs.FileMode) (sysFD, error) {
	if hook := sysOpenHook.Load(); hook != nil {
		return (*hook)(path, flags, perm)
	}

	return sysOpenImpl(path, flags, perm)
}

// sysClose wraps the backend implementation and optionally diverts to the
// test hook.
func sysClose(fd sysFD) error {
	if hook := sysCloseHook.Load(); hook != nil {
		return (*hook)(fd)
	}

	return sysCloseImpl(fd)
}

// Compile-time guards: wrapper signatures must match the backend contract.
var (
	_ func(string, int, fs.FileMode) (sysFD, error) = sysOpen
	_ func(sysFD) error                             = sysClose
)
