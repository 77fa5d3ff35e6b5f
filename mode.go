package scopedio

import (
	"io/fs"
	"os"
)

// ============================================================================
// Access-mode markers and capability sets
// ============================================================================
//
// Each handle carries its access mode as a phantom type parameter. Operations
// constrain that parameter to the capability set they need, so a mode
// mismatch is a compile error and the hot path carries no capability check.
//
// The markers are empty structs; they exist only at the type level. The
// concrete open flags for a marker are resolved once, at open time, via
// modeSpec.

// ReadOnly marks a handle opened for reading. The file must exist.
type ReadOnly struct{}

// WriteOnly marks a handle opened for writing. The file is created if
// missing and truncated if present.
type WriteOnly struct{}

// AppendOnly marks a handle opened for appending. The file is created if
// missing; writes always land at the end.
type AppendOnly struct{}

// ReadWrite marks a handle opened for both reading and writing. The file is
// created if missing and is not truncated.
type ReadWrite struct{}

// Mode is the set of all access-mode markers.
type Mode interface {
	ReadOnly | WriteOnly | AppendOnly | ReadWrite
}

// Readable is the read-capable subset of [Mode].
//
// Operations generic over Readable accept ReadOnly and ReadWrite handles and
// reject the others at compile time.
type Readable interface {
	ReadOnly | ReadWrite
}

// Writable is the write-capable subset of [Mode].
//
// Operations generic over Writable accept WriteOnly, AppendOnly, and
// ReadWrite handles and reject ReadOnly at compile time.
type Writable interface {
	WriteOnly | AppendOnly | ReadWrite
}

// modeSpec describes the runtime footprint of a mode marker.
type modeSpec struct {
	// flags are os.O_* open flags for this mode.
	flags int
	// name is the diagnostic name used in errors and Handle.String.
	name string
	// readable/writable mirror the capability sets for advisory checks.
	readable bool
	writable bool
}

// specFor resolves the modeSpec of a marker type. Resolved once per open, not
// on the operation hot path.
func specFor[M Mode]() modeSpec {
	switch any(*new(M)).(type) {
	case ReadOnly:
		return modeSpec{flags: os.O_RDONLY, name: "read", readable: true}
	case WriteOnly:
		return modeSpec{flags: os.O_WRONLY | os.O_CREATE | os.O_TRUNC, name: "write", writable: true}
	case AppendOnly:
		return modeSpec{flags: os.O_WRONLY | os.O_CREATE | os.O_APPEND, name: "append", writable: true}
	default:
		return modeSpec{flags: os.O_RDWR | os.O_CREATE, name: "read-write", readable: true, writable: true}
	}
}

// defaultPerm is the permission for files created by Open and friends,
// subject to the process umask.
const defaultPerm fs.FileMode = 0o666
