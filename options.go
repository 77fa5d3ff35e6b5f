package scopedio

import (
	"io/fs"
	"os"
)

// Option configures [Open], [OpenBinary], [OpenTemp], and [WithFile].
// Options are applied in order.
type Option func(*openOptions)

// WithPerm sets the permission bits for files created by the open, subject
// to the process umask. The default is 0o666 (0o600 for temp files).
func WithPerm(perm fs.FileMode) Option {
	return func(o *openOptions) {
		o.perm = perm
	}
}

// WithExclusive makes the open fail if the path already exists. Only
// meaningful for modes that create ([WriteOnly], [AppendOnly], [ReadWrite]).
func WithExclusive() Option {
	return func(o *openOptions) {
		o.exclusive = true
	}
}

// WithNoCreate strips the create flag: the open fails with [ErrNotExist] if
// the path does not exist, even in write-capable modes.
func WithNoCreate() Option {
	return func(o *openOptions) {
		o.noCreate = true
	}
}

// WithBuffering sets the handle's initial buffering mode. The default is
// block buffering; see [Handle.SetBuffering] for changing it later.
func WithBuffering(mode BufferMode) Option {
	return func(o *openOptions) {
		o.buf = &mode
	}
}

// WithNewlineMode sets the handle's newline translation. Ignored by
// [OpenBinary], which never translates.
func WithNewlineMode(mode NewlineMode) Option {
	return func(o *openOptions) {
		o.nl = &mode
	}
}

// WithEncoding sets the handle's text encoding. The default is [UTF8].
func WithEncoding(enc Encoding) Option {
	return func(o *openOptions) {
		o.enc = &enc
	}
}

// Flag aliases used by the open path.
const (
	flagExclusive = os.O_EXCL
	flagCreate    = os.O_CREATE
)

type openOptions struct {
	perm      fs.FileMode
	exclusive bool
	noCreate  bool
	buf       *BufferMode
	nl        *NewlineMode
	enc       *Encoding
}

// applyOptions merges option values and applies defaults.
func applyOptions(opts []Option) openOptions {
	cfg := openOptions{perm: defaultPerm}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
