package scopedio

import "io"

// SeekMode selects the reference point for [Handle.Seek].
type SeekMode int

const (
	// SeekAbsolute seeks relative to the start of the file.
	SeekAbsolute SeekMode = io.SeekStart
	// SeekRelative seeks relative to the current logical position.
	SeekRelative SeekMode = io.SeekCurrent
	// SeekFromEnd seeks relative to the end of the file.
	SeekFromEnd SeekMode = io.SeekEnd
)

// Internal whence aliases.
const (
	seekStart   = io.SeekStart
	seekCurrent = io.SeekCurrent
	seekEnd     = io.SeekEnd
)

// Pos is an opaque position token from [Handle.Position], restorable with
// [Handle.SetPosition].
type Pos struct {
	offset int64
}

// syncPos reconciles the descriptor offset with the logical position:
// pending writes are flushed and read-ahead is unwound by seeking the
// descriptor back over it. After syncPos the kernel offset equals the
// logical offset. Only valid on seekable descriptors.
func (h *handle) syncPos() error {
	if err := h.flush(); err != nil {
		return err
	}

	if n := h.readBuffered(); n > 0 {
		h.clearReadBuf()

		if _, err := sysSeek(h.fd, -int64(n), seekCurrent); err != nil {
			return err
		}
	}

	return nil
}

// Position returns the current logical position as a restorable token.
func (h Handle[M]) Position() (Pos, error) {
	if err := h.h.syncPos(); err != nil {
		return Pos{}, opErr(h.h.path, "seek", err)
	}

	off, err := sysSeek(h.h.fd, 0, seekCurrent)
	if err != nil {
		return Pos{}, opErr(h.h.path, "seek", err)
	}

	return Pos{offset: off}, nil
}

// SetPosition restores a position previously returned by [Handle.Position].
func (h Handle[M]) SetPosition(p Pos) error {
	if err := h.h.syncPos(); err != nil {
		return opErr(h.h.path, "seek", err)
	}

	if _, err := sysSeek(h.h.fd, p.offset, seekStart); err != nil {
		return opErr(h.h.path, "seek", err)
	}

	return nil
}

// Seek repositions the handle and returns the new offset from the start of
// the file. Buffered state is reconciled first, so relative seeks count from
// the logical position, not the kernel offset.
func (h Handle[M]) Seek(mode SeekMode, offset int64) (int64, error) {
	if err := h.h.syncPos(); err != nil {
		return 0, opErr(h.h.path, "seek", err)
	}

	pos, err := sysSeek(h.h.fd, offset, int(mode))
	if err != nil {
		return 0, opErr(h.h.path, "seek", err)
	}

	return pos, nil
}

// Tell returns the current logical offset from the start of the file.
func (h Handle[M]) Tell() (int64, error) {
	p, err := h.Position()
	if err != nil {
		return 0, err
	}

	return p.offset, nil
}

// Size returns the file's size in bytes. Pending writes are flushed first so
// the answer reflects everything written through the handle.
func (h Handle[M]) Size() (int64, error) {
	if err := h.h.flush(); err != nil {
		return 0, opErr(h.h.path, "write", err)
	}

	size, err := sysSize(h.h.fd)
	if err != nil {
		return 0, opErr(h.h.path, "stat", err)
	}

	return size, nil
}

// SetSize truncates or extends the file to size bytes. The logical position
// is unchanged. Read-ahead past the new size is discarded.
func (h Handle[M]) SetSize(size int64) error {
	if err := h.h.syncPos(); err != nil {
		return opErr(h.h.path, "truncate", err)
	}

	if err := sysTruncate(h.h.fd, size); err != nil {
		return opErr(h.h.path, "truncate", err)
	}

	return nil
}
