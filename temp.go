package scopedio

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// tempAttempts bounds the exclusive-create retry loop against pathological
// name collisions.
const tempAttempts = 10000

// errPatternSeparator rejects patterns that would escape dir.
var errPatternSeparator = errors.New("pattern contains path separator")

// OpenTemp creates and opens a fresh uniquely-named file in dir, in
// [ReadWrite] mode with 0o600 permissions, registered with region r.
//
// pattern names the file: a '*' is replaced by a random string, otherwise
// the random string is appended ("log-*.txt" -> "log-84123701.txt"). An
// empty dir means the platform temp directory.
//
// Creation uses exclusive-create semantics: the open fails rather than
// follow a symlink or reuse an existing file planted at the chosen name, so
// a name-squatting race can never yield a handle to an attacker's file.
//
// Returns the resolved absolute path alongside the handle. The file is not
// removed on close; register removal with the region if it is wanted:
//
//	path, h, err := scopedio.OpenTemp(r, "", "upload-*")
//	...
//	r.Defer(func() error { return os.Remove(path) })
func OpenTemp(r *Region, dir, pattern string) (string, Handle[ReadWrite], error) {
	return openTemp(r, dir, pattern, false)
}

// OpenTempBinary is [OpenTemp] without newline translation.
func OpenTempBinary(r *Region, dir, pattern string) (string, Handle[ReadWrite], error) {
	return openTemp(r, dir, pattern, true)
}

func openTemp(r *Region, dir, pattern string, binary bool) (string, Handle[ReadWrite], error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if strings.ContainsRune(pattern, os.PathSeparator) || strings.ContainsRune(pattern, '/') {
		return "", Handle[ReadWrite]{}, opErr(pattern, "open", errPatternSeparator)
	}

	prefix, suffix := pattern, ""
	if i := strings.LastIndexByte(pattern, '*'); i >= 0 {
		prefix, suffix = pattern[:i], pattern[i+1:]
	}

	spec := specFor[ReadWrite]()
	flags := spec.flags | flagExclusive

	for try := range tempAttempts {
		name := prefix + strconv.FormatUint(uint64(rand.Uint32()), 10) + suffix
		path := filepath.Join(dir, name)

		fd, err := sysOpen(path, flags, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) && try < tempAttempts-1 {
				continue
			}

			return "", Handle[ReadWrite]{}, opErr(path, "open", err)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}

		h := newHandle(fd, abs, spec, binary, openOptions{perm: 0o600})

		if !registerClose(r, h) {
			_ = sysClose(fd)
			panic("scopedio: OpenTemp on completed region")
		}

		h.owner = r

		return abs, Handle[ReadWrite]{h: h}, nil
	}

	return "", Handle[ReadWrite]{}, opErr(filepath.Join(dir, pattern), "open", fs.ErrExist)
}
