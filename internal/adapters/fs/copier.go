package fs

import (
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// Copier mirrors a source tree into another directory.
type Copier struct {
	walker *Walker
}

// NewCopier creates a Copier that enumerates files with walker.
func NewCopier(walker *Walker) *Copier {
	return &Copier{walker: walker}
}

// CopyTree copies every file below src into dst, preserving relative paths,
// file modes and symlinks. It returns the number of entries copied.
func (c *Copier) CopyTree(src, dst string, ignores []string) (int, error) {
	n := 0
	for path, err := range c.walker.WalkFiles(src, ignores) {
		if err != nil {
			return n, zerr.With(zerr.Wrap(err, "failed to walk source tree"), "path", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return n, zerr.Wrap(err, "failed to relativize path")
		}
		target := filepath.Join(dst, rel)

		if err := copyEntry(path, target); err != nil {
			return n, zerr.With(err, "path", rel)
		}
		n++
	}
	return n, nil
}

func copyEntry(from, to string) error {
	info, err := os.Lstat(from)
	if err != nil {
		return zerr.Wrap(err, "failed to stat file")
	}

	if err := os.MkdirAll(filepath.Dir(to), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory")
	}

	if info.Mode()&os.ModeSymlink != 0 {
		link, err := os.Readlink(from)
		if err != nil {
			return zerr.Wrap(err, "failed to read symlink")
		}
		if err := os.Symlink(link, to); err != nil {
			return zerr.Wrap(err, "failed to create symlink")
		}
		return nil
	}

	if !info.Mode().IsRegular() {
		return nil
	}
	return copyFile(from, to, info.Mode().Perm())
}

func copyFile(from, to string, perm os.FileMode) error {
	in, err := os.Open(from) //nolint:gosec // path comes from walking the source tree
	if err != nil {
		return zerr.Wrap(err, "failed to open file")
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // destination is the job workspace
	if err != nil {
		return zerr.Wrap(err, "failed to create file")
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.Wrap(err, "failed to copy file")
	}
	return out.Close()
}
