package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a relative path resolves outside its base directory.
var ErrOutsideBase = errors.New("path escapes base directory")

// ResolveWithin resolves a user-provided path against base. Relative paths
// must stay inside base; absolute paths are cleaned and returned as given.
func ResolveWithin(base, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	joined := filepath.Join(base, p)
	rel, err := filepath.Rel(filepath.Clean(base), joined)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", p, ErrOutsideBase)
	}
	return joined, nil
}

// CopyFile copies src to dst and gives dst the permission bits of src.
// Unless overwrite is set an existing dst is left alone and the returned
// error wraps os.ErrExist. A partially written dst is removed on failure.
func CopyFile(src, dst string, overwrite bool) (err error) {
	in, err := os.Open(src) // #nosec G304 -- src comes from the reviewed mapping
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	mode := info.Mode() & 0o777
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dst, flags, mode) // #nosec G304 -- dst built from the output template
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Chmod(mode); err != nil {
		return err
	}
	return out.Sync()
}

// Exists reports whether path exists (without following a final symlink).
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
