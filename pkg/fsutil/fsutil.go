// Package fsutil provides tree copy and merge primitives over types.FS.
// The install, snapshot and archive engines all move directory trees
// around; this is the one place that knows how to do it while
// preserving file modes (the execute bit in particular).
package fsutil

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Exists reports whether the path exists (follows symlinks).
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// LExists reports whether the path exists without following symlinks.
func LExists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// IsDir reports whether the path exists and is a directory.
func IsDir(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies a regular file, preserving its mode.
func CopyFile(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}
	if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	// WriteFile perm is masked by umask on real filesystems
	return fsys.Chmod(dst, info.Mode().Perm())
}

// CopyTree recursively copies src into dst, preserving file modes and
// re-creating symlinks. dst must not be inside src.
func CopyTree(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	if !info.IsDir() {
		return CopyFile(fsys, src, dst)
	}

	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := fsys.Readlink(srcPath)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", srcPath)
			}
			// Replace any stale entry at the destination
			_ = fsys.Remove(dstPath)
			if err := fsys.Symlink(target, dstPath); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot link %s", dstPath)
			}
			continue
		}

		if entry.IsDir() {
			if err := CopyTree(fsys, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := CopyFile(fsys, srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// MergeResult reports what a MergeDir call did.
type MergeResult struct {
	Copied   []string
	Skipped  []string
	Replaced []string
}

// MergeDir merges the top-level entries of src into dst:
// missing destination entries are copied in, existing ones are skipped
// unless force is set, in which case they are removed and replaced.
// A missing src is treated as empty. This is the merge contract shared
// by snapshot restore and archive restore.
func MergeDir(fsys types.FS, src, dst string, force bool) (*MergeResult, error) {
	result := &MergeResult{}

	if !IsDir(fsys, src) {
		return result, nil
	}
	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if LExists(fsys, dstPath) {
			if !force {
				result.Skipped = append(result.Skipped, entry.Name())
				continue
			}
			if err := fsys.RemoveAll(dstPath); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", dstPath)
			}
			result.Replaced = append(result.Replaced, entry.Name())
		} else {
			result.Copied = append(result.Copied, entry.Name())
		}

		if err := CopyTree(fsys, srcPath, dstPath); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// EnsureExecutable re-asserts the execute bit on a regular file.
// Archive formats may drop it; everything placed into a bin dir goes
// through here.
func EnsureExecutable(fsys types.FS, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	if info.IsDir() {
		return nil
	}
	return fsys.Chmod(path, info.Mode().Perm()|0111)
}
