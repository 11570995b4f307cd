package types

import "io/fs"

// FS abstracts filesystem operations for testability. The OS
// implementation lives in pkg/filesystem; tests may use the afero-backed
// one.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Removal and rename. Rename must be atomic on the OS
	// implementation; the install engine relies on it.
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}
