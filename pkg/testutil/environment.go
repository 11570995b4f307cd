// Package testutil orchestrates isolated test environments for doapp
// packages: a temp-dir scope wired through the DOAPP_* env overrides,
// with a real filesystem underneath.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/doapp/pkg/filesystem"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/types"
	"github.com/stretchr/testify/require"
)

// Env is a complete isolated environment for one test.
type Env struct {
	BinDir       string
	AppStore     string
	SnapshotRoot string
	ConfigDir    string

	FS    types.FS
	Paths paths.Paths

	t *testing.T
}

// NewEnv creates an isolated user-scope environment in a temp directory
// and points the DOAPP_* overrides at it.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	tempDir := t.TempDir()
	binDir := filepath.Join(tempDir, "bin")
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	t.Setenv(paths.EnvBinDir, binDir)
	t.Setenv(paths.EnvDataDir, dataDir)
	t.Setenv(paths.EnvConfigDir, configDir)

	p, err := paths.New(types.ScopeUser)
	require.NoError(t, err)

	fs := filesystem.NewOS()
	require.NoError(t, fs.MkdirAll(binDir, 0755))
	require.NoError(t, fs.MkdirAll(p.AppStore(), 0755))

	return &Env{
		BinDir:       binDir,
		AppStore:     p.AppStore(),
		SnapshotRoot: p.SnapshotRoot(),
		ConfigDir:    configDir,
		FS:           fs,
		Paths:        p,
		t:            t,
	}
}

// WriteFile writes a file with the given mode, creating parents.
func (e *Env) WriteFile(path, content string, mode os.FileMode) {
	e.t.Helper()
	require.NoError(e.t, e.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, e.FS.WriteFile(path, []byte(content), mode))
	require.NoError(e.t, e.FS.Chmod(path, mode))
}

// WriteScript places an executable script at path.
func (e *Env) WriteScript(path, content string) {
	e.t.Helper()
	e.WriteFile(path, content, 0755)
}

// NewAppDir creates a source app directory named name outside the
// managed dirs and returns its path.
func (e *Env) NewAppDir(name string) string {
	e.t.Helper()
	dir := filepath.Join(e.t.TempDir(), name)
	require.NoError(e.t, e.FS.MkdirAll(dir, 0755))
	return dir
}

// ReadFile reads a file and fails the test on error.
func (e *Env) ReadFile(path string) string {
	e.t.Helper()
	data, err := e.FS.ReadFile(path)
	require.NoError(e.t, err)
	return string(data)
}
