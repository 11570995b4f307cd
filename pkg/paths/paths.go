package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Environment variable names
const (
	// EnvBinDir overrides the user-scope bin directory
	EnvBinDir = "DOAPP_BIN_DIR"

	// EnvDataDir overrides the user-scope doapp data directory
	// (app store and snapshot root live under it)
	EnvDataDir = "DOAPP_DATA_DIR"

	// EnvConfigDir overrides the doapp config directory
	EnvConfigDir = "DOAPP_CONFIG_DIR"

	// EnvSystemRoot overrides the system-scope prefix (default
	// /usr/local), used by tests and staged installs
	EnvSystemRoot = "DOAPP_SYSTEM_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Directory and file names.
// IMPORTANT: These constants define doapp's on-disk layout and are
// compatibility-critical. They must remain consistent across all doapp
// installations; user-configurable behavior belongs in pkg/config instead.
const (
	// DoappDirName is the directory name for doapp-specific files
	DoappDirName = "doapp"

	// AppsDir is the subdirectory of the data dir holding app stores
	AppsDir = "apps"

	// RollbackDir is the subdirectory of the data dir holding snapshots
	RollbackDir = "rollback"

	// SystemRoot is the default prefix for the system scope
	SystemRoot = "/usr/local"

	// ConfigFile is the name of the doapp configuration file
	ConfigFile = "doapp.toml"
)

// Paths provides centralized path management for one scope
type Paths interface {
	Scope() types.Scope
	BinDir() string
	AppStore() string
	SnapshotRoot() string
	ConfigDir() string

	// AppDir returns the store directory for a named app
	AppDir(name string) string

	// BinPath returns the bin-dir path for a named command or shim
	BinPath(name string) string
}

type paths struct {
	scope        types.Scope
	binDir       string
	appStore     string
	snapshotRoot string
	configDir    string
}

// New creates a Paths instance for the given scope, honoring the
// DOAPP_* environment overrides.
func New(scope types.Scope) (Paths, error) {
	if !scope.IsValid() {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown scope %q", scope)
	}

	p := &paths{scope: scope}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.configDir = expandHome(configDir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, DoappDirName)
	}

	switch scope {
	case types.ScopeUser:
		p.setupUserDirs()
	case types.ScopeSystem:
		p.setupSystemDirs()
	}

	return p, nil
}

// setupUserDirs resolves the user-scope layout: ~/.local/bin plus the
// XDG data dir, unless overridden.
func (p *paths) setupUserDirs() {
	if binDir := os.Getenv(EnvBinDir); binDir != "" {
		p.binDir = expandHome(binDir)
	} else {
		p.binDir = xdg.BinHome
	}

	var dataDir string
	if override := os.Getenv(EnvDataDir); override != "" {
		dataDir = expandHome(override)
	} else {
		dataDir = filepath.Join(xdg.DataHome, DoappDirName)
	}
	p.appStore = filepath.Join(dataDir, AppsDir)
	p.snapshotRoot = filepath.Join(dataDir, RollbackDir)
}

// setupSystemDirs resolves the system-scope layout under /usr/local,
// never colliding with user-scope paths.
func (p *paths) setupSystemDirs() {
	root := SystemRoot
	if override := os.Getenv(EnvSystemRoot); override != "" {
		root = expandHome(override)
	}

	p.binDir = filepath.Join(root, "bin")
	dataDir := filepath.Join(root, "share", DoappDirName)
	p.appStore = filepath.Join(dataDir, AppsDir)
	p.snapshotRoot = filepath.Join(dataDir, RollbackDir)
}

func (p *paths) Scope() types.Scope {
	return p.scope
}

func (p *paths) BinDir() string {
	return p.binDir
}

func (p *paths) AppStore() string {
	return p.appStore
}

func (p *paths) SnapshotRoot() string {
	return p.snapshotRoot
}

func (p *paths) ConfigDir() string {
	return p.configDir
}

func (p *paths) AppDir(name string) string {
	return filepath.Join(p.appStore, name)
}

func (p *paths) BinPath(name string) string {
	return filepath.Join(p.binDir, name)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
