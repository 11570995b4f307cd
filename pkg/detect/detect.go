package detect

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/logging"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Strategy is one detection rule. TryDetect returns (nil, nil) when the
// rule does not apply; a non-nil spec ends the search.
type Strategy interface {
	Name() string
	TryDetect(fsys types.FS, appDir, name string) (*types.EntrySpec, error)
}

// Strategies returns the detection rules in documented priority order.
func Strategies() []Strategy {
	return []Strategy{
		&ConventionalBin{},
		&Manifest{},
		&SourceNames{},
		&SoleRootSource{},
		&BinDirCandidate{},
	}
}

// Detect resolves the entry spec for an app directory, or returns
// NO_ENTRY_RESOLVED when no strategy fires.
func Detect(fsys types.FS, appDir string) (*types.EntrySpec, error) {
	logger := logging.GetLogger("detect")
	name := NormalizeName(filepath.Base(appDir))

	for _, strategy := range Strategies() {
		spec, err := strategy.TryDetect(fsys, appDir, name)
		if err != nil {
			return nil, err
		}
		if spec != nil {
			logger.Debug().
				Str("app", name).
				Str("strategy", strategy.Name()).
				Str("entry", spec.Entry).
				Msg("entry resolved")
			return spec, nil
		}
	}

	return nil, errors.Newf(errors.ErrNoEntryResolved,
		"no entry point resolved for %q; supply one explicitly", name).
		WithDetail("appDir", appDir)
}

// Recognized source ecosystems, by extension.
var interpreters = map[string]string{
	".sh":   "sh",
	".bash": "bash",
	".py":   "python3",
	".js":   "node",
	".mjs":  "node",
}

// sourceExts is the deterministic search order for source candidates.
var sourceExts = []string{".sh", ".bash", ".py", ".js", ".mjs"}

// interpreterFor returns the interpreter for a source file, or "" when
// the extension belongs to no recognized ecosystem.
func interpreterFor(path string) string {
	return interpreters[strings.ToLower(filepath.Ext(path))]
}

// isExecutable reports whether path is a regular file with any execute
// bit set.
func isExecutable(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}

// specForSource builds the entry spec for an interpreted source file,
// attaching the ecosystem's bootstrap when a dependency file is present.
func specForSource(fsys types.FS, appDir, relEntry string) *types.EntrySpec {
	spec := &types.EntrySpec{
		Interpreter: interpreterFor(relEntry),
		Entry:       relEntry,
	}

	switch spec.Interpreter {
	case "python3":
		spec.Bootstrap = pythonBootstrap(fsys, appDir)
	case "node":
		spec.Bootstrap = nodeBootstrap(fsys, appDir)
	}

	return spec
}

// pythonBootstrap requests venv isolation when the app declares
// dependencies via requirements.txt.
func pythonBootstrap(fsys types.FS, appDir string) *types.BootstrapSpec {
	if _, err := fsys.Stat(filepath.Join(appDir, "requirements.txt")); err == nil {
		return &types.BootstrapSpec{Runtime: "python", DepsFile: "requirements.txt"}
	}
	return nil
}

// nodeBootstrap requests npm install when the app declares dependencies
// in package.json.
func nodeBootstrap(fsys types.FS, appDir string) *types.BootstrapSpec {
	manifest, err := readPackageJSON(fsys, appDir)
	if err != nil || len(manifest.Dependencies) == 0 {
		return nil
	}
	return &types.BootstrapSpec{Runtime: "node", DepsFile: "package.json"}
}

// listDir returns the directory entries, or nil when unreadable.
func listDir(fsys types.FS, dir string) []fs.DirEntry {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil
	}
	return entries
}
