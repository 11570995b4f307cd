package detect

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/doapp/pkg/types"
)

// Manifest is rule 2: ecosystem manifests declaring an executable or a
// start task. package.json is checked before pyproject.toml.
type Manifest struct{}

func (m *Manifest) Name() string { return "manifest" }

func (m *Manifest) TryDetect(fsys types.FS, appDir, name string) (*types.EntrySpec, error) {
	if spec := m.fromPackageJSON(fsys, appDir, name); spec != nil {
		return spec, nil
	}
	if spec := m.fromPyproject(fsys, appDir); spec != nil {
		return spec, nil
	}
	return nil, nil
}

// packageJSON is the subset of package.json doapp reads.
type packageJSON struct {
	Name         string            `json:"name"`
	Bin          json.RawMessage   `json:"bin"`
	Scripts      map[string]string `json:"scripts"`
	Dependencies map[string]string `json:"dependencies"`
}

func readPackageJSON(fsys types.FS, appDir string) (*packageJSON, error) {
	data, err := fsys.ReadFile(filepath.Join(appDir, "package.json"))
	if err != nil {
		return nil, err
	}
	var manifest packageJSON
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *Manifest) fromPackageJSON(fsys types.FS, appDir, name string) *types.EntrySpec {
	manifest, err := readPackageJSON(fsys, appDir)
	if err != nil {
		return nil
	}

	if entry := binEntry(manifest.Bin, name); entry != "" {
		spec := &types.EntrySpec{
			Interpreter: "node",
			Entry:       filepath.Clean(entry),
			WorkDir:     ".",
			Bootstrap:   nodeBootstrapFrom(manifest),
		}
		return spec
	}

	if _, ok := manifest.Scripts["start"]; ok {
		// A start task runs through npm so package.json semantics
		// (env, pre/post hooks) are preserved.
		return &types.EntrySpec{
			Interpreter: "npm",
			Args:        []string{"run", "start", "--"},
			WorkDir:     ".",
			Bootstrap:   nodeBootstrapFrom(manifest),
		}
	}

	return nil
}

// binEntry resolves the package.json "bin" field: a string, or a map
// whose first entry is taken (the app-name key wins over lexicographic
// order, keeping the choice deterministic).
func binEntry(raw json.RawMessage, name string) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var many map[string]string
	if err := json.Unmarshal(raw, &many); err != nil || len(many) == 0 {
		return ""
	}
	if entry, ok := many[name]; ok {
		return entry
	}
	keys := make([]string, 0, len(many))
	for k := range many {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return many[keys[0]]
}

func nodeBootstrapFrom(manifest *packageJSON) *types.BootstrapSpec {
	if len(manifest.Dependencies) == 0 {
		return nil
	}
	return &types.BootstrapSpec{Runtime: "node", DepsFile: "package.json"}
}

// pyproject is the subset of pyproject.toml doapp reads.
type pyproject struct {
	Project struct {
		Name    string            `toml:"name"`
		Scripts map[string]string `toml:"scripts"`
	} `toml:"project"`
}

func (m *Manifest) fromPyproject(fsys types.FS, appDir string) *types.EntrySpec {
	data, err := fsys.ReadFile(filepath.Join(appDir, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var manifest pyproject
	if err := gotoml.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	if len(manifest.Project.Scripts) == 0 {
		return nil
	}

	// First script entry, deterministically
	keys := make([]string, 0, len(manifest.Project.Scripts))
	for k := range manifest.Project.Scripts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	target := manifest.Project.Scripts[keys[0]]

	// "pkg.module:func" -> prefer the module's file when it exists in
	// the tree, else run the module through the interpreter.
	module := strings.SplitN(target, ":", 2)[0]
	modulePath := strings.ReplaceAll(module, ".", string(filepath.Separator)) + ".py"
	spec := &types.EntrySpec{
		Interpreter: "python3",
		WorkDir:     ".",
		Bootstrap:   pythonBootstrap(fsys, appDir),
	}
	if _, err := fsys.Stat(filepath.Join(appDir, modulePath)); err == nil {
		spec.Entry = modulePath
	} else if _, err := fsys.Stat(filepath.Join(appDir, "src", modulePath)); err == nil {
		spec.Entry = filepath.Join("src", modulePath)
	} else {
		spec.Args = []string{"-m", module}
	}

	if spec.Bootstrap == nil {
		// pyproject declares its deps inline; the venv install uses
		// the project itself.
		spec.Bootstrap = &types.BootstrapSpec{Runtime: "python", DepsFile: "pyproject.toml"}
	}

	return spec
}
