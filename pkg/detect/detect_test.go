package detect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/doapp/pkg/detect"
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/filesystem"
	"github.com/arthur-debert/doapp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAppDir creates an app directory with the given name under a temp root.
func newAppDir(t *testing.T, name string) (types.FS, string) {
	t.Helper()
	fs := filesystem.NewOS()
	appDir := filepath.Join(t.TempDir(), name)
	require.NoError(t, fs.MkdirAll(appDir, 0755))
	return fs, appDir
}

func addFile(t *testing.T, fs types.FS, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fs.WriteFile(path, []byte(content), mode))
	require.NoError(t, fs.Chmod(path, mode))
}

func TestDetect_ConventionalBin(t *testing.T) {
	fs, appDir := newAppDir(t, "mytool")
	addFile(t, fs, filepath.Join(appDir, "bin", "mytool"), "#!/bin/sh\necho hi\n", 0755)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("bin", "mytool"), spec.Entry)
	assert.True(t, spec.Direct())
}

func TestDetect_ConventionalBinBeatsManifest(t *testing.T) {
	// Spec priority: the conventional rule wins over a manifest entry
	fs, appDir := newAppDir(t, "mytool")
	addFile(t, fs, filepath.Join(appDir, "bin", "mytool"), "#!/bin/sh\n", 0755)
	addFile(t, fs, filepath.Join(appDir, "package.json"),
		`{"name": "mytool", "bin": "lib/cli.js"}`, 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("bin", "mytool"), spec.Entry)
	assert.Empty(t, spec.Interpreter)
}

func TestDetect_ConventionalBinNeedsExecuteBit(t *testing.T) {
	fs, appDir := newAppDir(t, "mytool")
	addFile(t, fs, filepath.Join(appDir, "bin", "mytool"), "#!/bin/sh\n", 0644)
	addFile(t, fs, filepath.Join(appDir, "main.py"), "print('x')\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	// Rule 1 must not fire on a non-executable bin file
	assert.Equal(t, "main.py", spec.Entry)
	assert.Equal(t, "python3", spec.Interpreter)
}

func TestManifest_PackageJSONBinString(t *testing.T) {
	fs, appDir := newAppDir(t, "webby")
	addFile(t, fs, filepath.Join(appDir, "package.json"),
		`{"name": "webby", "bin": "cli.js", "dependencies": {"express": "^4.0.0"}}`, 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "node", spec.Interpreter)
	assert.Equal(t, "cli.js", spec.Entry)
	require.NotNil(t, spec.Bootstrap)
	assert.Equal(t, "node", spec.Bootstrap.Runtime)
	assert.Equal(t, "package.json", spec.Bootstrap.DepsFile)
}

func TestManifest_PackageJSONBinMapPrefersAppName(t *testing.T) {
	fs, appDir := newAppDir(t, "webby")
	addFile(t, fs, filepath.Join(appDir, "package.json"),
		`{"bin": {"aaa": "other.js", "webby": "main.js"}}`, 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "main.js", spec.Entry)
	assert.Nil(t, spec.Bootstrap)
}

func TestManifest_PackageJSONBinMapFirstEntry(t *testing.T) {
	fs, appDir := newAppDir(t, "webby")
	addFile(t, fs, filepath.Join(appDir, "package.json"),
		`{"bin": {"zzz": "z.js", "aaa": "a.js"}}`, 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "a.js", spec.Entry)
}

func TestManifest_PackageJSONStartScript(t *testing.T) {
	fs, appDir := newAppDir(t, "server")
	addFile(t, fs, filepath.Join(appDir, "package.json"),
		`{"scripts": {"start": "node server.js"}}`, 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "npm", spec.Interpreter)
	assert.Equal(t, []string{"run", "start", "--"}, spec.Args)
	assert.Equal(t, ".", spec.WorkDir)
}

func TestManifest_PyprojectScriptWithModuleFile(t *testing.T) {
	fs, appDir := newAppDir(t, "notes")
	addFile(t, fs, filepath.Join(appDir, "pyproject.toml"),
		"[project]\nname = \"notes\"\n\n[project.scripts]\nnotes = \"notes:main\"\n", 0644)
	addFile(t, fs, filepath.Join(appDir, "notes.py"), "def main(): pass\n", 0644)
	addFile(t, fs, filepath.Join(appDir, "requirements.txt"), "click\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "python3", spec.Interpreter)
	assert.Equal(t, "notes.py", spec.Entry)
	require.NotNil(t, spec.Bootstrap)
	assert.Equal(t, "python", spec.Bootstrap.Runtime)
	assert.Equal(t, "requirements.txt", spec.Bootstrap.DepsFile)
}

func TestManifest_PyprojectScriptModuleFallback(t *testing.T) {
	fs, appDir := newAppDir(t, "notes")
	addFile(t, fs, filepath.Join(appDir, "pyproject.toml"),
		"[project]\nname = \"notes\"\n\n[project.scripts]\nnotes = \"notes.cli:main\"\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "python3", spec.Interpreter)
	assert.Empty(t, spec.Entry)
	assert.Equal(t, []string{"-m", "notes.cli"}, spec.Args)
	require.NotNil(t, spec.Bootstrap)
	assert.Equal(t, "pyproject.toml", spec.Bootstrap.DepsFile)
}

func TestSourceNames_AppNameBeatsMain(t *testing.T) {
	fs, appDir := newAppDir(t, "greet")
	addFile(t, fs, filepath.Join(appDir, "main.py"), "print('main')\n", 0644)
	addFile(t, fs, filepath.Join(appDir, "greet.py"), "print('greet')\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "greet.py", spec.Entry)
}

func TestSourceNames_SrcRoot(t *testing.T) {
	fs, appDir := newAppDir(t, "tool")
	addFile(t, fs, filepath.Join(appDir, "src", "main.js"), "console.log(1)\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("src", "main.js"), spec.Entry)
	assert.Equal(t, "node", spec.Interpreter)
}

func TestSourceNames_NormalizedRepoName(t *testing.T) {
	fs, appDir := newAppDir(t, "greet-master")
	addFile(t, fs, filepath.Join(appDir, "greet.sh"), "echo hi\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "greet.sh", spec.Entry)
	assert.Equal(t, "sh", spec.Interpreter)
}

func TestSoleRootSource(t *testing.T) {
	fs, appDir := newAppDir(t, "oddname")
	addFile(t, fs, filepath.Join(appDir, "runner.py"), "print('x')\n", 0644)
	addFile(t, fs, filepath.Join(appDir, "README.md"), "# docs\n", 0644)

	spec, err := detect.Detect(fs, appDir)
	require.NoError(t, err)

	assert.Equal(t, "runner.py", spec.Entry)
	assert.Equal(t, "python3", spec.Interpreter)
}

func TestSoleRootSource_AmbiguousDoesNotFire(t *testing.T) {
	fs, appDir := newAppDir(t, "oddname")
	addFile(t, fs, filepath.Join(appDir, "one.py"), "pass\n", 0644)
	addFile(t, fs, filepath.Join(appDir, "two.py"), "pass\n", 0644)

	_, err := detect.Detect(fs, appDir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoEntryResolved))
}

func TestBinDirCandidate_TieBreak(t *testing.T) {
	t.Run("exact_match", func(t *testing.T) {
		fs, appDir := newAppDir(t, "tool")
		addFile(t, fs, filepath.Join(appDir, "exe", "tool"), "bin\n", 0755)
		addFile(t, fs, filepath.Join(appDir, "exe", "tool-helper"), "bin\n", 0755)

		strategy := &detect.BinDirCandidate{}
		spec, err := strategy.TryDetect(fs, appDir, "tool")
		require.NoError(t, err)
		require.NotNil(t, spec)
		assert.Equal(t, filepath.Join("exe", "tool"), spec.Entry)
	})

	t.Run("prefix_match", func(t *testing.T) {
		fs, appDir := newAppDir(t, "tool")
		addFile(t, fs, filepath.Join(appDir, "exe", "tool-x86"), "bin\n", 0755)
		addFile(t, fs, filepath.Join(appDir, "exe", "other"), "bin\n", 0755)

		strategy := &detect.BinDirCandidate{}
		spec, err := strategy.TryDetect(fs, appDir, "tool")
		require.NoError(t, err)
		require.NotNil(t, spec)
		assert.Equal(t, filepath.Join("exe", "tool-x86"), spec.Entry)
	})

	t.Run("sole_candidate", func(t *testing.T) {
		fs, appDir := newAppDir(t, "tool")
		addFile(t, fs, filepath.Join(appDir, "exe", "something"), "bin\n", 0755)

		strategy := &detect.BinDirCandidate{}
		spec, err := strategy.TryDetect(fs, appDir, "tool")
		require.NoError(t, err)
		require.NotNil(t, spec)
		assert.Equal(t, filepath.Join("exe", "something"), spec.Entry)
	})

	t.Run("multiple_without_match", func(t *testing.T) {
		fs, appDir := newAppDir(t, "tool")
		addFile(t, fs, filepath.Join(appDir, "exe", "alpha"), "bin\n", 0755)
		addFile(t, fs, filepath.Join(appDir, "exe", "beta"), "bin\n", 0755)

		strategy := &detect.BinDirCandidate{}
		spec, err := strategy.TryDetect(fs, appDir, "tool")
		require.NoError(t, err)
		assert.Nil(t, spec)
	})
}

func TestDetect_Unresolved(t *testing.T) {
	fs, appDir := newAppDir(t, "empty")

	_, err := detect.Detect(fs, appDir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoEntryResolved))
}
