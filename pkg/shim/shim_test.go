package shim_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/doapp/pkg/filesystem"
	"github.com/arthur-debert/doapp/pkg/shim"
	"github.com/arthur-debert/doapp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/syntax"
)

func parseShim(t *testing.T, content []byte) {
	t.Helper()
	_, err := syntax.NewParser().Parse(strings.NewReader(string(content)), "shim")
	require.NoError(t, err, "rendered shim must be valid POSIX shell")
}

func TestRender_Deterministic(t *testing.T) {
	spec := &types.EntrySpec{Interpreter: "python3", Entry: "main.py"}

	first, err := shim.Render("tool", "/store/tool", spec)
	require.NoError(t, err)
	second, err := shim.Render("tool", "/store/tool", spec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_DirectVariant(t *testing.T) {
	spec := &types.EntrySpec{Entry: "bin/tool"}

	content, err := shim.Render("tool", "/store/tool", spec)
	require.NoError(t, err)
	parseShim(t, content)

	text := string(content)
	assert.True(t, strings.HasPrefix(text, "#!/bin/sh\n"))
	assert.Contains(t, text, shim.Marker)
	assert.Contains(t, text, "APP_DIR='/store/tool'")
	assert.Contains(t, text, "ENTRY='bin/tool'")
	assert.Contains(t, text, "INTERP=''")
	assert.Contains(t, text, `exec "$APP_DIR/$ENTRY" "$@"`)
}

func TestRender_BootstrappedVariant(t *testing.T) {
	spec := &types.EntrySpec{
		Interpreter: "python3",
		Entry:       "main.py",
		Bootstrap:   &types.BootstrapSpec{Runtime: "python", DepsFile: "requirements.txt"},
	}

	content, err := shim.Render("notes", "/store/notes", spec)
	require.NoError(t, err)
	parseShim(t, content)

	text := string(content)
	assert.Contains(t, text, "BOOTSTRAP='python'")
	assert.Contains(t, text, "DEPS_FILE='requirements.txt'")
	assert.Contains(t, text, "python3 -m venv")
	// Bootstrap failures must never abort the launch
	assert.Contains(t, text, "|| true")
}

func TestRender_FixedArgs(t *testing.T) {
	spec := &types.EntrySpec{
		Interpreter: "npm",
		Args:        []string{"run", "start", "--"},
		WorkDir:     ".",
	}

	content, err := shim.Render("server", "/store/server", spec)
	require.NoError(t, err)
	parseShim(t, content)

	assert.Contains(t, string(content), `set -- 'run' 'start' '--' "$@"`)
}

func TestRender_QuotingHostilePaths(t *testing.T) {
	spec := &types.EntrySpec{Entry: "bin/o'brien tool"}

	content, err := shim.Render("obrien", `/store/o'brien apps/obrien`, spec)
	require.NoError(t, err)
	parseShim(t, content)

	text := string(content)
	assert.Contains(t, text, `APP_DIR='/store/o'\''brien apps/obrien'`)
	assert.Contains(t, text, `ENTRY='bin/o'\''brien tool'`)
}

func TestWrite_AtomicAndExecutable(t *testing.T) {
	fs := filesystem.NewOS()
	binDir := t.TempDir()
	binPath := filepath.Join(binDir, "tool")
	spec := &types.EntrySpec{Entry: "bin/tool"}

	require.NoError(t, fs.MkdirAll(binDir, 0755))
	require.NoError(t, shim.Write(fs, binPath, "tool", "/store/tool", spec))

	info, err := fs.Stat(binPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0111)

	// No temp leftovers
	entries, err := fs.ReadDir(binDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.True(t, shim.IsShim(fs, binPath))
}

func TestIsShim_PlainCommandIsNot(t *testing.T) {
	fs := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "hello")
	require.NoError(t, fs.WriteFile(path, []byte("#!/bin/sh\necho hello\n"), 0755))

	assert.False(t, shim.IsShim(fs, path))
}
