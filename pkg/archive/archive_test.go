package archive_test

import (
	"archive/tar"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/arthur-debert/doapp/pkg/archive"
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/snapshot"
	"github.com/arthur-debert/doapp/pkg/testutil"
	"github.com/arthur-debert/doapp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRestorer(env *testutil.Env) *archive.Restorer {
	return archive.NewRestorer(env.FS, env.Paths, snapshot.NewManager(env.FS, env.Paths))
}

func TestPack_RoundTripEverything(t *testing.T) {
	for _, format := range []string{archive.FormatZstd, archive.FormatGzip} {
		t.Run(format, func(t *testing.T) {
			env := testutil.NewEnv(t)
			env.WriteScript(filepath.Join(env.BinDir, "hello"), "#!/bin/sh\necho hi\n")
			env.WriteFile(filepath.Join(env.AppStore, "notes", "main.py"), "print('x')\n", 0644)

			packer, err := archive.NewPacker(env.FS, env.Paths, format)
			require.NoError(t, err)

			dest, err := packer.Pack(archive.SelectEverything(), filepath.Join(t.TempDir(), "backup"))
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(dest, ".tar."+format))

			// Mutate state, then force-restore: pack-time content wins
			require.NoError(t, env.FS.Remove(filepath.Join(env.BinDir, "hello")))
			env.WriteScript(filepath.Join(env.BinDir, "hello"), "#!/bin/sh\necho changed\n")
			require.NoError(t, env.FS.RemoveAll(filepath.Join(env.AppStore, "notes")))

			report, err := newRestorer(env).Restore(dest, true)
			require.NoError(t, err)
			require.NotEmpty(t, report.SnapshotID)

			assert.Equal(t, "#!/bin/sh\necho hi\n", env.ReadFile(filepath.Join(env.BinDir, "hello")))
			assert.Equal(t, "print('x')\n", env.ReadFile(filepath.Join(env.AppStore, "notes", "main.py")))
		})
	}
}

func TestPack_ExplicitSelection(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteScript(filepath.Join(env.BinDir, "keep"), "#!/bin/sh\n")
	env.WriteScript(filepath.Join(env.BinDir, "drop"), "#!/bin/sh\n")
	env.WriteFile(filepath.Join(env.AppStore, "notes", "main.py"), "pass\n", 0644)
	env.WriteScript(filepath.Join(env.BinDir, "notes"), "#!/bin/sh\n# doapp:shim v1\n")

	packer, err := archive.NewPacker(env.FS, env.Paths, archive.FormatZstd)
	require.NoError(t, err)

	dest, err := packer.Pack(archive.SelectItems(
		archive.ItemRef{Kind: types.KindCommand, Name: "keep"},
		archive.ItemRef{Kind: types.KindApp, Name: "notes"},
	), filepath.Join(t.TempDir(), "partial"))
	require.NoError(t, err)

	// Restore into a clean environment
	fresh := testutil.NewEnv(t)
	_, err = newRestorer(fresh).Restore(dest, false)
	require.NoError(t, err)

	assert.True(t, fsutil.Exists(fresh.FS, filepath.Join(fresh.BinDir, "keep")))
	assert.True(t, fsutil.Exists(fresh.FS, filepath.Join(fresh.BinDir, "notes")))
	assert.True(t, fsutil.Exists(fresh.FS, filepath.Join(fresh.AppStore, "notes", "main.py")))
	assert.False(t, fsutil.Exists(fresh.FS, filepath.Join(fresh.BinDir, "drop")))
}

func TestPack_MissingItem(t *testing.T) {
	env := testutil.NewEnv(t)
	packer, err := archive.NewPacker(env.FS, env.Paths, archive.FormatZstd)
	require.NoError(t, err)

	_, err = packer.Pack(archive.SelectItems(
		archive.ItemRef{Kind: types.KindCommand, Name: "ghost"},
	), filepath.Join(t.TempDir(), "x"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestNewPacker_UnknownFormat(t *testing.T) {
	env := testutil.NewEnv(t)
	_, err := archive.NewPacker(env.FS, env.Paths, "rar")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedArchiveFormat))
}

func TestRestore_MergeSkipsWithoutForce(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteScript(filepath.Join(env.BinDir, "hello"), "#!/bin/sh\necho packed\n")

	packer, err := archive.NewPacker(env.FS, env.Paths, archive.FormatZstd)
	require.NoError(t, err)
	dest, err := packer.Pack(archive.SelectEverything(), filepath.Join(t.TempDir(), "b"))
	require.NoError(t, err)

	env.WriteScript(filepath.Join(env.BinDir, "hello"), "#!/bin/sh\necho live\n")

	report, err := newRestorer(env).Restore(dest, false)
	require.NoError(t, err)

	assert.Contains(t, report.Bin.Skipped, "hello")
	assert.Equal(t, "#!/bin/sh\necho live\n", env.ReadFile(filepath.Join(env.BinDir, "hello")))
}

func TestRestore_ReassertsExecuteBit(t *testing.T) {
	env := testutil.NewEnv(t)
	// Packed without the execute bit
	env.WriteFile(filepath.Join(env.BinDir, "tool"), "#!/bin/sh\n", 0644)

	packer, err := archive.NewPacker(env.FS, env.Paths, archive.FormatGzip)
	require.NoError(t, err)
	dest, err := packer.Pack(archive.SelectEverything(), filepath.Join(t.TempDir(), "b"))
	require.NoError(t, err)

	require.NoError(t, env.FS.Remove(filepath.Join(env.BinDir, "tool")))
	_, err = newRestorer(env).Restore(dest, false)
	require.NoError(t, err)

	info, err := env.FS.Stat(filepath.Join(env.BinDir, "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0111)
}

func TestRestore_UnsupportedExtension(t *testing.T) {
	env := testutil.NewEnv(t)
	path := filepath.Join(t.TempDir(), "backup.rar")
	env.WriteFile(path, "junk", 0644)

	_, err := newRestorer(env).Restore(path, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedArchiveFormat))
}

// writeArchive builds a .tar.zst with the given entries, so tests can
// shape trees the packer itself never produces.
func writeArchive(t *testing.T, dest string, entries map[string]string) {
	t.Helper()
	out, err := os.Create(dest)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(out)
	require.NoError(t, err)
	tw := tar.NewWriter(zw)

	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		content := entries[name]
		if strings.HasSuffix(name, "/") {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name: name, Typeflag: tar.TypeDir, Mode: 0755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Typeflag: tar.TypeReg, Mode: 0755, Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
}

func TestRestore_NestedRoot(t *testing.T) {
	env := testutil.NewEnv(t)

	// The managed tree sits one directory down from the archive top level
	dest := filepath.Join(t.TempDir(), "backup.tar.zst")
	writeArchive(t, dest, map[string]string{
		"backup/":          "",
		"backup/bin/":      "",
		"backup/bin/hello": "#!/bin/sh\necho nested\n",
	})

	report, err := newRestorer(env).Restore(dest, false)
	require.NoError(t, err)

	assert.Contains(t, report.Bin.Copied, "hello")
	assert.Equal(t, "#!/bin/sh\necho nested\n", env.ReadFile(filepath.Join(env.BinDir, "hello")))
}

func TestRestore_NoManagedTreeAnywhere(t *testing.T) {
	env := testutil.NewEnv(t)

	dest := filepath.Join(t.TempDir(), "junk.tar.zst")
	writeArchive(t, dest, map[string]string{
		"stuff/":         "",
		"stuff/note.txt": "not a doapp tree\n",
	})

	_, err := newRestorer(env).Restore(dest, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveShape))
}

func TestRestore_TakesSnapshotFirst(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteScript(filepath.Join(env.BinDir, "precious"), "#!/bin/sh\necho precious\n")

	packer, err := archive.NewPacker(env.FS, env.Paths, archive.FormatZstd)
	require.NoError(t, err)
	dest, err := packer.Pack(archive.SelectEverything(), filepath.Join(t.TempDir(), "b"))
	require.NoError(t, err)

	report, err := newRestorer(env).Restore(dest, true)
	require.NoError(t, err)

	// The pre-restore snapshot captured the live state
	snapPath := filepath.Join(env.SnapshotRoot, report.SnapshotID, "bin", "precious")
	assert.True(t, fsutil.Exists(env.FS, snapPath))
}
