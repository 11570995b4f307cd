package archive

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/logging"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/snapshot"
	"github.com/arthur-debert/doapp/pkg/types"
)

// RestoreReport describes what a restore merged into the live dirs.
type RestoreReport struct {
	Bin  *fsutil.MergeResult
	Apps *fsutil.MergeResult

	// SnapshotID is the pre-restore snapshot
	SnapshotID string
}

// Restorer merges archives back into the managed directories.
type Restorer struct {
	fs        types.FS
	paths     paths.Paths
	snapshots *snapshot.Manager
}

// NewRestorer creates a restorer for one scope.
func NewRestorer(fsys types.FS, p paths.Paths, snapshots *snapshot.Manager) *Restorer {
	return &Restorer{fs: fsys, paths: p, snapshots: snapshots}
}

// Restore decompresses archivePath, locates the bin/apps root (the
// archive top level, or exactly one nested directory), and merges it
// into the live dirs: missing entries are copied in, existing ones are
// skipped unless force is set. The execute bit is re-asserted on every
// regular file placed into the bin dir. One snapshot is taken before
// anything mutates.
func (r *Restorer) Restore(archivePath string, force bool) (*RestoreReport, error) {
	logger := logging.GetLogger("archive")
	defer logging.LogOperationStart(logger, "restore")()

	// Validate the extension before doing any work
	if _, err := formatFor(archivePath); err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "doapp-restore-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot create scratch dir")
	}
	defer os.RemoveAll(scratch)

	if err := extractTarball(archivePath, scratch); err != nil {
		return nil, err
	}

	root, err := locateRoot(r.fs, scratch)
	if err != nil {
		return nil, err
	}

	// Mutation never proceeds without a snapshot
	snapshotID, err := r.snapshots.Take()
	if err != nil {
		return nil, err
	}

	report := &RestoreReport{SnapshotID: snapshotID}
	if report.Bin, err = fsutil.MergeDir(r.fs, filepath.Join(root, binSubdir), r.paths.BinDir(), force); err != nil {
		return nil, err
	}
	if report.Apps, err = fsutil.MergeDir(r.fs, filepath.Join(root, appsSubdir), r.paths.AppStore(), force); err != nil {
		return nil, err
	}

	// Archive formats may not preserve the execute bit
	for _, name := range append(report.Bin.Copied, report.Bin.Replaced...) {
		if err := fsutil.EnsureExecutable(r.fs, r.paths.BinPath(name)); err != nil {
			return nil, err
		}
	}

	for _, name := range report.Bin.Skipped {
		logger.Warn().Str("name", name).Msg("bin entry exists, skipped (use force to replace)")
	}
	for _, name := range report.Apps.Skipped {
		logger.Warn().Str("name", name).Msg("app exists, skipped (use force to replace)")
	}

	logger.Info().Str("archive", archivePath).Bool("force", force).
		Str("snapshot", snapshotID).Msg("archive restored")
	return report, nil
}

// locateRoot finds the directory holding bin/ or apps/: either the
// extracted top level, or exactly one nested directory of it.
func locateRoot(fsys types.FS, scratch string) (string, error) {
	if hasManagedShape(fsys, scratch) {
		return scratch, nil
	}

	entries, err := fsys.ReadDir(scratch)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", scratch)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) == 1 {
		nested := filepath.Join(scratch, dirs[0])
		if hasManagedShape(fsys, nested) {
			return nested, nil
		}
	}

	return "", errors.New(errors.ErrArchiveShape,
		"archive does not contain a bin/ or apps/ tree at its root or one level down")
}

func hasManagedShape(fsys types.FS, dir string) bool {
	return fsutil.IsDir(fsys, filepath.Join(dir, binSubdir)) ||
		fsutil.IsDir(fsys, filepath.Join(dir, appsSubdir))
}
