package install

import (
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/logging"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/snapshot"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Uninstaller removes managed items by name.
type Uninstaller struct {
	fs        types.FS
	paths     paths.Paths
	snapshots *snapshot.Manager
}

// NewUninstaller creates an uninstaller for one scope.
func NewUninstaller(fsys types.FS, p paths.Paths, snapshots *snapshot.Manager) *Uninstaller {
	return &Uninstaller{fs: fsys, paths: p, snapshots: snapshots}
}

// Uninstall removes each named item in order. Names that resolve to
// nothing are recorded as skips, not failures: uninstalling twice is
// harmless. Like installs, the batch runs behind one snapshot.
func (u *Uninstaller) Uninstall(names []string) (*types.BatchResult, error) {
	logger := logging.GetLogger("uninstall")
	defer logging.LogOperationStart(logger, "uninstall batch")()

	if len(names) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no names given")
	}

	snapshotID, err := u.snapshots.Take()
	if err != nil {
		return nil, err
	}

	result := &types.BatchResult{SnapshotID: snapshotID}
	for _, name := range names {
		u.uninstallOne(name, result)
	}

	logger.Info().
		Int("removed", result.Installed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Str("snapshot", snapshotID).
		Msg("uninstall batch finished")
	return result, nil
}

// uninstallOne removes one item: an app loses its shim and store
// directory, a command loses its bin file.
func (u *Uninstaller) uninstallOne(name string, result *types.BatchResult) {
	binPath := u.paths.BinPath(name)
	appDir := u.paths.AppDir(name)

	isApp := fsutil.LExists(u.fs, appDir)
	isCommand := !isApp && fsutil.LExists(u.fs, binPath)

	if !isApp && !isCommand {
		result.AddSkipped(name, name, errors.ErrNotFound, name+" is not installed")
		return
	}

	// Shim first: once it is gone, nothing launches a half-removed app
	if fsutil.LExists(u.fs, binPath) {
		if err := u.fs.Remove(binPath); err != nil {
			result.AddFailed(name, name, errors.Code(err, errors.ErrFileWrite), err.Error())
			return
		}
	}
	if isApp {
		if err := u.fs.RemoveAll(appDir); err != nil {
			result.AddFailed(name, name, errors.Code(err, errors.ErrFileWrite), err.Error())
			return
		}
	}

	result.AddCommitted(name, name)
}
