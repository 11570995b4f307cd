package install

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/doapp/pkg/detect"
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/fetch"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/logging"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/shim"
	"github.com/arthur-debert/doapp/pkg/snapshot"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Options control one install batch.
type Options struct {
	// Force replaces existing items instead of skipping them
	Force bool

	// LinkMode controls how app directories land in the store.
	// Defaults to copy; symlink is only valid for the user scope.
	LinkMode types.LinkMode

	// Name overrides the derived item name. Only valid for
	// single-source batches.
	Name string

	// Entry bypasses detection for directory sources. Only valid for
	// single-source batches.
	Entry *types.EntrySpec
}

// Installer runs install batches against one scope.
type Installer struct {
	fs        types.FS
	paths     paths.Paths
	snapshots *snapshot.Manager
	fetcher   fetch.Fetcher
}

// NewInstaller creates an installer. fetcher may be nil when remote
// sources are not needed.
func NewInstaller(fsys types.FS, p paths.Paths, snapshots *snapshot.Manager, fetcher fetch.Fetcher) *Installer {
	return &Installer{fs: fsys, paths: p, snapshots: snapshots, fetcher: fetcher}
}

// Install processes sources in order and returns the per-item outcomes.
// A source may be a file path, a directory path, or an http(s) URL.
// The returned error is non-nil only when the batch could not run at
// all (bad options, snapshot failure); per-item problems are reported
// in the BatchResult.
func (i *Installer) Install(ctx context.Context, sources []string, opts Options) (*types.BatchResult, error) {
	logger := logging.GetLogger("install")
	defer logging.LogOperationStart(logger, "install batch")()

	if len(sources) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no sources given")
	}
	if len(sources) > 1 && (opts.Name != "" || opts.Entry != nil) {
		return nil, errors.New(errors.ErrInvalidInput,
			"name and entry overrides only apply to single-source installs")
	}
	if opts.LinkMode == "" {
		opts.LinkMode = types.LinkCopy
	}
	if opts.LinkMode == types.LinkSymlink && i.paths.Scope() != types.ScopeUser {
		return nil, errors.New(errors.ErrInvalidInput, "symlink installs are user-scope only")
	}

	// One snapshot per batch; without it nothing mutates
	snapshotID, err := i.snapshots.Take()
	if err != nil {
		return nil, err
	}

	result := &types.BatchResult{SnapshotID: snapshotID}
	for _, source := range sources {
		i.installOne(ctx, source, opts, result)
	}

	logger.Info().
		Int("installed", result.Installed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Str("snapshot", snapshotID).
		Msg("install batch finished")
	return result, nil
}

// installOne routes a single source and records its outcome.
func (i *Installer) installOne(ctx context.Context, source string, opts Options, result *types.BatchResult) {
	localPath := source
	name := opts.Name

	if fetch.IsRemote(source) {
		if i.fetcher == nil {
			result.AddFailed(source, "", errors.ErrFetchFailed, "remote sources are not enabled")
			return
		}
		downloaded, suggested, err := i.fetcher.Fetch(ctx, source)
		if err != nil {
			result.AddFailed(source, "", errors.GetErrorCode(err), err.Error())
			return
		}
		defer func() { _ = os.Remove(downloaded) }()
		localPath = downloaded
		if name == "" {
			name = commandName(suggested)
		}
	}

	info, err := i.fs.Stat(localPath)
	if err != nil {
		result.AddFailed(source, name, errors.ErrNotFound, "source does not exist")
		return
	}

	if info.IsDir() {
		if name == "" {
			name = detect.NormalizeName(filepath.Base(localPath))
		}
		i.installDir(source, localPath, name, opts, result)
		return
	}

	if name == "" {
		name = commandName(filepath.Base(localPath))
	}
	i.installFile(source, localPath, name, opts, result)
}

// installFile places a single executable into the bin dir.
func (i *Installer) installFile(source, localPath, name string, opts Options, result *types.BatchResult) {
	binPath := i.paths.BinPath(name)
	appDir := i.paths.AppDir(name)

	exists := fsutil.LExists(i.fs, binPath) || fsutil.IsDir(i.fs, appDir)
	if exists && !opts.Force {
		result.AddSkipped(source, name, errors.ErrAlreadyExists,
			name+" is already installed (use force to replace)")
		return
	}

	// Reject broken shell scripts before touching the destination
	if err := checkShellSyntax(i.fs, localPath); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrUnknown), err.Error())
		return
	}

	data, err := i.fs.ReadFile(localPath)
	if err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrFileAccess), err.Error())
		return
	}

	if err := i.fs.MkdirAll(i.paths.BinDir(), 0755); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrDirCreate), err.Error())
		return
	}

	tmpPath := binPath + ".doapp-tmp"
	if err := i.fs.WriteFile(tmpPath, data, 0755); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrFileWrite), err.Error())
		return
	}
	if err := i.fs.Chmod(tmpPath, 0755); err != nil {
		_ = i.fs.Remove(tmpPath)
		result.AddFailed(source, name, errors.Code(err, errors.ErrFileWrite), err.Error())
		return
	}
	if err := i.fs.Rename(tmpPath, binPath); err != nil {
		_ = i.fs.Remove(tmpPath)
		result.AddFailed(source, name, errors.Code(err, errors.ErrFileWrite), err.Error())
		return
	}

	// A force-replace across kinds retires the old app directory
	if opts.Force && fsutil.IsDir(i.fs, appDir) {
		if err := i.fs.RemoveAll(appDir); err != nil {
			result.AddFailed(source, name, errors.Code(err, errors.ErrFileWrite), err.Error())
			return
		}
	}

	result.AddCommitted(source, name)
}

// installDir stages an app directory into the store and writes its shim.
func (i *Installer) installDir(source, localPath, name string, opts Options, result *types.BatchResult) {
	binPath := i.paths.BinPath(name)
	appDir := i.paths.AppDir(name)

	exists := fsutil.LExists(i.fs, appDir) || fsutil.LExists(i.fs, binPath)
	if exists && !opts.Force {
		result.AddSkipped(source, name, errors.ErrAlreadyExists,
			name+" is already installed (use force to replace)")
		return
	}

	spec := opts.Entry
	if spec == nil {
		detected, err := detect.Detect(i.fs, localPath)
		if err != nil {
			result.AddFailed(source, name, errors.Code(err, errors.ErrUnknown), err.Error())
			return
		}
		spec = detected
	}

	if err := i.fs.MkdirAll(i.paths.AppStore(), 0755); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrDirCreate), err.Error())
		return
	}

	if err := i.placeAppDir(localPath, appDir, opts.LinkMode); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrUnknown), err.Error())
		return
	}

	if err := i.fs.MkdirAll(i.paths.BinDir(), 0755); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrDirCreate), err.Error())
		return
	}
	if err := shim.Write(i.fs, binPath, name, appDir, spec); err != nil {
		result.AddFailed(source, name, errors.Code(err, errors.ErrUnknown), err.Error())
		return
	}

	result.AddCommitted(source, name)
}

// placeAppDir puts the source tree at appDir: a staged copy swapped in
// whole, or a symlink back to the source.
func (i *Installer) placeAppDir(localPath, appDir string, mode types.LinkMode) error {
	if mode == types.LinkSymlink {
		target, err := filepath.Abs(localPath)
		if err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "cannot resolve source path")
		}
		if err := i.fs.RemoveAll(appDir); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot clear %s", appDir)
		}
		if err := i.fs.Symlink(target, appDir); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot link %s", appDir)
		}
		return nil
	}

	// Copy to a sibling, then swap the whole directory in
	stage := appDir + ".doapp-stage"
	if err := i.fs.RemoveAll(stage); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot clear stage %s", stage)
	}
	if err := fsutil.CopyTree(i.fs, localPath, stage); err != nil {
		_ = i.fs.RemoveAll(stage)
		return err
	}
	if err := i.fs.RemoveAll(appDir); err != nil {
		_ = i.fs.RemoveAll(stage)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot clear %s", appDir)
	}
	if err := i.fs.Rename(stage, appDir); err != nil {
		_ = i.fs.RemoveAll(stage)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot swap in %s", appDir)
	}
	return nil
}

// commandName derives a command name from a file basename: the
// extension is dropped, the rest normalized.
func commandName(base string) string {
	return detect.NormalizeName(strings.TrimSuffix(base, filepath.Ext(base)))
}
