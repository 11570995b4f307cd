// Package snapshot captures and restores full copies of the managed
// directories (bin dir + app store). A snapshot is taken before every
// mutating operation and is the sole recovery mechanism: snapshots are
// never auto-pruned by doapp.
package snapshot

import (
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/doapp/internal/version"
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/logging"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/types"
)

const (
	// IDFormat is the timestamp layout of snapshot identifiers.
	// Nanosecond precision keeps ids unique and lexicographically
	// ordered even for back-to-back batches.
	IDFormat = "20060102-150405.000000000"

	// MetadataFile sits at the root of every snapshot
	MetadataFile = "metadata.yaml"

	binSubdir  = "bin"
	appsSubdir = "apps"
)

// Metadata records where a snapshot came from.
type Metadata struct {
	CreatedAt   time.Time `yaml:"created_at"`
	ToolVersion string    `yaml:"tool_version"`
	Scope       string    `yaml:"scope"`
	BinDir      string    `yaml:"bin_dir"`
	AppStore    string    `yaml:"app_store"`
}

// RestoreReport describes what a Restore merged back.
type RestoreReport struct {
	Bin  *fsutil.MergeResult
	Apps *fsutil.MergeResult
}

// Manager takes and restores snapshots for one scope.
type Manager struct {
	fs    types.FS
	paths paths.Paths
}

// NewManager creates a snapshot manager over the given scope's paths.
func NewManager(fsys types.FS, p paths.Paths) *Manager {
	return &Manager{fs: fsys, paths: p}
}

// Take copies the bin dir and app store into a new timestamp-identified
// snapshot and returns its id. Missing live directories snapshot as
// empty. Any failure here must abort the enclosing operation.
func (m *Manager) Take() (string, error) {
	logger := logging.GetLogger("snapshot")
	id := time.Now().UTC().Format(IDFormat)
	dir := filepath.Join(m.paths.SnapshotRoot(), id)

	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrSnapshotFailed, "cannot create snapshot %s", id)
	}

	for live, sub := range map[string]string{
		m.paths.BinDir():   binSubdir,
		m.paths.AppStore(): appsSubdir,
	} {
		dst := filepath.Join(dir, sub)
		if fsutil.IsDir(m.fs, live) {
			if err := fsutil.CopyTree(m.fs, live, dst); err != nil {
				return "", errors.Wrapf(err, errors.ErrSnapshotFailed, "cannot copy %s", live)
			}
		} else if err := m.fs.MkdirAll(dst, 0755); err != nil {
			return "", errors.Wrapf(err, errors.ErrSnapshotFailed, "cannot create %s", dst)
		}
	}

	meta := Metadata{
		CreatedAt:   time.Now().UTC(),
		ToolVersion: version.Version,
		Scope:       string(m.paths.Scope()),
		BinDir:      m.paths.BinDir(),
		AppStore:    m.paths.AppStore(),
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrSnapshotFailed, "cannot marshal metadata")
	}
	if err := m.fs.WriteFile(filepath.Join(dir, MetadataFile), data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrSnapshotFailed, "cannot write metadata")
	}

	logger.Info().Str("id", id).Msg("snapshot taken")
	return id, nil
}

// List returns all snapshot ids, oldest first.
func (m *Manager) List() ([]string, error) {
	entries, err := m.fs.ReadDir(m.paths.SnapshotRoot())
	if err != nil {
		// No snapshot root yet means no snapshots
		return nil, nil
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Latest returns the most recent snapshot id, if any exists.
func (m *Manager) Latest() (string, bool) {
	ids, err := m.List()
	if err != nil || len(ids) == 0 {
		return "", false
	}
	return ids[len(ids)-1], true
}

// Metadata reads a snapshot's metadata.
func (m *Manager) Metadata(id string) (*Metadata, error) {
	data, err := m.fs.ReadFile(filepath.Join(m.paths.SnapshotRoot(), id, MetadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "snapshot %s has no metadata", id)
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "snapshot %s metadata is malformed", id)
	}
	return &meta, nil
}

// Restore merges a snapshot's bin/apps back into the live directories.
// Existing entries are skipped unless force is set. A fresh snapshot is
// taken first, so the restore itself can be undone.
func (m *Manager) Restore(id string, force bool) (*RestoreReport, error) {
	logger := logging.GetLogger("snapshot")
	src := filepath.Join(m.paths.SnapshotRoot(), id)
	if !fsutil.IsDir(m.fs, src) {
		return nil, errors.Newf(errors.ErrNotFound, "snapshot %q does not exist", id)
	}

	if _, err := m.Take(); err != nil {
		return nil, err
	}

	report := &RestoreReport{}
	var err error
	if report.Bin, err = fsutil.MergeDir(m.fs, filepath.Join(src, binSubdir), m.paths.BinDir(), force); err != nil {
		return nil, err
	}
	if report.Apps, err = fsutil.MergeDir(m.fs, filepath.Join(src, appsSubdir), m.paths.AppStore(), force); err != nil {
		return nil, err
	}

	// Copies preserve modes, but re-assert the execute bit on bin
	// entries anyway; snapshots may predate that guarantee.
	for _, name := range append(report.Bin.Copied, report.Bin.Replaced...) {
		if err := fsutil.EnsureExecutable(m.fs, m.paths.BinPath(name)); err != nil {
			return nil, err
		}
	}

	logger.Info().Str("id", id).Bool("force", force).
		Int("binRestored", len(report.Bin.Copied)+len(report.Bin.Replaced)).
		Int("appsRestored", len(report.Apps.Copied)+len(report.Apps.Replaced)).
		Msg("snapshot restored")
	return report, nil
}
