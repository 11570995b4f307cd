package archive

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/doapp/internal/version"
	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/logging"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Packer serializes managed state into archives.
type Packer struct {
	fs     types.FS
	paths  paths.Paths
	format string
}

// NewPacker creates a packer using the given compression format
// ("zst" preferred, "gz" fallback).
func NewPacker(fsys types.FS, p paths.Paths, format string) (*Packer, error) {
	if _, err := extensionFor(format); err != nil {
		return nil, err
	}
	return &Packer{fs: fsys, paths: p, format: format}, nil
}

// Pack copies the selected entries plus a manifest into a scratch tree
// and compresses it. dest may omit the format extension; the final
// path, named by the chosen format's extension, is returned.
func (p *Packer) Pack(selection Selection, dest string) (string, error) {
	logger := logging.GetLogger("archive")
	defer logging.LogOperationStart(logger, "pack")()

	ext, err := extensionFor(p.format)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(dest, ext) {
		dest += ext
	}

	scratch, err := os.MkdirTemp("", "doapp-pack-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot create scratch dir")
	}
	defer os.RemoveAll(scratch)

	if selection.Everything {
		err = p.stageEverything(scratch)
	} else {
		err = p.stageItems(scratch, selection.Items)
	}
	if err != nil {
		return "", err
	}

	if err := p.writeManifest(scratch, selection); err != nil {
		return "", err
	}
	if err := writeTarball(scratch, dest, p.format); err != nil {
		return "", err
	}

	logger.Info().Str("dest", dest).Str("format", p.format).Msg("archive packed")
	return dest, nil
}

// stageEverything copies the full bin dir and app store.
func (p *Packer) stageEverything(scratch string) error {
	for live, sub := range map[string]string{
		p.paths.BinDir():   binSubdir,
		p.paths.AppStore(): appsSubdir,
	} {
		dst := filepath.Join(scratch, sub)
		if fsutil.IsDir(p.fs, live) {
			if err := fsutil.CopyTree(p.fs, live, dst); err != nil {
				return err
			}
		} else if err := os.MkdirAll(dst, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
		}
	}
	return nil
}

// stageItems copies explicit items: a Command is its bin file, an App
// is its store directory plus its shim.
func (p *Packer) stageItems(scratch string, items []ItemRef) error {
	for _, item := range items {
		binSrc := p.paths.BinPath(item.Name)
		binDst := filepath.Join(scratch, binSubdir, item.Name)

		switch item.Kind {
		case types.KindCommand:
			if !fsutil.LExists(p.fs, binSrc) {
				return errors.Newf(errors.ErrNotFound, "command %q is not installed", item.Name)
			}
			if err := fsutil.CopyFile(p.fs, binSrc, binDst); err != nil {
				return err
			}
		case types.KindApp:
			appSrc := p.paths.AppDir(item.Name)
			if !fsutil.IsDir(p.fs, appSrc) {
				return errors.Newf(errors.ErrNotFound, "app %q is not installed", item.Name)
			}
			if err := fsutil.CopyTree(p.fs, appSrc, filepath.Join(scratch, appsSubdir, item.Name)); err != nil {
				return err
			}
			if fsutil.LExists(p.fs, binSrc) {
				if err := fsutil.CopyFile(p.fs, binSrc, binDst); err != nil {
					return err
				}
			}
		default:
			return errors.Newf(errors.ErrInvalidInput, "unknown item kind %q", item.Kind)
		}
	}
	return nil
}

func (p *Packer) writeManifest(scratch string, selection Selection) error {
	manifest := Manifest{
		ToolVersion: version.Version,
		Scope:       string(p.paths.Scope()),
		Everything:  selection.Everything,
		Items:       selection.Items,
	}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot marshal manifest")
	}
	if err := os.WriteFile(filepath.Join(scratch, ManifestFile), data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write manifest")
	}
	return nil
}
