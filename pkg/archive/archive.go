// Package archive serializes managed state (bin dir + app store) to a
// portable compressed tarball and merges it back. The preferred codec
// is zstd; gzip is the documented fallback and restore dispatches on
// the file extension alone.
package archive

import (
	"strings"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/types"
)

// Supported formats and their extensions.
const (
	FormatZstd = "zst"
	FormatGzip = "gz"

	ExtZstd = ".tar.zst"
	ExtGzip = ".tar.gz"

	// ManifestFile describes an archive's contents at its root
	ManifestFile = "manifest.yaml"

	binSubdir  = "bin"
	appsSubdir = "apps"
)

// extensionFor maps a format to its output extension.
func extensionFor(format string) (string, error) {
	switch format {
	case FormatZstd:
		return ExtZstd, nil
	case FormatGzip:
		return ExtGzip, nil
	default:
		return "", errors.Newf(errors.ErrUnsupportedArchiveFormat,
			"unknown archive format %q (want %q or %q)", format, FormatZstd, FormatGzip)
	}
}

// formatFor dispatches on an archive path's extension.
func formatFor(path string) (string, error) {
	switch {
	case strings.HasSuffix(path, ExtZstd):
		return FormatZstd, nil
	case strings.HasSuffix(path, ExtGzip), strings.HasSuffix(path, ".tgz"):
		return FormatGzip, nil
	default:
		return "", errors.Newf(errors.ErrUnsupportedArchiveFormat,
			"cannot restore %q: unsupported extension", path)
	}
}

// ItemRef selects one managed item for packing.
type ItemRef struct {
	Kind types.ItemKind `yaml:"kind"`
	Name string         `yaml:"name"`
}

// Selection chooses what goes into an archive: everything, or an
// explicit set of items.
type Selection struct {
	Everything bool
	Items      []ItemRef
}

// SelectEverything packs the full managed state.
func SelectEverything() Selection {
	return Selection{Everything: true}
}

// SelectItems packs an explicit set of items.
func SelectItems(items ...ItemRef) Selection {
	return Selection{Items: items}
}

// Manifest is written at the archive root.
type Manifest struct {
	ToolVersion string    `yaml:"tool_version"`
	Scope       string    `yaml:"scope"`
	Everything  bool      `yaml:"everything"`
	Items       []ItemRef `yaml:"items,omitempty"`
}
