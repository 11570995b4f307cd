package detect

import (
	"path/filepath"

	"github.com/arthur-debert/doapp/pkg/types"
)

// Typical source roots, searched in order. "." must come first so a
// root-level main beats one buried in src/.
var sourceRoots = []string{".", "src", "lib", "app"}

// Conventional entry basenames, after the normalized app name itself.
var conventionalNames = []string{"main", "app", "cli", "start"}

// SourceNames is rule 3: conventional source filenames in typical
// source roots. The normalized app name beats the generic names.
type SourceNames struct{}

func (s *SourceNames) Name() string { return "source-names" }

func (s *SourceNames) TryDetect(fsys types.FS, appDir, name string) (*types.EntrySpec, error) {
	candidates := append([]string{name}, conventionalNames...)

	for _, root := range sourceRoots {
		for _, base := range candidates {
			for _, ext := range sourceExts {
				rel := filepath.Join(root, base+ext)
				if root == "." {
					rel = base + ext
				}
				if _, err := fsys.Stat(filepath.Join(appDir, rel)); err == nil {
					return specForSource(fsys, appDir, rel), nil
				}
			}
		}
	}

	return nil, nil
}
