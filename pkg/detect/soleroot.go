package detect

import (
	"github.com/arthur-debert/doapp/pkg/types"
)

// SoleRootSource is rule 4: exactly one recognized source file sits at
// the directory root, so there is nothing to disambiguate.
type SoleRootSource struct{}

func (s *SoleRootSource) Name() string { return "sole-root-source" }

func (s *SoleRootSource) TryDetect(fsys types.FS, appDir, name string) (*types.EntrySpec, error) {
	var sole string
	for _, entry := range listDir(fsys, appDir) {
		if entry.IsDir() {
			continue
		}
		if interpreterFor(entry.Name()) == "" {
			continue
		}
		if sole != "" {
			// Ambiguous: two or more candidates
			return nil, nil
		}
		sole = entry.Name()
	}

	if sole == "" {
		return nil, nil
	}
	return specForSource(fsys, appDir, sole), nil
}
