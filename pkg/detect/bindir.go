package detect

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/doapp/pkg/types"
)

// Executable directories searched by rule 5.
var execDirs = []string{"bin", "exe"}

// BinDirCandidate is rule 5: an executable under bin/ or exe/ whose
// name matches the normalized app name, or the sole executable if
// exactly one exists. Tie-break order: exact > prefix > sole.
type BinDirCandidate struct{}

func (b *BinDirCandidate) Name() string { return "bin-dir-candidate" }

func (b *BinDirCandidate) TryDetect(fsys types.FS, appDir, name string) (*types.EntrySpec, error) {
	for _, dir := range execDirs {
		var exact, prefix string
		var candidates []string

		for _, entry := range listDir(fsys, filepath.Join(appDir, dir)) {
			if entry.IsDir() {
				continue
			}
			rel := filepath.Join(dir, entry.Name())
			if !isExecutable(fsys, filepath.Join(appDir, rel)) {
				continue
			}
			candidates = append(candidates, rel)

			normalized := NormalizeName(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
			if normalized == name && exact == "" {
				exact = rel
			} else if strings.HasPrefix(normalized, name) && prefix == "" {
				prefix = rel
			}
		}

		switch {
		case exact != "":
			return &types.EntrySpec{Entry: exact}, nil
		case prefix != "":
			return &types.EntrySpec{Entry: prefix}, nil
		case len(candidates) == 1:
			return &types.EntrySpec{Entry: candidates[0]}, nil
		}
	}

	return nil, nil
}
