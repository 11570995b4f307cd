package detect

import (
	"path/filepath"

	"github.com/arthur-debert/doapp/pkg/types"
)

// ConventionalBin is rule 1: an executable bin/<name> inside the app
// directory. Such apps bypass all shim machinery beyond a trivial exec.
type ConventionalBin struct{}

func (c *ConventionalBin) Name() string { return "conventional-bin" }

func (c *ConventionalBin) TryDetect(fsys types.FS, appDir, name string) (*types.EntrySpec, error) {
	rel := filepath.Join("bin", name)
	if !isExecutable(fsys, filepath.Join(appDir, rel)) {
		return nil, nil
	}
	return &types.EntrySpec{Entry: rel}, nil
}
