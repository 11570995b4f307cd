package install

import (
	"io/fs"
	"sort"
	"strings"

	"github.com/arthur-debert/doapp/pkg/detect"
	"github.com/arthur-debert/doapp/pkg/fsutil"
	"github.com/arthur-debert/doapp/pkg/inspect"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/shim"
	"github.com/arthur-debert/doapp/pkg/types"
)

// List derives the managed items of one scope from disk: every app
// store entry is an App, every other bin-dir file is a Command. Nothing
// is cached; versions and descriptions are re-extracted on each call.
func List(fsys types.FS, p paths.Paths) ([]types.ManagedItem, error) {
	var items []types.ManagedItem

	appNames := make(map[string]bool)
	for _, entry := range readDir(fsys, p.AppStore()) {
		name := entry.Name()
		appDir := p.AppDir(name)
		if !fsutil.IsDir(fsys, appDir) {
			continue
		}
		appNames[name] = true

		// Best-effort: the entry file, when resolvable, carries the
		// description
		var entryFile string
		if spec, err := detect.Detect(fsys, appDir); err == nil {
			entryFile = spec.Entry
		}
		version, description := inspect.ExtractDir(fsys, appDir, entryFile)

		items = append(items, types.ManagedItem{
			Name:        name,
			Version:     version,
			Description: description,
			Kind:        types.KindApp,
			Scope:       p.Scope(),
		})
	}

	for _, entry := range readDir(fsys, p.BinDir()) {
		name := entry.Name()
		if entry.IsDir() || appNames[name] || strings.HasSuffix(name, ".doapp-tmp") {
			continue
		}
		binPath := p.BinPath(name)
		if shim.IsShim(fsys, binPath) {
			// Shim without a store dir: a broken leftover, not an item
			continue
		}
		version, description := inspect.ExtractFile(fsys, binPath)

		items = append(items, types.ManagedItem{
			Name:        name,
			Version:     version,
			Description: description,
			Kind:        types.KindCommand,
			Scope:       p.Scope(),
		})
	}

	sort.Slice(items, func(a, b int) bool { return items[a].Name < items[b].Name })
	return items, nil
}

// readDir lists a directory, treating a missing one as empty.
func readDir(fsys types.FS, dir string) []fs.DirEntry {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil
	}
	return entries
}
