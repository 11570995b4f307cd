// Package shim materializes bin-dir launchers for installed apps.
//
// Every shim is rendered from one fixed, embedded launcher template; the
// per-app part is a block of shell-quoted variable assignments. The
// launcher forwards invocation arguments exactly as received and, for
// bootstrapped apps, idempotently prepares an isolated runtime before
// exec — bootstrap failures never abort the launch.
package shim

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/types"
)

//go:embed launcher.sh.tmpl
var launcherTemplate string

// Marker identifies a doapp shim on its second line. Uninstall and
// listing rely on it to tell shims apart from plain commands.
const Marker = "# doapp:shim v1"

var tmpl = template.Must(template.New("launcher").Parse(launcherTemplate))

// templateData is the launcher's data block, every value pre-quoted.
type templateData struct {
	Name        string
	AppDir      string
	Entry       string
	Interpreter string
	WorkDir     string
	Bootstrap   string
	DepsFile    string
	Args        []string
}

// Render produces the shim content for an app. Rendering is
// deterministic: the same spec always yields byte-identical output.
func Render(name, appDir string, spec *types.EntrySpec) ([]byte, error) {
	data := templateData{
		Name:        name,
		AppDir:      quote(appDir),
		Entry:       quote(spec.Entry),
		Interpreter: quote(spec.Interpreter),
		WorkDir:     quote(spec.WorkDir),
	}
	if spec.Bootstrap != nil {
		data.Bootstrap = quote(spec.Bootstrap.Runtime)
		data.DepsFile = quote(spec.Bootstrap.DepsFile)
	} else {
		data.Bootstrap = quote("")
		data.DepsFile = quote("")
	}
	for _, arg := range spec.Args {
		data.Args = append(data.Args, quote(arg))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render launcher template")
	}
	return buf.Bytes(), nil
}

// Write renders the shim and places it at binPath via temp-write and
// atomic rename, so a concurrent reader never sees a partial launcher.
func Write(fsys types.FS, binPath, name, appDir string, spec *types.EntrySpec) error {
	content, err := Render(name, appDir, spec)
	if err != nil {
		return err
	}

	tmpPath := binPath + ".doapp-tmp"
	if err := fsys.WriteFile(tmpPath, content, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write shim for %s", name)
	}
	if err := fsys.Chmod(tmpPath, 0755); err != nil {
		_ = fsys.Remove(tmpPath)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to mark shim executable for %s", name)
	}
	if err := fsys.Rename(tmpPath, binPath); err != nil {
		_ = fsys.Remove(tmpPath)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to install shim for %s", name)
	}

	return nil
}

// IsShim reports whether the file at path carries the shim marker.
func IsShim(fsys types.FS, path string) bool {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return false
	}
	// The marker sits on the second line; reading a prefix is enough.
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.Contains(string(head), Marker)
}

// quote single-quotes a value for the POSIX shell, escaping embedded
// single quotes. Empty values render as ''.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
