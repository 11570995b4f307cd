package install

import (
	"bytes"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/types"
)

// checkShellSyntax parses shell sources before they are installed, so a
// command with a typo never lands in the bin dir. Non-shell files pass
// through untouched; only a parse failure is an error.
func checkShellSyntax(fsys types.FS, path string) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}

	variant, ok := shellVariant(path, data)
	if !ok {
		return nil
	}

	parser := syntax.NewParser(syntax.Variant(variant))
	if _, err := parser.Parse(bytes.NewReader(data), filepath.Base(path)); err != nil {
		return errors.Wrapf(err, errors.ErrSyntaxCheckFailed,
			"%s is not valid shell", filepath.Base(path))
	}
	return nil
}

// shellVariant decides whether a file is shell and which dialect to
// parse it as, from the extension first and the shebang second.
func shellVariant(path string, data []byte) (syntax.LangVariant, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sh":
		return syntax.LangPOSIX, true
	case ".bash":
		return syntax.LangBash, true
	}

	firstLine, _, _ := strings.Cut(string(data), "\n")
	if !strings.HasPrefix(firstLine, "#!") {
		return 0, false
	}
	switch {
	case strings.Contains(firstLine, "bash"):
		return syntax.LangBash, true
	case strings.Contains(firstLine, "sh"):
		return syntax.LangPOSIX, true
	}
	return 0, false
}
