// Package inspect extracts version and description metadata from install
// sources. Extraction is best-effort and never errors: sources without
// recognizable markers report version "unknown" and an empty description.
package inspect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/doapp/pkg/types"
)

const (
	// UnknownVersion is reported when no version marker is found
	UnknownVersion = "unknown"

	// maxScanLines bounds how far into a file markers are searched
	maxScanLines = 50

	// maxDescriptionLines bounds how far the leading doc comment may sit
	maxDescriptionLines = 10
)

// Version file names checked in order for directory sources.
var versionFiles = []string{".version", "VERSION", "version.txt"}

// versionRe matches assignment-like version markers across ecosystems:
//
//	VERSION=0.1.0
//	__version__ = "1.2.3"
//	"version": "2.0.0",
//	# Version: 3.1
var versionRe = regexp.MustCompile(`(?i)^[\s#/*"']*(?:__version__|version)["']?\s*[:=]\s*["']?([0-9][0-9A-Za-z.\-+]*)`)

// commentRe matches a doc-comment line and captures its text.
var commentRe = regexp.MustCompile(`^\s*(?:#|//)\s?(.*)$`)

// ExtractFile scans the first lines of a file for a version marker and a
// leading doc-comment description.
func ExtractFile(fsys types.FS, path string) (version, description string) {
	version = UnknownVersion

	data, err := fsys.ReadFile(path)
	if err != nil {
		return version, ""
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > maxScanLines {
		lines = lines[:maxScanLines]
	}

	for i, line := range lines {
		if version == UnknownVersion {
			if m := versionRe.FindStringSubmatch(line); m != nil {
				version = m[1]
			}
		}
		if description == "" && i < maxDescriptionLines {
			description = docCommentText(line)
		}
		if version != UnknownVersion && description != "" {
			break
		}
	}

	return version, description
}

// ExtractDir resolves metadata for an app directory: a dedicated
// one-line version file wins; otherwise the entry file (when known) is
// scanned like a plain file source.
func ExtractDir(fsys types.FS, dir, entry string) (version, description string) {
	version = UnknownVersion

	for _, name := range versionFiles {
		data, err := fsys.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0]); v != "" {
			version = v
			break
		}
	}

	if entry != "" {
		fileVersion, fileDescription := ExtractFile(fsys, filepath.Join(dir, entry))
		if version == UnknownVersion {
			version = fileVersion
		}
		description = fileDescription
	}

	return version, description
}

// docCommentText returns the text of a doc-comment line, or "" when the
// line is a shebang, a bare comment, a version marker, or not a comment.
func docCommentText(line string) string {
	if strings.HasPrefix(line, "#!") {
		return ""
	}
	m := commentRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	text := strings.TrimSpace(m[1])
	if text == "" || versionRe.MatchString(text) {
		return ""
	}
	// Skip separator-style comments like "-----"
	if strings.Trim(text, "-=*#") == "" {
		return ""
	}
	return text
}
