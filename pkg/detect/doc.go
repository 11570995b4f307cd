// Package detect resolves how to launch an app directory.
//
// Detection runs an ordered list of strategies, first match wins:
//
//  1. conventional bin/<name> executable
//  2. ecosystem manifest entries (package.json, pyproject.toml)
//  3. conventional source filenames in typical source roots
//  4. sole unambiguous source file at the directory root
//  5. a bin/ or exe/ executable matching the normalized name, or the
//     sole candidate if exactly one exists
//
// Each strategy is independently testable. When no rule fires, Detect
// returns NO_ENTRY_RESOLVED and the caller must supply an explicit
// EntrySpec override.
package detect
