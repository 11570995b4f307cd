// Package types defines the shared data model for doapp: managed items,
// entry specifications, batch results, and the filesystem interface used
// throughout the codebase.
//
// This package has no dependencies on other doapp packages except pkg/errors,
// so every other package can import it freely.
package types
