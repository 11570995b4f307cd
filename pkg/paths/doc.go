// Package paths provides centralized path handling for doapp.
// It implements XDG Base Directory specification compliance for the user
// scope and the fixed /usr/local layout for the system scope, and is the
// single source of truth for where managed items live on disk.
package paths
