package types

// Scope selects which (bin dir, app store) pair an operation targets.
type Scope string

const (
	// ScopeUser targets ~/.local/bin and the user app store
	ScopeUser Scope = "user"

	// ScopeSystem targets /usr/local/bin and the system app store
	ScopeSystem Scope = "system"
)

// IsValid reports whether the scope is one of the known values.
func (s Scope) IsValid() bool {
	return s == ScopeUser || s == ScopeSystem
}

// ItemKind distinguishes the two shapes of managed item.
type ItemKind string

const (
	// KindCommand is a single bin-dir executable with no app-store entry
	KindCommand ItemKind = "command"

	// KindApp is an app-store directory plus a bin-dir shim
	KindApp ItemKind = "app"
)

// ManagedItem describes one installed Command or App. Items are derived
// from disk on demand; doapp keeps no registry file.
type ManagedItem struct {
	Name        string
	Version     string
	Description string
	Kind        ItemKind
	Scope       Scope
}

// LinkMode controls how an app directory lands in the store.
type LinkMode string

const (
	// LinkCopy copies the source tree into the store (default)
	LinkCopy LinkMode = "copy"

	// LinkSymlink symlinks the store entry to the source tree.
	// Only valid for ScopeUser.
	LinkSymlink LinkMode = "symlink"
)

// BootstrapSpec describes the isolated-runtime setup a shim performs
// before launching the app. All setup is idempotent and best-effort.
type BootstrapSpec struct {
	// Runtime is the ecosystem needing isolation: "python" or "node"
	Runtime string

	// DepsFile is the dependency declaration relative to the app dir,
	// e.g. "requirements.txt" or "package.json". Empty means no
	// dependency install, only interpreter isolation.
	DepsFile string
}

// EntrySpec is the resolved launch directive for an app. The shim
// generator renders it into the fixed launcher template; nothing else
// interprets it.
type EntrySpec struct {
	// Interpreter is the runtime binary ("python3", "node", "sh").
	// Empty means the entry file is executed directly.
	Interpreter string

	// Entry is the entry file path relative to the app directory.
	Entry string

	// Args are fixed arguments inserted after the entry file,
	// before the invocation arguments.
	Args []string

	// WorkDir, when non-empty, is the directory (relative to the app
	// dir) the launcher changes into before exec.
	WorkDir string

	// Bootstrap, when set, requests isolated-runtime setup at launch.
	Bootstrap *BootstrapSpec
}

// Direct reports whether the spec is a plain exec of the entry file,
// with no interpreter and no bootstrap.
func (e *EntrySpec) Direct() bool {
	return e.Interpreter == "" && e.Bootstrap == nil
}
