package doapp

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "A personal installer for scripts and small apps"
	MsgRootLong       = `doapp installs single-file commands and small app directories into your
PATH, generates launchers for them, and keeps a rollback snapshot of every
change. The filesystem is the only state: what you see in the bin dir and
app store is what doapp knows.`
	MsgInstallShort   = "Install files, directories, or URLs"
	MsgUninstallShort = "Remove installed commands and apps"
	MsgListShort      = "List installed commands and apps"
	MsgSnapshotShort  = "Manage rollback snapshots"
	MsgRollbackShort  = "Restore a snapshot (latest by default)"
	MsgPackShort      = "Pack installed items into a portable archive"
	MsgRestoreShort   = "Merge an archive back into the managed dirs"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgNoItems       = "Nothing installed."
	MsgNoSnapshots   = "No snapshots."
	MsgItemCommitted = "✔ %s (%s)\n"
	MsgItemSkipped   = "- %s skipped: %s\n"
	MsgItemFailed    = "✘ %s failed: %s\n"
	MsgBatchSummary  = "\n%d installed, %d skipped, %d failed (snapshot %s)\n"
	MsgRemovedOne    = "✔ removed %s\n"
	MsgSnapshotTaken = "Snapshot %s taken.\n"
	MsgRestored      = "Restored %s: %d bin entries, %d apps (undo snapshot %s)\n"
	MsgPacked        = "Packed to %s\n"

	// Error messages
	MsgErrInitPaths  = "failed to initialize paths: %w"
	MsgErrLoadConfig = "failed to load configuration: %w"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagForce    = "Replace existing items instead of skipping them"
	MsgFlagScope    = "Target scope: user or system"
	MsgFlagName     = "Override the derived item name (single source only)"
	MsgFlagEntry    = "Entry file relative to the app dir, bypassing detection"
	MsgFlagInterp   = "Interpreter for the explicit entry (with --entry)"
	MsgFlagWorkdir  = "Working directory relative to the app dir (with --entry)"
	MsgFlagLinkMode = "How app dirs land in the store: copy or symlink"
	MsgFlagAll      = "Pack everything in the scope"
	MsgFlagApp      = "Treat a packed name as an app instead of a command"
	MsgFlagOut      = "Archive output path"
	MsgFlagFormat   = "Archive compression: zst or gz"
)
