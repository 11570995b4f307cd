// Package install implements the mutating operations over the managed
// directories: batch install, batch uninstall, and listing.
//
// Batches are best-effort and strictly ordered: each source is processed
// independently in the order supplied, and one item's failure leaves the
// others untouched. Exactly one snapshot is taken before a batch mutates
// anything; if the snapshot cannot be taken the whole batch aborts.
//
// Commands land as single files via temp-sibling write and atomic
// rename. Apps are staged next to their store directory and swapped in
// whole, so a crash mid-install never leaves a half-copied app visible.
//
// There is no cross-process locking. Two concurrent installs of the same
// name race benignly: each rename is atomic, so the bin entry and store
// directory are always one writer's complete output, and the last writer
// wins.
package install
