package types

import "github.com/arthur-debert/doapp/pkg/errors"

// ItemStatus is the per-item outcome within a batch.
type ItemStatus string

const (
	StatusCommitted ItemStatus = "committed"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
)

// ItemResult records the outcome of one source or name within a batch.
// Every non-committed result carries a code and a human-readable reason.
type ItemResult struct {
	// Source is the install source or uninstall name as supplied
	Source string

	// Name is the resolved item name, when resolution got that far
	Name string

	Status ItemStatus
	Code   errors.ErrorCode
	Reason string
}

// BatchResult aggregates per-item outcomes of one install/uninstall call.
// Batches never abort early: one failed item leaves the rest untouched.
type BatchResult struct {
	Items []ItemResult

	Installed int
	Skipped   int
	Failed    int

	// SnapshotID identifies the snapshot taken before the batch mutated
	// anything. Always set: a batch without a snapshot never runs.
	SnapshotID string
}

// AddCommitted records a successful item.
func (b *BatchResult) AddCommitted(source, name string) {
	b.Items = append(b.Items, ItemResult{Source: source, Name: name, Status: StatusCommitted})
	b.Installed++
}

// AddSkipped records a non-fatal skip with its code and reason.
func (b *BatchResult) AddSkipped(source, name string, code errors.ErrorCode, reason string) {
	b.Items = append(b.Items, ItemResult{Source: source, Name: name, Status: StatusSkipped, Code: code, Reason: reason})
	b.Skipped++
}

// AddFailed records a per-item failure with its code and reason.
func (b *BatchResult) AddFailed(source, name string, code errors.ErrorCode, reason string) {
	b.Items = append(b.Items, ItemResult{Source: source, Name: name, Status: StatusFailed, Code: code, Reason: reason})
	b.Failed++
}

// OK reports whether every item committed.
func (b *BatchResult) OK() bool {
	return b.Failed == 0 && b.Skipped == 0
}

// PartiallyFailed reports whether some but not all items failed or were
// skipped. A fully failed batch is not "partial".
func (b *BatchResult) PartiallyFailed() bool {
	return (b.Failed > 0 || b.Skipped > 0) && b.Installed > 0
}

// Err returns a PARTIAL_BATCH error when the batch is not fully
// successful, nil otherwise.
func (b *BatchResult) Err() error {
	if b.OK() {
		return nil
	}
	return errors.Newf(errors.ErrPartialBatch,
		"%d installed, %d skipped, %d failed", b.Installed, b.Skipped, b.Failed)
}
