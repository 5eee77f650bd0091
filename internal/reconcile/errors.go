package reconcile

import (
	"fmt"

	"github.com/fulmenhq/scansort/internal/parity"
)

// InconsistentSequenceError reports that the two batches and the missing-page
// list cannot describe one contiguous page sequence. The counts are carried so
// the operator can fix the missing list or the batch directories.
type InconsistentSequenceError struct {
	FrontFiles   int
	FrontMissing int
	BackFiles    int
	BackMissing  int
	TotalPages   int
	Reason       string
}

func (e *InconsistentSequenceError) Error() string {
	return fmt.Sprintf("page numbers do not correspond: front=%d (%d files + %d missing), back=%d (%d files + %d missing), total=%d: %s",
		e.FrontFiles+e.FrontMissing, e.FrontFiles, e.FrontMissing,
		e.BackFiles+e.BackMissing, e.BackFiles, e.BackMissing,
		e.TotalPages, e.Reason)
}

// AssignmentMismatchError means a validated document still produced a file
// count that differs from its available page count. It indicates a defect in
// this package, not bad input.
type AssignmentMismatchError struct {
	Parity parity.Parity
	Files  int
	Pages  int
}

func (e *AssignmentMismatchError) Error() string {
	return fmt.Sprintf("internal error: %s batch has %d files but %d available pages", e.Parity, e.Files, e.Pages)
}
