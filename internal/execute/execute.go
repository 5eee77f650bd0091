// Package execute places reviewed files at their page-numbered destinations.
//
// Entries are independent: a failure is recorded and the next entry is
// processed. Nothing already copied or moved is rolled back.
package execute

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/scansort/internal/reconcile"
	"github.com/fulmenhq/scansort/pkg/logger"
)

// Failure records one entry that could not be applied.
type Failure struct {
	File string
	Dest string
	Err  error
}

// Result summarizes an Apply run.
type Result struct {
	Count    int
	Failures []Failure
}

// Total is the number of entries attempted.
func (r Result) Total() int {
	return r.Count + len(r.Failures)
}

// Err returns a *PartialFailureError when any entry failed.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialFailureError{Failures: r.Failures, Total: r.Total()}
}

// PartialFailureError aggregates per-entry failures after all entries ran.
type PartialFailureError struct {
	Failures []Failure
	Total    int
}

func (e *PartialFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d files failed", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s -> %s: %v", f.File, f.Dest, f.Err)
	}
	return b.String()
}

// ErrDestinationPending marks an entry whose destination is the source of
// another entry that could not be placed first.
var ErrDestinationPending = errors.New("destination is the source of another unplaced file")

// Apply runs action for every entry of m in page order, writing to the path
// tmpl renders for the entry's page. The output directory is created first;
// failing to create it is the only error that stops the run before any entry.
// Per-entry failures are returned in the Result.
//
// A destination that is still the source of an unplaced entry is never
// written. Such entries wait for later passes and fail with
// ErrDestinationPending once a pass places nothing.
func Apply(ctx context.Context, m reconcile.Mapping, action Action, tmpl Template) (Result, error) {
	var res Result

	if _, dry := action.(DryRun); !dry && tmpl.Dir != "" {
		if err := os.MkdirAll(tmpl.Dir, 0o755); err != nil {
			return res, fmt.Errorf("creating output directory: %w", err)
		}
	}

	queue := m.Entries()
	pending := make(map[string]struct{}, len(queue))
	for _, e := range queue {
		pending[filepath.Clean(e.File)] = struct{}{}
	}

	for len(queue) > 0 {
		var deferred []reconcile.Entry
		for _, e := range queue {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			src := filepath.Clean(e.File)
			dst := tmpl.Path(e.Page)
			if src == filepath.Clean(dst) {
				logger.Debug("File already in place", logger.String("file", e.File))
				delete(pending, src)
				res.Count++
				continue
			}
			if _, busy := pending[filepath.Clean(dst)]; busy {
				deferred = append(deferred, e)
				continue
			}

			if err := action.Do(e.File, dst); err != nil {
				// The source is still on disk and must not be overwritten later.
				res.fail(action, e.File, dst, err)
				continue
			}
			delete(pending, src)

			logger.Trace("Placed file",
				logger.String("action", action.Name()),
				logger.String("file", e.File),
				logger.Int("page", e.Page),
				logger.String("dest", dst))
			res.Count++
		}

		if len(deferred) == len(queue) {
			for _, e := range deferred {
				res.fail(action, e.File, tmpl.Path(e.Page), ErrDestinationPending)
			}
			break
		}
		if len(deferred) > 0 {
			logger.Debug("Retrying files whose destination was occupied", logger.Int("files", len(deferred)))
		}
		queue = deferred
	}

	return res, nil
}

func (r *Result) fail(action Action, file, dst string, err error) {
	logger.Warn("Failed to place file",
		logger.String("action", action.Name()),
		logger.String("file", file),
		logger.String("dest", dst),
		logger.Err(err))
	r.Failures = append(r.Failures, Failure{File: file, Dest: dst, Err: err})
}
