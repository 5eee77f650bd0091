// Package reconcile validates two scan batches against a single page sequence
// and assigns every scanned file its page number.
//
// Assignment is positional: the i-th file of a batch, in the order supplied by
// the caller, becomes the i-th page of that batch's parity that is not listed
// as missing. Files must therefore be named so that their collation order
// matches the physical order in which the sheets went through the scanner.
// Nothing here looks at file content to correct a wrong order.
package reconcile

import (
	"fmt"

	"github.com/fulmenhq/scansort/internal/parity"
)

// Document is the immutable view of both batches. All derived values are
// computed once in NewDocument.
type Document struct {
	batches [2]Batch
	total   int
}

// NewDocument validates the batches and returns the document they describe.
// Any inconsistency between batch sizes, missing pages and the resulting page
// sequence is reported as *InconsistentSequenceError.
func NewDocument(front, back Batch) (*Document, error) {
	d := &Document{batches: [2]Batch{
		parity.Front: front.clone(),
		parity.Back:  back.clone(),
	}}
	d.total = d.CountOf(parity.Front) + d.CountOf(parity.Back)

	for _, p := range parity.All() {
		for _, n := range d.batches[p].Missing.Sorted() {
			if n < 1 {
				return nil, d.inconsistent(fmt.Sprintf("missing page %d is not a page number", n))
			}
			if !p.Test(n) {
				return nil, d.inconsistent(fmt.Sprintf("missing page %d is not a %s page", n, p))
			}
		}
	}

	if diff := d.CountOf(parity.Front) - d.CountOf(parity.Back); diff != d.total%2 {
		return nil, d.inconsistent(fmt.Sprintf("front minus back is %d, expected %d", diff, d.total%2))
	}

	for _, p := range parity.All() {
		for _, n := range d.batches[p].Missing.Sorted() {
			if n > d.total {
				return nil, d.inconsistent(fmt.Sprintf("missing page %d is beyond the last page %d", n, d.total))
			}
		}
	}

	seen := make(map[string]parity.Parity)
	for _, p := range parity.All() {
		for _, f := range d.batches[p].Files {
			if prev, ok := seen[f]; ok && prev != p {
				return nil, d.inconsistent(fmt.Sprintf("file %q appears in both batches", f))
			}
			seen[f] = p
		}
	}

	return d, nil
}

// CountOf is the number of page slots a parity accounts for: files plus missing pages.
func (d *Document) CountOf(p parity.Parity) int {
	return d.batches[p].Count()
}

// TotalPages is the length of the reconstructed page sequence, missing pages included.
func (d *Document) TotalPages() int {
	return d.total
}

// Batch returns a copy of the batch of the given parity.
func (d *Document) Batch(p parity.Parity) Batch {
	return d.batches[p].clone()
}

// AvailablePages returns the pages of parity p that have a scanned file,
// in ascending order.
func (d *Document) AvailablePages(p parity.Parity) []int {
	missing := d.batches[p].Missing
	candidates := p.Range(d.total)
	available := make([]int, 0, len(candidates))
	for _, n := range candidates {
		if !missing.Has(n) {
			available = append(available, n)
		}
	}
	return available
}

// Assign zips each batch's files with its available pages and merges both
// parities into one mapping.
func (d *Document) Assign() (Mapping, error) {
	m := make(Mapping, len(d.batches[parity.Front].Files)+len(d.batches[parity.Back].Files))
	for _, p := range parity.All() {
		files := d.batches[p].Files
		pages := d.AvailablePages(p)
		if len(files) != len(pages) {
			return nil, &AssignmentMismatchError{Parity: p, Files: len(files), Pages: len(pages)}
		}
		for i, f := range files {
			m[f] = pages[i]
		}
	}
	return m, nil
}

// Summary returns the document counts as log-friendly key/value pairs.
func (d *Document) Summary() map[string]int {
	return map[string]int{
		"front_files":   len(d.batches[parity.Front].Files),
		"front_missing": len(d.batches[parity.Front].Missing),
		"back_files":    len(d.batches[parity.Back].Files),
		"back_missing":  len(d.batches[parity.Back].Missing),
		"total_pages":   d.total,
	}
}

func (d *Document) inconsistent(reason string) *InconsistentSequenceError {
	return &InconsistentSequenceError{
		FrontFiles:   len(d.batches[parity.Front].Files),
		FrontMissing: len(d.batches[parity.Front].Missing),
		BackFiles:    len(d.batches[parity.Back].Files),
		BackMissing:  len(d.batches[parity.Back].Missing),
		TotalPages:   d.total,
		Reason:       reason,
	}
}

// Reconcile validates both batches and returns the file→page mapping.
func Reconcile(front, back Batch) (Mapping, error) {
	doc, err := NewDocument(front, back)
	if err != nil {
		return nil, err
	}
	return doc.Assign()
}
