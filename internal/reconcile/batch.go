package reconcile

import (
	"sort"

	"github.com/fulmenhq/scansort/internal/parity"
)

// PageSet is a set of page numbers.
type PageSet map[int]struct{}

// NewPageSet builds a set from the given page numbers; duplicates collapse.
func NewPageSet(pages ...int) PageSet {
	s := make(PageSet, len(pages))
	for _, n := range pages {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether n is in the set.
func (s PageSet) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the members in ascending order.
func (s PageSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Split partitions the set by parity.
func (s PageSet) Split() (front, back PageSet) {
	front, back = PageSet{}, PageSet{}
	for n := range s {
		if parity.Of(n) == parity.Front {
			front[n] = struct{}{}
		} else {
			back[n] = struct{}{}
		}
	}
	return front, back
}

func (s PageSet) clone() PageSet {
	c := make(PageSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Batch is one scanned side: files in collation order plus the pages of that
// side that were deliberately not scanned.
type Batch struct {
	Files   []string
	Missing PageSet
}

// Count is the number of page slots the batch accounts for.
func (b Batch) Count() int {
	return len(b.Files) + len(b.Missing)
}

func (b Batch) clone() Batch {
	files := make([]string, len(b.Files))
	copy(files, b.Files)
	return Batch{Files: files, Missing: b.Missing.clone()}
}
