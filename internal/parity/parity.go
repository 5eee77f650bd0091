// Package parity models the two interleaved page sequences of a two-sided scan.
//
// Front sides carry the odd page numbers (1, 3, 5, ...) and back sides the even
// ones (2, 4, 6, ...). Each parity is a fixed record with a starting offset and
// a step of two; there is no behaviour beyond integer arithmetic.
package parity

import "fmt"

// Parity identifies one of the two page sequences.
type Parity int

const (
	Front Parity = iota
	Back
)

// Step is the distance between consecutive pages of the same parity.
const Step = 2

type record struct {
	name   string
	offset int
}

var table = [...]record{
	Front: {name: "front", offset: 1},
	Back:  {name: "back", offset: 2},
}

// All returns both parities in page order (front first).
func All() []Parity {
	return []Parity{Front, Back}
}

// String returns the parity name
func (p Parity) String() string {
	if !p.valid() {
		return fmt.Sprintf("parity(%d)", int(p))
	}
	return table[p].name
}

// Offset is the first page number of the parity.
func (p Parity) Offset() int {
	return table[p].offset
}

// Test reports whether page number n belongs to the parity.
func (p Parity) Test(n int) bool {
	return mod2(n) == mod2(p.Offset())
}

// Range returns the ascending page numbers of the parity within [1, totalPages].
func (p Parity) Range(totalPages int) []int {
	if totalPages < p.Offset() {
		return []int{}
	}
	pages := make([]int, 0, (totalPages-p.Offset())/Step+1)
	for n := p.Offset(); n <= totalPages; n += Step {
		pages = append(pages, n)
	}
	return pages
}

// Of returns the parity that page number n belongs to.
func Of(n int) Parity {
	if Front.Test(n) {
		return Front
	}
	return Back
}

func (p Parity) valid() bool {
	return p == Front || p == Back
}

// mod2 is a true modulus so negative numbers keep their parity.
func mod2(n int) int {
	return ((n % 2) + 2) % 2
}
