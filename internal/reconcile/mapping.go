package reconcile

import "sort"

// Mapping assigns each scanned file to the page number it represents.
type Mapping map[string]int

// Entry is one file→page assignment.
type Entry struct {
	File string
	Page int
}

// Entries returns the assignments ordered by page number, then file name.
func (m Mapping) Entries() []Entry {
	entries := make([]Entry, 0, len(m))
	for f, p := range m {
		entries = append(entries, Entry{File: f, Page: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Page != entries[j].Page {
			return entries[i].Page < entries[j].Page
		}
		return entries[i].File < entries[j].File
	})
	return entries
}

// MaxPage returns the largest page number, or 0 for an empty mapping.
func (m Mapping) MaxPage() int {
	max := 0
	for _, p := range m {
		if p > max {
			max = p
		}
	}
	return max
}
