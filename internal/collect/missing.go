package collect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fulmenhq/scansort/internal/reconcile"
)

// maxRangeSpan bounds a single "a-b" range so a typo cannot allocate millions of pages.
const maxRangeSpan = 100000

// ParseMissing parses a comma-separated page list such as "10,12" or
// "10, 20-24". An empty string yields an empty set.
func ParseMissing(s string) (reconcile.PageSet, error) {
	set := reconcile.PageSet{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(item, "-")
		if !isRange {
			n, err := parsePage(item)
			if err != nil {
				return nil, err
			}
			set[n] = struct{}{}
			continue
		}

		from, err := parsePage(strings.TrimSpace(lo))
		if err != nil {
			return nil, err
		}
		to, err := parsePage(strings.TrimSpace(hi))
		if err != nil {
			return nil, err
		}
		if to < from {
			return nil, fmt.Errorf("invalid missing page range %q: end before start", item)
		}
		if to-from > maxRangeSpan {
			return nil, fmt.Errorf("invalid missing page range %q: spans more than %d pages", item, maxRangeSpan)
		}
		for n := from; n <= to; n++ {
			set[n] = struct{}{}
		}
	}
	return set, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid missing page %q: not a number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid missing page %d: pages start at 1", n)
	}
	return n, nil
}
