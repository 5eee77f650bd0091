// Package collect turns the front and back scan directories into ordered
// batches ready for reconciliation.
package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/fulmenhq/scansort/internal/reconcile"
	"github.com/fulmenhq/scansort/pkg/ignore"
	"github.com/fulmenhq/scansort/pkg/logger"
)

// Collation selects how file names are ordered within a batch.
type Collation string

const (
	// Bytewise orders names by their bytes, the order of a plain directory listing.
	Bytewise Collation = "bytewise"
	// Natural compares digit runs numerically, so scan2 sorts before scan10.
	Natural Collation = "natural"
)

// ParseCollation validates a collation name; empty means Bytewise.
func ParseCollation(s string) (Collation, error) {
	switch Collation(strings.ToLower(strings.TrimSpace(s))) {
	case Bytewise, "":
		return Bytewise, nil
	case Natural:
		return Natural, nil
	default:
		return "", fmt.Errorf("unknown collation %q (use bytewise or natural)", s)
	}
}

// Options configure a Collector.
type Options struct {
	Collation Collation
	// Include limits a batch to names matching at least one glob (doublestar syntax).
	Include []string
	// Exclude adds ignore patterns on top of the batch directory's ignore files.
	Exclude []string
}

// Collector enumerates batch directories.
type Collector struct {
	opts Options
}

// New validates the include patterns and returns a Collector.
func New(opts Options) (*Collector, error) {
	if opts.Collation == "" {
		opts.Collation = Bytewise
	}
	for _, pattern := range opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	return &Collector{opts: opts}, nil
}

// Files returns the regular files directly inside dir, as dir-joined paths,
// in collation order. Subdirectories are not descended into.
func (c *Collector) Files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("batch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("batch directory %s is not a directory", dir)
	}

	matcher, err := ignore.NewMatcher(dir, c.opts.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("loading ignore rules for %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		regular, err := isRegular(dir, entry)
		if err != nil {
			return nil, err
		}
		if !regular {
			continue
		}
		if matcher.IsIgnored(name, false) {
			logger.Trace("Skipping ignored file", logger.String("dir", dir), logger.String("file", name))
			continue
		}
		if !c.included(name) {
			logger.Trace("Skipping file not matching include patterns", logger.String("dir", dir), logger.String("file", name))
			continue
		}
		names = append(names, name)
	}

	c.sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	logger.Debug("Collected batch", logger.String("dir", dir), logger.Int("files", len(paths)))
	return paths, nil
}

// Batches collects both directories and splits missing pages by parity.
func (c *Collector) Batches(frontDir, backDir string, missing reconcile.PageSet) (front, back reconcile.Batch, err error) {
	frontFiles, err := c.Files(frontDir)
	if err != nil {
		return front, back, err
	}
	backFiles, err := c.Files(backDir)
	if err != nil {
		return front, back, err
	}

	frontMissing, backMissing := missing.Split()
	return reconcile.Batch{Files: frontFiles, Missing: frontMissing},
		reconcile.Batch{Files: backFiles, Missing: backMissing}, nil
}

func (c *Collector) included(name string) bool {
	if len(c.opts.Include) == 0 {
		return true
	}
	for _, pattern := range c.opts.Include {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (c *Collector) sort(names []string) {
	if c.opts.Collation == Natural {
		collate.New(language.Und, collate.Numeric).SortStrings(names)
		return
	}
	sort.Strings(names)
}

// isRegular reports whether entry is a regular file, following symlinks.
func isRegular(dir string, entry os.DirEntry) (bool, error) {
	if entry.Type().IsRegular() {
		return true, nil
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false, nil
	}
	target, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", entry.Name(), err)
	}
	return target.Mode().IsRegular(), nil
}
