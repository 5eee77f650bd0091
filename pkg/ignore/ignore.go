// Package ignore filters files out of a scan batch directory using
// gitignore-style patterns (go-git matcher)
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the per-directory ignore file read by NewMatcher.
const FileName = ".scansortignore"

// DefaultPatterns are always applied: hidden files and the thumbnail/metadata
// files scanners and file browsers drop next to images.
var DefaultPatterns = []string{
	".*",
	"Thumbs.db",
	"desktop.ini",
	FileName,
}

// Matcher decides whether a file in a batch directory is part of the batch
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher for dir with layered patterns:
// 1. DefaultPatterns
// 2. .gitignore files found under dir
// 3. dir/.scansortignore
// Later layers win, so a "!name" line in .scansortignore re-includes a file.
func NewMatcher(dir string, extra ...string) (*Matcher, error) {
	var patterns []gitignore.Pattern
	for _, p := range DefaultPatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if gitPatterns, err := gitignore.ReadPatterns(osfs.New(dir), nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}

	local, err := readIgnoreFile(filepath.Join(dir, FileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, p := range append(local, extra...) {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	return &Matcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// readIgnoreFile reads patterns from a text file, skipping blanks and comments
func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- fixed file name inside the batch dir
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// IsIgnored reports whether rel (slash-separated, relative to the batch dir) is excluded
func (m *Matcher) IsIgnored(rel string, isDir bool) bool {
	parts := splitPath(filepath.ToSlash(rel))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return []string{}
	}
	path = strings.TrimPrefix(path, "/")

	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
