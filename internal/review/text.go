// Package review renders a file→page mapping as editable text and reads the
// operator's corrections back.
package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/scansort/internal/reconcile"
)

// CommentMarker starts a line that Parse discards.
const CommentMarker = "#"

var header = []string{
	"Page assignment: each line maps a scanned file to its page number.",
	"Files were assigned in name order; fix any page number that is wrong.",
	"Relative file names are read from the working directory.",
	"Delete every entry (or leave the file empty) to cancel.",
}

// MappingParseError reports reviewed text that is not a valid file→page mapping.
type MappingParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *MappingParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid mapping at line %d: %s", e.Line, e.Msg)
	}
	return "invalid mapping: " + e.Msg
}

func (e *MappingParseError) Unwrap() error {
	return e.Err
}

// Present renders m in its canonical review form: a comment header, then one
// `"file": page` line per entry in ascending page order, keys padded to a
// common display width and pages right-aligned.
func Present(m reconcile.Mapping) string {
	var b strings.Builder
	for _, line := range header {
		fmt.Fprintf(&b, "%s %s\n", CommentMarker, line)
	}

	entries := m.Entries()
	keys := make([]string, len(entries))
	keyWidth := 0
	for i, e := range entries {
		keys[i] = quoteKey(e.File) + ":"
		if w := runewidth.StringWidth(keys[i]); w > keyWidth {
			keyWidth = w
		}
	}
	pageWidth := len(strconv.Itoa(m.MaxPage()))

	for i, e := range entries {
		b.WriteString(runewidth.FillRight(keys[i], keyWidth))
		fmt.Fprintf(&b, " %*d\n", pageWidth, e.Page)
	}
	return b.String()
}

// Parse reads reviewed text back into a mapping. Comment lines are dropped
// first; text with no entries left yields an empty mapping, which callers
// treat as cancellation.
func Parse(text string) (reconcile.Mapping, error) {
	lines := strings.Split(text, "\n")
	blank := true
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, CommentMarker) {
			// Keep the line slot so YAML line numbers match the edited file.
			lines[i] = ""
			continue
		}
		if trimmed != "" {
			blank = false
		}
	}
	if blank {
		return reconcile.Mapping{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &doc); err != nil {
		return nil, &MappingParseError{Msg: err.Error(), Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return reconcile.Mapping{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &MappingParseError{Line: root.Line, Msg: `expected lines of the form "file": page`}
	}

	m := make(reconcile.Mapping, len(root.Content)/2)
	owners := make(map[int]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		var file string
		if k.Kind == yaml.ScalarNode {
			if err := k.Decode(&file); err != nil {
				return nil, &MappingParseError{Line: k.Line, Msg: err.Error(), Err: err}
			}
		}
		if file == "" {
			return nil, &MappingParseError{Line: k.Line, Msg: "file name must be a non-empty string"}
		}
		if _, dup := m[file]; dup {
			return nil, &MappingParseError{Line: k.Line, Msg: fmt.Sprintf("file %q listed more than once", file)}
		}
		if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!int" {
			return nil, &MappingParseError{Line: v.Line, Msg: fmt.Sprintf("page for %q must be an integer, got %q", file, v.Value)}
		}
		var page int
		if err := v.Decode(&page); err != nil {
			return nil, &MappingParseError{Line: v.Line, Msg: err.Error(), Err: err}
		}
		if page < 1 {
			return nil, &MappingParseError{Line: v.Line, Msg: fmt.Sprintf("page for %q must be at least 1, got %d", file, page)}
		}
		if other, dup := owners[page]; dup {
			return nil, &MappingParseError{Line: v.Line, Msg: fmt.Sprintf("page %d assigned to both %q and %q", page, other, file)}
		}
		owners[page] = file
		m[file] = page
	}
	return m, nil
}

// quoteKey renders name as a YAML double-quoted scalar so Parse reads back
// exactly the same bytes. Names that are not valid UTF-8 come out as a
// !!binary scalar.
func quoteKey(name string) string {
	out, err := yaml.Marshal(&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: name})
	if err != nil {
		return strconv.Quote(name)
	}
	return strings.TrimSpace(string(out))
}

// IsParseError reports whether err is or wraps a *MappingParseError.
func IsParseError(err error) bool {
	var pe *MappingParseError
	return errors.As(err, &pe)
}
