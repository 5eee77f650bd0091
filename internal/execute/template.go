package execute

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultPattern is the output file name pattern used when none is configured.
const DefaultPattern = "scan%04d.tif"

// Template turns a page number into an output path.
type Template struct {
	Dir     string
	Pattern string
}

// ParseTemplate validates that pattern holds exactly one integer verb
// (%d with optional flags and width) and renders plain file names.
func ParseTemplate(dir, pattern string) (Template, error) {
	if pattern == "" {
		return Template{}, fmt.Errorf("empty output template")
	}

	verbs := 0
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		i++
		if i < len(pattern) && pattern[i] == '%' {
			continue
		}
		for i < len(pattern) && strings.IndexByte("+- 0#", pattern[i]) >= 0 {
			i++
		}
		for i < len(pattern) && pattern[i] >= '0' && pattern[i] <= '9' {
			i++
		}
		if i >= len(pattern) || pattern[i] != 'd' {
			return Template{}, fmt.Errorf("output template %q: only %%d placeholders are supported", pattern)
		}
		verbs++
	}
	if verbs != 1 {
		return Template{}, fmt.Errorf("output template %q: expected exactly one page number placeholder, found %d", pattern, verbs)
	}

	t := Template{Dir: dir, Pattern: pattern}
	if name := t.Name(1); strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return Template{}, fmt.Errorf("output template %q must produce a plain file name", pattern)
	}
	return t, nil
}

// Name renders the file name for page.
func (t Template) Name(page int) string {
	return fmt.Sprintf(t.Pattern, page)
}

// Path renders the output path for page.
func (t Template) Path(page int) string {
	return filepath.Join(t.Dir, t.Name(page))
}
