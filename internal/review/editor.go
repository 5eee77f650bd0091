package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/scansort/internal/reconcile"
	"github.com/fulmenhq/scansort/pkg/logger"
)

// Editor hands text to a human (or a stand-in) and returns the edited text.
type Editor interface {
	Edit(ctx context.Context, text string) (string, error)
}

// EditorFunc adapts a function to Editor.
type EditorFunc func(ctx context.Context, text string) (string, error)

func (f EditorFunc) Edit(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// PassThrough accepts the mapping as presented. Used for --yes runs.
type PassThrough struct{}

func (PassThrough) Edit(_ context.Context, text string) (string, error) {
	return text, nil
}

// CommandEditor opens the text in an external editor on a temporary file.
type CommandEditor struct {
	// Command is the editor invocation, e.g. "vim" or "code --wait".
	Command string
	// TempDir holds the review file; empty means os.TempDir().
	TempDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ResolveEditor picks the editor command: configured value, then $VISUAL,
// then $EDITOR, then vi.
func ResolveEditor(configured string) string {
	for _, c := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return "vi"
}

// Edit writes text to a temp file, waits for the editor to exit and returns
// the file's new content. The temp file is removed on every return path.
func (e *CommandEditor) Edit(ctx context.Context, text string) (result string, err error) {
	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		return "", errors.New("no editor command configured")
	}

	f, err := os.CreateTemp(e.TempDir, "scansort-review-*.yaml")
	if err != nil {
		return "", fmt.Errorf("creating review file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("Failed to remove review file", logger.String("path", path), logger.Err(rmErr))
		}
	}()

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing review file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing review file: %w", err)
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...) // #nosec G204 -- editor chosen by the operator
	cmd.Stdin = orDefault(e.Stdin, os.Stdin)
	cmd.Stdout = orDefaultWriter(e.Stdout, os.Stdout)
	cmd.Stderr = orDefaultWriter(e.Stderr, os.Stderr)

	logger.Debug("Opening editor", logger.String("editor", argv[0]), logger.String("path", path))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", argv[0], err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- file created above
	if err != nil {
		return "", fmt.Errorf("reading review file: %w", err)
	}
	return string(data), nil
}

func orDefault(r io.Reader, def io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return def
}

func orDefaultWriter(w io.Writer, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}

// Gate is the human confirmation step between reconciliation and execution.
type Gate struct {
	Editor Editor
	// BaseDir, when set, is where relative file names in the review text
	// resolve. Files below it are shown relative to it.
	BaseDir string
}

// Review presents m, waits for the editor and parses the result. An empty
// mapping with a nil error means the operator cancelled.
func (g *Gate) Review(ctx context.Context, m reconcile.Mapping) (reconcile.Mapping, error) {
	editor := g.Editor
	if editor == nil {
		editor = PassThrough{}
	}

	edited, err := editor.Edit(ctx, Present(g.relative(m)))
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}

	reviewed, err := Parse(edited)
	if err != nil {
		return nil, err
	}
	if reviewed, err = g.resolve(reviewed); err != nil {
		return nil, err
	}
	logger.Debug("Mapping reviewed", logger.Int("entries", len(reviewed)), logger.Int("proposed", len(m)))
	return reviewed, nil
}

func (g *Gate) relative(m reconcile.Mapping) reconcile.Mapping {
	if g.BaseDir == "" {
		return m
	}
	out := make(reconcile.Mapping, len(m))
	for file, page := range m {
		if rel, err := filepath.Rel(g.BaseDir, file); err == nil && filepath.IsAbs(file) && filepath.IsLocal(rel) {
			file = filepath.ToSlash(rel)
		}
		out[file] = page
	}
	return out
}

// resolve anchors relative names at BaseDir. Two names that land on the same
// path are rejected like a duplicated entry.
func (g *Gate) resolve(m reconcile.Mapping) (reconcile.Mapping, error) {
	if g.BaseDir == "" {
		return m, nil
	}
	out := make(reconcile.Mapping, len(m))
	for file, page := range m {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(g.BaseDir, path)
		}
		path = filepath.Clean(path)
		if _, dup := out[path]; dup {
			return nil, &MappingParseError{Msg: fmt.Sprintf("file %q listed more than once", path)}
		}
		out[path] = page
	}
	return out, nil
}
