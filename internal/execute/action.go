package execute

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/fulmenhq/scansort/pkg/safeio"
)

// Action places one source file at its destination.
type Action interface {
	Name() string
	Do(src, dst string) error
}

// Copy leaves the source in place.
type Copy struct {
	Overwrite bool
}

func (Copy) Name() string { return "copy" }

func (a Copy) Do(src, dst string) error {
	return safeio.CopyFile(src, dst, a.Overwrite)
}

// Move consumes the source. Across filesystems it falls back to copy and remove.
type Move struct {
	Overwrite bool
}

func (Move) Name() string { return "move" }

func (a Move) Do(src, dst string) error {
	if !a.Overwrite && safeio.Exists(dst) {
		return &os.PathError{Op: "move", Path: dst, Err: os.ErrExist}
	}
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := safeio.CopyFile(src, dst, a.Overwrite); err != nil {
		return err
	}
	return os.Remove(src)
}

// DryRun only reports what would happen.
type DryRun struct {
	Out io.Writer
}

func (DryRun) Name() string { return "dry-run" }

func (a DryRun) Do(src, dst string) error {
	if a.Out == nil {
		return nil
	}
	_, err := fmt.Fprintf(a.Out, "%s -> %s\n", src, dst)
	return err
}

// ParseAction maps a configured action name to an Action.
func ParseAction(name string, overwrite bool, out io.Writer) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "copy", "":
		return Copy{Overwrite: overwrite}, nil
	case "move":
		return Move{Overwrite: overwrite}, nil
	case "dry-run", "print":
		return DryRun{Out: out}, nil
	default:
		return nil, fmt.Errorf("unknown action %q (use copy or move)", name)
	}
}
