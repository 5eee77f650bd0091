// Package exitcode provides standardized exit codes for scansort
package exitcode

import (
	"errors"
	"io/fs"
	"os"

	"github.com/fulmenhq/scansort/internal/execute"
	"github.com/fulmenhq/scansort/internal/reconcile"
	"github.com/fulmenhq/scansort/internal/review"
	"github.com/fulmenhq/scansort/pkg/config"
)

// Exit codes for scansort CLI
const (
	Success              = 0
	GeneralError         = 1
	ConfigError          = 2
	InconsistentSequence = 3
	MappingParseError    = 4
	FileSystemError      = 5
	InternalError        = 70
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case InconsistentSequence:
		return "Inconsistent page sequence"
	case MappingParseError:
		return "Invalid reviewed mapping"
	case FileSystemError:
		return "File system error"
	case InternalError:
		return "Internal error"
	default:
		return "Unknown error"
	}
}

// FromError maps an error returned by a command to its exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var (
		seqErr      *reconcile.InconsistentSequenceError
		mismatchErr *reconcile.AssignmentMismatchError
		parseErr    *review.MappingParseError
		partialErr  *execute.PartialFailureError
		configErr   *config.ValidationError
		pathErr     *fs.PathError
		linkErr     *os.LinkError
	)
	switch {
	case errors.As(err, &seqErr):
		return InconsistentSequence
	case errors.As(err, &mismatchErr):
		return InternalError
	case errors.As(err, &parseErr):
		return MappingParseError
	case errors.As(err, &partialErr):
		return FileSystemError
	case errors.As(err, &configErr):
		return ConfigError
	case errors.As(err, &pathErr), errors.As(err, &linkErr):
		return FileSystemError
	default:
		return GeneralError
	}
}
