package cli

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/pyfetch/pkg/errors"
)

// Exit codes returned by the pyfetch binary.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitNoManifest  = 2
	ExitUnparseable = 3
	ExitUnreachable = 4
	ExitInterrupted = 130 // shell convention for SIGINT
)

// ExitCode maps a command error to the process exit status, so scripts can
// tell an absent Python project from a broken one.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errors.ErrCodeManifestNotFound):
		return ExitNoManifest
	case errors.Is(err, errors.ErrCodeManifestNotParseable):
		return ExitUnparseable
	case errors.Is(err, errors.ErrCodePathDependenciesUnreachable):
		return ExitUnreachable
	default:
		return ExitError
	}
}
