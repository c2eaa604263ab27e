package cmd

import (
	"errors"

	"doccat/internal/application"
	"doccat/internal/domain"
)

// Exit codes
const (
	ExitOK       = 0
	ExitError    = 1
	ExitUsage    = 2 // invalid arguments or rejected operation
	ExitCatalog  = 3 // catalog missing or malformed
	ExitConflict = 4 // planned edits were refused
	ExitCommit   = 5 // backup or write failed
	ExitBusy     = 6
)

// exitCode maps an error to a process exit code. A dry run always
// succeeds: it never writes, so there is nothing to signal.
func exitCode(err error, dryRun bool) int {
	if err == nil || dryRun {
		return ExitOK
	}

	var validation *application.ValidationError
	switch {
	case errors.Is(err, domain.ErrEditConflict):
		return ExitConflict
	case errors.As(err, &validation),
		errors.Is(err, application.ErrInvalidOperation),
		errors.Is(err, application.ErrCatalogExists):
		return ExitUsage
	case errors.Is(err, domain.ErrMalformedCatalog), errors.Is(err, application.ErrCatalogMissing):
		return ExitCatalog
	case errors.Is(err, domain.ErrCommitIO):
		return ExitCommit
	case errors.Is(err, application.ErrReentrantCycle):
		return ExitBusy
	}
	return ExitError
}
