// Package cliutil provides utilities shared by the specsync CLI commands.
package cliutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/specsync/specerrors"
)

// Process exit codes. Scripts drive follow-up work off these, so they are
// part of the CLI contract.
const (
	// ExitOK means the command succeeded.
	ExitOK = 0
	// ExitError means a general failure (bad usage, write failure).
	ExitError = 1
	// ExitParse means an input document or fix store failed to parse.
	ExitParse = 2
	// ExitProcessing means the run completed but needs human attention,
	// e.g. unresolved fixes.
	ExitProcessing = 3
)

// ExitCodeFor maps an error to the CLI exit-code contract.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, specerrors.ErrParse) || errors.Is(err, specerrors.ErrFixStore) {
		return ExitParse
	}
	return ExitError
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}
