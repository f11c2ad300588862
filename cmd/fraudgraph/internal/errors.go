package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitDatabaseError indicates the graph store is unreachable or unhealthy
	ExitDatabaseError = 12
	// ExitValidationError indicates invalid caller input
	ExitValidationError = 13
	// ExitQueryError indicates the graph store rejected a query
	ExitQueryError = 14
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError prints err to the command's error output and returns the exit
// code for it. Graph errors always surface their kind and message.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", cliErr.Cause)
			}
		}
		return cliErr.Code
	}

	var fgErr *types.FraudGraphError
	if errors.As(err, &fgErr) {
		cmd.PrintErrf("Error: [%s] %s\n", fgErr.Code, fgErr.Message)
		verboseFlag := cmd.Flag("verbose")
		if verboseFlag != nil && verboseFlag.Changed {
			if fgErr.Cause != nil {
				cmd.PrintErrln("Cause:", fgErr.Cause)
			}
			for k, v := range fgErr.Context {
				cmd.PrintErrf("  %s: %v\n", k, v)
			}
		}
		return exitCodeFor(fgErr.Code)
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}

func exitCodeFor(code types.ErrorCode) int {
	switch code {
	case graph.ErrCodeValidation:
		return ExitValidationError
	case graph.ErrCodeConnectionFailed:
		return ExitDatabaseError
	case graph.ErrCodeQueryFailed:
		return ExitQueryError
	case graph.ErrCodeInvalidConfig:
		return ExitConfigError
	default:
		return ExitError
	}
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// It is used during panic recovery, before flags are parsed.
func IsVerbose() bool {
	if os.Getenv("FRAUDGRAPH_VERBOSE") != "" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
