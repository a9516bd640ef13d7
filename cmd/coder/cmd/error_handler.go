package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"bank-statement-coder/pkg/errors"
	"bank-statement-coder/pkg/logger"
)

// CLIErrorHandler turns pipeline errors into user-facing messages and
// exit codes.
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.Global().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message and returns the process
// exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if coderErr, ok := errors.AsCoderError(err); ok {
		return h.handleCoderError(coderErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func (h *CLIErrorHandler) handleCoderError(err *errors.CoderError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", categoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.ExitCode()
}

func categoryHelp(category errors.Category) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct
• For dumps, ensure the file is a JSON fragment dump from a prior run`

	case errors.CategoryOCR:
		return `OCR error help:
• Verify the OCR service base URL and processor ID
• Check network connectivity to the service
• A zero-fragment result usually means an unreadable or blank scan`

	case errors.CategoryParse:
		return `Parse error help:
• Unrecognized statements: only supported issuers can be parsed
• Unrecognized ledgers: supply an AccountingCS export or --ledger-xlsx
• Re-scan at higher quality if identification anchors were garbled`

	case errors.CategoryConfig:
		return `Configuration error help:
• Check your command-line flags and arguments
• Use 'coder code --help' to see all available options
• Try running with default settings first`

	default:
		return `For more help:
• Use 'coder --help' for general help
• Use 'coder code --help' for command-specific help`
	}
}
