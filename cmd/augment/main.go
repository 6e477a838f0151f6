package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-augment/internal/apierr"
	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/cli"
	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/corpus"
	"github.com/alnah/go-augment/internal/fillmask"
	"github.com/alnah/go-augment/internal/interrupt"
	"github.com/alnah/go-augment/internal/lang"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK           = 0
	ExitGeneral      = 1
	ExitUsage        = 2
	ExitSetup        = 3
	ExitValidation   = 4
	ExitAugmentation = 5
	ExitInterrupt    = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Signals are handled per command: replace and insert cancel on the
	// first Ctrl+C, file runs stop gracefully.
	ctx := context.Background()

	env := cli.DefaultEnv()
	rootCmd := newRootCmd(env)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newRootCmd builds the command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "augment",
		Short: "Augment text with a masked-language model",
		Long: `Produce paraphrase-like variants of sentences for training data.

Words are masked one at a time and a masked-language model fills them
in, either replacing existing words or inserting new ones. Decimal
numbers are protected, and a fixed seed makes every run reproducible.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.ReplaceCmd(env))
	rootCmd.AddCommand(cli.InsertCmd(env))
	rootCmd.AddCommand(cli.FileCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3): credentials and model resolution.
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, cli.ErrHFTokenMissing) ||
		errors.Is(err, fillmask.ErrModelUnavailable) || errors.Is(err, fillmask.ErrMaskTokenNotFound) ||
		errors.Is(err, fillmask.ErrEmptyModel) || errors.Is(err, augment.ErrInvalidMaskToken) ||
		errors.Is(err, apierr.ErrAuthFailed) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, augment.ErrInvalidRatio) || errors.Is(err, augment.ErrInvalidMode) ||
		errors.Is(err, cli.ErrInvalidProvider) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, cli.ErrInvalidCopies) || errors.Is(err, cli.ErrEmptySentence) ||
		errors.Is(err, corpus.ErrInvalidCopies) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrInvalidKey) || errors.Is(err, config.ErrInvalidSyntax) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable) {
		return ExitValidation
	}

	// Augmentation errors (ExitAugmentation = 5): scorer and API failures.
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrUnavailable) ||
		errors.Is(err, apierr.ErrNotFound) || errors.Is(err, apierr.ErrBadRequest) ||
		errors.Is(err, augment.ErrNoPrediction) || errors.Is(err, fillmask.ErrEmptyReply) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitAugmentation
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
