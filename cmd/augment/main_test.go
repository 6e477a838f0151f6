package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alnah/go-augment/internal/apierr"
	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/cli"
	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/fillmask"
	"github.com/alnah/go-augment/internal/lang"
)

// ---------------------------------------------------------------------------
// Tests for exitCode
// ---------------------------------------------------------------------------

func TestExitCode(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("line 3: replace step 1/2: %w", err) }

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"canceled", wrap(context.Canceled), ExitInterrupt},
		{"unknown flag", errors.New("unknown flag: --foo"), ExitUsage},
		{"missing args", errors.New("requires at least 1 arg(s), only received 0"), ExitUsage},
		{"bad flag value", errors.New(`invalid argument "x" for "-r, --ratio" flag`), ExitUsage},
		{"unknown command", errors.New(`unknown command "delete" for "augment"`), ExitUsage},
		{"openai key", cli.ErrAPIKeyMissing, ExitSetup},
		{"hf token", cli.ErrHFTokenMissing, ExitSetup},
		{"model unavailable", wrap(fillmask.ErrModelUnavailable), ExitSetup},
		{"mask token", fillmask.ErrMaskTokenNotFound, ExitSetup},
		{"auth failed", wrap(apierr.ErrAuthFailed), ExitSetup},
		{"bad mask token", augment.ErrInvalidMaskToken, ExitSetup},
		{"ratio", augment.ErrInvalidRatio, ExitValidation},
		{"mode", augment.ErrInvalidMode, ExitValidation},
		{"provider", cli.ErrInvalidProvider, ExitValidation},
		{"language", lang.ErrInvalid, ExitValidation},
		{"input missing", cli.ErrFileNotFound, ExitValidation},
		{"output exists", cli.ErrOutputExists, ExitValidation},
		{"copies", cli.ErrInvalidCopies, ExitValidation},
		{"empty sentence", cli.ErrEmptySentence, ExitValidation},
		{"config key", config.ErrUnknownKey, ExitValidation},
		{"config dir", config.ErrNotDirectory, ExitValidation},
		{"rate limit", wrap(apierr.ErrRateLimit), ExitAugmentation},
		{"quota", wrap(apierr.ErrQuotaExceeded), ExitAugmentation},
		{"timeout", wrap(apierr.ErrTimeout), ExitAugmentation},
		{"unavailable", wrap(apierr.ErrUnavailable), ExitAugmentation},
		{"model not found", wrap(apierr.ErrNotFound), ExitAugmentation},
		{"bad request", wrap(apierr.ErrBadRequest), ExitAugmentation},
		{"no prediction", wrap(augment.ErrNoPrediction), ExitAugmentation},
		{"empty reply", wrap(fillmask.ErrEmptyReply), ExitAugmentation},
		{"deadline", wrap(context.DeadlineExceeded), ExitAugmentation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitInterruptIs130(t *testing.T) {
	t.Parallel()

	if ExitInterrupt != 130 {
		t.Errorf("ExitInterrupt = %d, want 130", ExitInterrupt)
	}
}

// ---------------------------------------------------------------------------
// Tests for the command tree
// ---------------------------------------------------------------------------

func TestNewRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd(cli.DefaultEnv())

	found := make(map[string]bool)
	for _, sub := range root.Commands() {
		found[sub.Name()] = true
	}
	for _, name := range []string{"replace", "insert", "file", "config"} {
		if !found[name] {
			t.Errorf("root command missing %q", name)
		}
	}
}

func TestNewRootCmd_UsageErrorsMapToUsage(t *testing.T) {
	t.Parallel()

	tests := [][]string{
		{"replace"},
		{"replace", "--ratio", "abc", "문장"},
		{"file", "a.txt", "b.txt"},
		{"nope"},
	}

	for _, args := range tests {
		root := newRootCmd(cli.DefaultEnv())
		root.SetArgs(args)
		err := root.Execute()
		if err == nil {
			t.Errorf("Execute(%v) expected error, got nil", args)
			continue
		}
		if got := exitCode(err); got != ExitUsage {
			t.Errorf("exitCode(Execute(%v)) = %d (%v), want %d", args, got, err, ExitUsage)
		}
	}
}
