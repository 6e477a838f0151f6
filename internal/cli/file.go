package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/corpus"
	"github.com/alnah/go-augment/internal/interrupt"
)

// fileOptions holds validated options for the file command.
type fileOptions struct {
	inputPath       string
	output          string
	mode            augment.Mode
	ratio           float64
	copies          int
	keepOriginal    bool
	keepBlank       bool
	continueOnError bool
	model           modelFlags
}

// parseFileOptions validates CLI input before any file or model is touched.
func parseFileOptions(inputPath, output, mode string, ratio float64, copies int, keepOriginal, keepBlank, continueOnError bool, model modelFlags) (fileOptions, error) {
	m, err := augment.ParseMode(mode)
	if err != nil {
		return fileOptions{}, err
	}
	if err := augment.ValidateRatio(ratio); err != nil {
		return fileOptions{}, err
	}
	if copies < 1 {
		return fileOptions{}, fmt.Errorf("got %d: %w", copies, ErrInvalidCopies)
	}
	return fileOptions{
		inputPath:       inputPath,
		output:          output,
		mode:            m,
		ratio:           ratio,
		copies:          copies,
		keepOriginal:    keepOriginal,
		keepBlank:       keepBlank,
		continueOnError: continueOnError,
		model:           model,
	}, nil
}

// FileCmd creates the file command.
// The env parameter provides injectable dependencies for testing.
func FileCmd(env *Env) *cobra.Command {
	var (
		output          string
		mode            string
		ratio           float64
		copies          int
		keepOriginal    bool
		keepBlank       bool
		continueOnError bool
		model           modelFlags
	)

	cmd := &cobra.Command{
		Use:   "file <input>",
		Short: "Augment a text file line by line",
		Long: `Augment a text file where every line is one sentence.

Each line produces --copies variants, optionally preceded by the
original line. Blank lines are dropped unless --keep-blank is set.
Runs are reproducible: the same seed and input give the same output.

Press Ctrl+C once to stop after the current line and keep what was
written; press it twice to abort and discard the output file.`,
		Example: `  augment file corpus.txt
  augment file corpus.txt --mode insert -r 0.2 -n 3 --keep-original
  augment file corpus.txt -o train.txt --continue-on-error
  augment file corpus.txt --provider ollama -l ja`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseFileOptions(args[0], output, mode, ratio, copies, keepOriginal, keepBlank, continueOnError, model)
			if err != nil {
				return err
			}
			return runFile(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>_augmented<ext>)")
	cmd.Flags().StringVar(&mode, "mode", augment.ModeNameReplace, "Augmentation mode: replace, insert")
	cmd.Flags().Float64VarP(&ratio, "ratio", "r", augment.DefaultRatio, "Fraction of words to perturb, in (0, 1]")
	cmd.Flags().IntVarP(&copies, "copies", "n", 1, "Variants written per line")
	cmd.Flags().BoolVar(&keepOriginal, "keep-original", false, "Write each source line before its variants")
	cmd.Flags().BoolVar(&keepBlank, "keep-blank", false, "Copy blank lines to the output")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Write the source line when a variant fails instead of stopping")
	model.register(cmd)

	return cmd
}

// runFile augments opts.inputPath into a new output file.
// Validation order: file exists -> output free -> model -> count lines -> run.
func runFile(cmd *cobra.Command, env *Env, opts fileOptions) error {
	// === VALIDATION (fail-fast) ===

	if _, err := os.Stat(opts.inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, opts.inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	cfg := loadConfig(env)
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, deriveOutputPath(filepath.Base(opts.inputPath)))
	if err := checkOutputFree(output); err != nil {
		return err
	}

	// === SETUP ===

	augmenter, err := newAugmenter(cmd.Context(), env, opts.model, cfg)
	if err != nil {
		return err
	}

	in, err := os.Open(opts.inputPath) // #nosec G304 -- user-specified input file
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	total, err := corpus.CountLines(in)
	if err != nil {
		return err
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("cannot rewind input file: %w", err)
	}

	handler, ctx := env.InterruptFactory.NewInterrupter(cmd.Context())
	defer handler.Stop()

	out, err := createOutputFile(output)
	if err != nil {
		return err
	}

	// === AUGMENTATION ===

	fmt.Fprintf(env.Stderr, "Augmenting %s (%s, ratio %.2f, %d per line)...\n", opts.inputPath, opts.mode, opts.ratio, opts.copies)

	start := env.Now()
	progress := env.ProgressFactory.NewProgress(env.Stderr, total)
	var firstFailure error
	stats, runErr := corpus.Run(ctx, in, out, augmenter, corpus.Options{
		Mode:            opts.mode,
		Ratio:           opts.ratio,
		Copies:          opts.copies,
		KeepOriginal:    opts.keepOriginal,
		KeepBlank:       opts.keepBlank,
		ContinueOnError: opts.continueOnError,
		Stop:            handler.Stopping(),
		OnLine: func(p corpus.Progress) {
			if p.Err != nil && firstFailure == nil {
				firstFailure = p.Err
			}
			progress.Incr()
		},
	})
	progress.Stop()

	if closeErr := out.Close(); closeErr != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write output: %w", closeErr)
	}

	// === OUTCOME ===

	if firstFailure != nil {
		fmt.Fprintf(env.Stderr, "Warning: %d variants failed, first: %v\n", stats.Failed, firstFailure)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			_ = os.Remove(output)
			return runErr
		}
		fmt.Fprintf(env.Stderr, "Partial output kept: %s (%d lines written)\n", output, stats.Written)
		return runErr
	}

	if stats.Stopped {
		behavior := handler.WaitForDecision("Press Ctrl+C again within 2s to discard the partial output...")
		if behavior == interrupt.Abort {
			_ = os.Remove(output)
			return context.Canceled
		}
		fmt.Fprintf(env.Stderr, "Stopped after line %d of %d.\n", stats.Lines, total)
	}

	writeSummary(env.Stderr, output, stats, env.Now().Sub(start))
	return nil
}
