package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alnah/go-augment/internal/augment"
)

// demoSentence is the example shown in command help.
const demoSentence = "2024년 중앙정부의 예산 지출은 일반회계 356.5조원, 21개 특별회계 81.7조원으로 구성되어 있습니다."

// sentenceOptions holds validated options for replace and insert.
type sentenceOptions struct {
	mode     augment.Mode
	sentence string
	ratio    float64
	copies   int
	model    modelFlags
}

// parseSentenceOptions validates CLI input before any model is loaded.
func parseSentenceOptions(mode augment.Mode, args []string, ratio float64, copies int, model modelFlags) (sentenceOptions, error) {
	sentence := strings.TrimSpace(strings.Join(args, " "))
	if sentence == "" {
		return sentenceOptions{}, ErrEmptySentence
	}
	if err := augment.ValidateRatio(ratio); err != nil {
		return sentenceOptions{}, err
	}
	if copies < 1 {
		return sentenceOptions{}, fmt.Errorf("got %d: %w", copies, ErrInvalidCopies)
	}
	return sentenceOptions{
		mode:     mode,
		sentence: sentence,
		ratio:    ratio,
		copies:   copies,
		model:    model,
	}, nil
}

// ReplaceCmd creates the replace command.
// The env parameter provides injectable dependencies for testing.
func ReplaceCmd(env *Env) *cobra.Command {
	return sentenceCmd(env, augment.ModeReplace,
		"Regenerate words of a sentence",
		`Mask words of a sentence one at a time and let a masked-language model
fill each of them in. About ratio × word count positions are replaced;
the first word is never touched. Sentences of four words or fewer are
printed unchanged.

Decimal numbers such as 356.5 are protected while the model works on
the sentence.`)
}

// InsertCmd creates the insert command.
// The env parameter provides injectable dependencies for testing.
func InsertCmd(env *Env) *cobra.Command {
	return sentenceCmd(env, augment.ModeInsert,
		"Insert new words into a sentence",
		`Insert masks at random positions of a sentence one at a time and let a
masked-language model fill each of them in. About ratio × word count
words are added.

Decimal numbers such as 356.5 are protected while the model works on
the sentence.`)
}

func sentenceCmd(env *Env, mode augment.Mode, short, long string) *cobra.Command {
	var (
		ratio  float64
		copies int
		model  modelFlags
	)

	cmd := &cobra.Command{
		Use:   mode.String() + " <sentence>",
		Short: short,
		Long:  long,
		Example: fmt.Sprintf(`  augment %[1]s "%[2]s"
  augment %[1]s -r 0.3 -n 3 "%[2]s"
  augment %[1]s --provider ollama -m llama3.2 "%[2]s"
  augment %[1]s --base-url http://localhost:8080 "%[2]s"  # Self-hosted inference server`, mode, demoSentence),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseSentenceOptions(mode, args, ratio, copies, model)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)
			return runSentence(cmd, env, opts)
		},
	}

	cmd.Flags().Float64VarP(&ratio, "ratio", "r", augment.DefaultRatio, "Fraction of words to perturb, in (0, 1]")
	cmd.Flags().IntVarP(&copies, "copies", "n", 1, "Number of variants to print")
	model.register(cmd)

	return cmd
}

// runSentence augments one sentence and prints the result to stdout.
func runSentence(cmd *cobra.Command, env *Env, opts sentenceOptions) error {
	ctx := cmd.Context()

	augmenter, err := newAugmenter(ctx, env, opts.model, loadConfig(env))
	if err != nil {
		return err
	}

	variants := make([]string, 0, opts.copies)
	for range opts.copies {
		v, err := augmenter.Augment(ctx, opts.mode, opts.sentence, opts.ratio)
		if err != nil {
			return err
		}
		variants = append(variants, v)
	}

	fmt.Fprintf(env.Stdout, "Original:  %s\n", opts.sentence)
	for _, v := range variants {
		fmt.Fprintf(env.Stdout, "Augmented: %s\n", v)
	}
	return nil
}
