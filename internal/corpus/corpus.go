// Package corpus augments text files line by line.
//
// Every non-blank line is one sentence. Reading runs in its own stage so
// the next line is ready when the model answers; augmentation itself is
// sequential because the augmenter's random stream must advance in file
// order for runs to be reproducible.
package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-augment/internal/augment"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// readAhead is how many lines the reader may buffer ahead of augmentation.
const readAhead = 64

// Augmenter produces one variant of a sentence.
// *augment.Augmenter implements this.
type Augmenter interface {
	Augment(ctx context.Context, mode augment.Mode, sentence string, ratio float64) (string, error)
}

var _ Augmenter = (*augment.Augmenter)(nil)

// Options configures a run.
type Options struct {
	Mode   augment.Mode
	Ratio  float64
	Copies int // variants per line, at least 1

	// KeepOriginal writes each source line before its variants.
	KeepOriginal bool

	// KeepBlank copies blank lines to the output instead of dropping them.
	KeepBlank bool

	// ContinueOnError writes the source line in place of a variant that
	// failed, instead of ending the run.
	ContinueOnError bool

	// Stop ends the run after the line in progress once closed.
	Stop <-chan struct{}

	// OnLine is called after each input line is handled.
	OnLine func(Progress)
}

// Progress reports one handled input line.
type Progress struct {
	Line    int // 1-based
	Skipped bool
	Err     error // set when ContinueOnError swallowed a failure
}

// Stats summarizes a run.
type Stats struct {
	Lines     int // input lines handled
	Written   int // output lines written
	Unchanged int // variants identical to their source
	Skipped   int // blank lines dropped
	Failed    int // variants replaced by their source after an error
	Stopped   bool
}

type line struct {
	num  int
	text string
}

// Run reads r line by line and writes the augmented corpus to w.
// On Stop the lines written so far are kept and Stats.Stopped is set.
// On error, w holds every line completed before the failure.
func Run(ctx context.Context, r io.Reader, w io.Writer, aug Augmenter, opts Options) (Stats, error) {
	if aug == nil {
		return Stats{}, ErrNilAugmenter
	}
	if opts.Copies < 1 {
		return Stats{}, fmt.Errorf("%d: %w", opts.Copies, ErrInvalidCopies)
	}
	if opts.Mode.IsZero() {
		opts.Mode = augment.ModeReplace
	}

	// Cancelled when augmentation ends early so the reader does not block.
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan line, readAhead)
	g := new(errgroup.Group)

	g.Go(func() error {
		defer close(lines)
		return readLines(readCtx, r, lines)
	})

	var stats Stats
	g.Go(func() error {
		defer stopReading()
		bw := bufio.NewWriter(w)
		err := augmentLines(ctx, lines, bw, aug, opts, &stats)
		if flushErr := bw.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("failed to write output: %w", flushErr)
		}
		return err
	})

	err := g.Wait()
	return stats, err
}

// readLines scans r into out. It returns nil when told to stop reading.
func readLines(ctx context.Context, r io.Reader, out chan<- line) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	num := 0
	for scanner.Scan() {
		num++
		select {
		case out <- line{num: num, text: scanner.Text()}:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read line %d: %w", num+1, err)
	}
	return nil
}

// augmentLines consumes in until it is closed, Stop fires or ctx ends.
func augmentLines(ctx context.Context, in <-chan line, w io.Writer, aug Augmenter, opts Options, stats *Stats) error {
	for {
		// Checked first so a cancel or Stop that fired mid-line wins over a ready line.
		if err := ctx.Err(); err != nil {
			return err
		}
		if isClosed(opts.Stop) {
			stats.Stopped = true
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-opts.Stop:
			stats.Stopped = true
			return nil
		case l, ok := <-in:
			if !ok {
				return nil
			}
			p, err := augmentLine(ctx, l, w, aug, opts, stats)
			if err != nil {
				return err
			}
			stats.Lines++
			if opts.OnLine != nil {
				opts.OnLine(p)
			}
		}
	}
}

// augmentLine writes the output for one input line.
func augmentLine(ctx context.Context, l line, w io.Writer, aug Augmenter, opts Options, stats *Stats) (Progress, error) {
	p := Progress{Line: l.num}
	sentence := strings.TrimSpace(l.text)

	if sentence == "" {
		if !opts.KeepBlank {
			stats.Skipped++
			p.Skipped = true
			return p, nil
		}
		return p, writeLine(w, "", stats)
	}

	if opts.KeepOriginal {
		if err := writeLine(w, sentence, stats); err != nil {
			return p, err
		}
	}

	for range opts.Copies {
		variant, err := aug.Augment(ctx, opts.Mode, sentence, opts.Ratio)
		if err != nil {
			if !opts.ContinueOnError || ctx.Err() != nil {
				return p, fmt.Errorf("line %d: %w", l.num, err)
			}
			stats.Failed++
			p.Err = fmt.Errorf("line %d: %w", l.num, err)
			variant = sentence
		}
		if variant == sentence {
			stats.Unchanged++
		}
		if err := writeLine(w, variant, stats); err != nil {
			return p, err
		}
	}
	return p, nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func writeLine(w io.Writer, s string, stats *Stats) error {
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	stats.Written++
	return nil
}

// CountLines returns the number of lines in r, counting a final line
// without a trailing newline.
func CountLines(r io.Reader) (int, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	count := 0
	pending := false
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			pending = chunk[len(chunk)-1] != '\n'
			if !pending {
				count++
			}
		}
		switch err {
		case nil, bufio.ErrBufferFull:
			continue
		case io.EOF:
			if pending {
				count++
			}
			return count, nil
		default:
			return count, fmt.Errorf("failed to count lines: %w", err)
		}
	}
}
