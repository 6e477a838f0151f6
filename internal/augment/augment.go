package augment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"unicode"
)

// Default configuration values.
const (
	// DefaultSeed fixes index selection so repeated runs are reproducible.
	DefaultSeed int64 = 42

	// DefaultRatio is the fraction of tokens perturbed when none is given.
	DefaultRatio = 0.15

	// defaultMinTokens is the replace floor: sentences with this many
	// tokens or fewer degrade badly under masking and are returned as is.
	defaultMinTokens = 4
)

// Step describes one completed scorer round trip.
type Step struct {
	Mode      Mode
	Iteration int // 1-based
	Total     int
	Index     int    // token position that was masked or inserted
	Masked    string // text sent to the scorer
	Filled    string // top-ranked completion
}

// Augmenter perturbs sentences with a masked-language model.
// Calls are serialised: the random stream is shared by every call on the
// same Augmenter and must not interleave.
type Augmenter struct {
	model     Model
	mask      string
	marker    string
	minTokens int
	onStep    func(Step)

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Augmenter.
type Option func(*Augmenter)

// WithSeed seeds the Augmenter's random generator.
func WithSeed(seed int64) Option {
	return func(a *Augmenter) {
		a.rng = newRand(seed)
	}
}

// WithRand sets the random generator directly.
func WithRand(r *rand.Rand) Option {
	return func(a *Augmenter) {
		if r != nil {
			a.rng = r
		}
	}
}

// WithDecimalMarker sets the text that stands in for decimal points while
// the sentence is in the model's hands.
func WithDecimalMarker(marker string) Option {
	return func(a *Augmenter) {
		a.marker = marker
	}
}

// WithMinTokens sets the replace floor. Sentences with n or fewer tokens
// are returned unchanged by Replace.
func WithMinTokens(n int) Option {
	return func(a *Augmenter) {
		if n >= 0 {
			a.minTokens = n
		}
	}
}

// WithOnStep registers a callback invoked after each scorer round trip.
func WithOnStep(fn func(Step)) Option {
	return func(a *Augmenter) {
		a.onStep = fn
	}
}

// New creates an Augmenter around model.
func New(model Model, opts ...Option) (*Augmenter, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	mask := model.MaskToken()
	if mask == "" || strings.IndexFunc(mask, unicode.IsSpace) >= 0 {
		return nil, fmt.Errorf("%q: %w", mask, ErrInvalidMaskToken)
	}

	a := &Augmenter{
		model:     model,
		mask:      mask,
		marker:    DefaultDecimalMarker,
		minTokens: defaultMinTokens,
		rng:       newRand(DefaultSeed),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// MaskToken returns the placeholder used for masking.
func (a *Augmenter) MaskToken() string {
	return a.mask
}

// Augment dispatches to Replace or Insert.
func (a *Augmenter) Augment(ctx context.Context, mode Mode, sentence string, ratio float64) (string, error) {
	switch mode {
	case ModeReplace:
		return a.Replace(ctx, sentence, ratio)
	case ModeInsert:
		return a.Insert(ctx, sentence, ratio)
	default:
		return "", fmt.Errorf("mode %q: %w", mode, ErrInvalidMode)
	}
}

// Replace masks about round(tokens × ratio) distinct positions one at a
// time and lets the model fill each of them.
//
// The first token is never masked. Sentences at or below the token floor
// are returned verbatim. The span is clamped to tokens − 2, the number of
// distinct positions the redraw range can reach; if the model shortens the
// sentence until no unused position remains, the loop stops early.
func (a *Augmenter) Replace(ctx context.Context, sentence string, ratio float64) (string, error) {
	if err := ValidateRatio(ratio); err != nil {
		return "", err
	}

	n := len(strings.Fields(sentence))
	if n <= a.minTokens {
		return sentence, nil
	}
	span := min(SpanCount(n, ratio), max(n-2, 0))

	a.mu.Lock()
	defer a.mu.Unlock()

	guard := newDecimalGuard(a.marker, sentence)
	tokens := strings.Fields(guard.protect(sentence))
	if span == 0 {
		return a.finish(guard, tokens), nil
	}

	used := make(map[int]bool, span)
	idx := a.intRange(1, len(tokens)-span)

	for i := range span {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if used[idx] {
			var ok bool
			idx, ok = a.drawUnused(used, 1, len(tokens)-2)
			if !ok {
				break
			}
		}
		used[idx] = true
		tokens[idx] = a.mask

		masked := strings.Join(tokens, " ")
		filled, err := a.fill(ctx, masked)
		if err != nil {
			return "", fmt.Errorf("replace step %d/%d: %w", i+1, span, err)
		}
		tokens = strings.Fields(filled)

		a.report(Step{Mode: ModeReplace, Iteration: i + 1, Total: span, Index: idx, Masked: masked, Filled: filled})
	}

	return a.finish(guard, tokens), nil
}

// Insert adds round(tokens × ratio) masks at random positions, one at a
// time, and lets the model fill each of them. Unlike Replace there is no
// short-sentence floor and positions may repeat.
func (a *Augmenter) Insert(ctx context.Context, sentence string, ratio float64) (string, error) {
	if err := ValidateRatio(ratio); err != nil {
		return "", err
	}

	span := SpanCount(len(strings.Fields(sentence)), ratio)

	a.mu.Lock()
	defer a.mu.Unlock()

	guard := newDecimalGuard(a.marker, sentence)
	tokens := strings.Fields(guard.protect(sentence))

	for i := range span {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		idx := a.intRange(0, len(tokens)-1)
		tokens = slices.Insert(tokens, idx, a.mask)

		masked := strings.Join(tokens, " ")
		filled, err := a.fill(ctx, masked)
		if err != nil {
			return "", fmt.Errorf("insert step %d/%d: %w", i+1, span, err)
		}
		tokens = strings.Fields(filled)

		a.report(Step{Mode: ModeInsert, Iteration: i + 1, Total: span, Index: idx, Masked: masked, Filled: filled})
	}

	return a.finish(guard, tokens), nil
}

// fill asks the scorer for the masked text and returns the top-ranked sequence.
func (a *Augmenter) fill(ctx context.Context, masked string) (string, error) {
	preds, err := a.model.FillMask(ctx, masked)
	if err != nil {
		return "", err
	}
	if len(preds) == 0 || strings.TrimSpace(preds[0].Sequence) == "" {
		return "", ErrNoPrediction
	}
	return preds[0].Sequence, nil
}

// finish reassembles tokens into the returned sentence.
func (a *Augmenter) finish(guard decimalGuard, tokens []string) string {
	s := collapseSpaces(strings.Join(tokens, " "))
	return strings.TrimSpace(guard.restore(s))
}

func (a *Augmenter) report(s Step) {
	if a.onStep != nil {
		a.onStep(s)
	}
}

// intRange returns a uniform integer in [lo, hi]. Callers guarantee lo <= hi.
func (a *Augmenter) intRange(lo, hi int) int {
	return lo + a.rng.IntN(hi-lo+1)
}

// drawUnused redraws uniformly in [lo, hi] until it finds an index not in
// used. It reports false when every index in the range is taken.
func (a *Augmenter) drawUnused(used map[int]bool, lo, hi int) (int, bool) {
	free := 0
	for i := lo; i <= hi; i++ {
		if !used[i] {
			free++
		}
	}
	if free == 0 {
		return 0, false
	}
	for {
		if idx := a.intRange(lo, hi); !used[idx] {
			return idx, true
		}
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}
