// Package augment regenerates or inserts words in a sentence with a
// masked-language model, producing paraphrase-like variants for training
// data expansion.
//
// The model itself is an injected capability (see Model). The package owns
// only the masking loop: position selection, decimal-number protection and
// iterative re-masking.
package augment

import "context"

// Prediction is one ranked completion returned by a Scorer.
type Prediction struct {
	// Sequence is the full sentence with the mask filled in.
	Sequence string
	// Token is the text that replaced the mask.
	Token string
	// Score is the model's confidence for this completion.
	Score float64
}

// Tokenizer provides the placeholder the model understands as "predict this position".
type Tokenizer interface {
	MaskToken() string
}

// Scorer fills the single mask token contained in text.
// Predictions are ranked best first; implementations return at least one
// prediction or an error.
type Scorer interface {
	FillMask(ctx context.Context, text string) ([]Prediction, error)
}

// Model pairs a tokenizer with its scorer.
type Model interface {
	Tokenizer
	Scorer
}
