package corpus

import "errors"

// Sentinel errors for corpus runs.
var (
	// ErrInvalidCopies indicates a non-positive copy count.
	ErrInvalidCopies = errors.New("copies must be at least 1")

	// ErrNilAugmenter indicates Run was called without an augmenter.
	ErrNilAugmenter = errors.New("augmenter is required")
)
