package fillmask

import "errors"

// Sentinel errors for scorer construction and replies.
var (
	// ErrModelUnavailable indicates the model's tokenizer files could not be fetched.
	ErrModelUnavailable = errors.New("model not available")

	// ErrMaskTokenNotFound indicates the tokenizer files define no mask token.
	ErrMaskTokenNotFound = errors.New("mask token not found")

	// ErrEmptyModel indicates no model identifier was given.
	ErrEmptyModel = errors.New("model identifier is required")

	// ErrEmptyReply indicates the scorer answered without a usable completion.
	ErrEmptyReply = errors.New("empty reply from scorer")
)
