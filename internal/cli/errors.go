package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrHFTokenMissing indicates HF_TOKEN is not set for the hosted Inference API.
	ErrHFTokenMissing = errors.New("HF_TOKEN environment variable not set")

	// ErrEmptySentence indicates the sentence argument is blank.
	ErrEmptySentence = errors.New("sentence cannot be empty")

	// ErrInvalidCopies indicates a non-positive --copies value.
	ErrInvalidCopies = errors.New("copies must be at least 1")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")
)
