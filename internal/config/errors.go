package config

import "errors"

// Sentinel errors for configuration handling.
var (
	// ErrInvalidKey indicates a key that cannot be stored in the config file.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrUnknownKey indicates a key the tool does not read.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidSyntax indicates a config line without key=value form.
	ErrInvalidSyntax = errors.New("invalid config syntax")

	// ErrNotDirectory indicates a path that exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotWritable indicates a directory the process cannot write to.
	ErrNotWritable = errors.New("directory is not writable")
)
