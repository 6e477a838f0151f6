package augment

import (
	"fmt"
	"math"
)

// Mode name constants.
const (
	ModeNameReplace = "replace"
	ModeNameInsert  = "insert"
)

// Mode selects the augmentation operation.
// Zero value is invalid; use ParseMode or the pre-parsed values.
type Mode struct {
	name string
}

var _ fmt.Stringer = Mode{}

// Pre-parsed modes.
var (
	ModeReplace = Mode{name: ModeNameReplace}
	ModeInsert  = Mode{name: ModeNameInsert}
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case ModeNameReplace:
		return ModeReplace, nil
	case ModeNameInsert:
		return ModeInsert, nil
	case "":
		return Mode{}, fmt.Errorf("mode cannot be empty: %w", ErrInvalidMode)
	default:
		return Mode{}, fmt.Errorf("unknown mode %q (use 'replace' or 'insert'): %w", s, ErrInvalidMode)
	}
}

// String returns the mode name, or "" for the zero value.
func (m Mode) String() string {
	return m.name
}

// IsZero reports whether the mode is unset.
func (m Mode) IsZero() bool {
	return m.name == ""
}

// SpanCount returns how many tokens a call targets for a sentence of
// tokenCount tokens. Halves round to even.
func SpanCount(tokenCount int, ratio float64) int {
	return int(math.RoundToEven(float64(tokenCount) * ratio))
}

// ValidateRatio rejects ratios outside (0, 1], including NaN.
func ValidateRatio(ratio float64) error {
	if !(ratio > 0 && ratio <= 1) {
		return fmt.Errorf("got %v: %w", ratio, ErrInvalidRatio)
	}
	return nil
}
