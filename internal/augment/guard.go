package augment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultDecimalMarker replaces the decimal point of numbers like 356.5
// while the sentence goes through the model.
const DefaultDecimalMarker = "DOT"

// multiSpace matches runs of two or more spaces.
var multiSpace = regexp.MustCompile(` {2,}`)

// decimalGuard protects decimal points from the model for a single call.
// A disabled guard leaves text untouched in both directions.
type decimalGuard struct {
	marker  string
	enabled bool
}

// newDecimalGuard returns a guard for sentence. The guard is disabled when
// the sentence already contains the marker, so restore never rewrites
// text the caller wrote.
func newDecimalGuard(marker, sentence string) decimalGuard {
	return decimalGuard{
		marker:  marker,
		enabled: marker != "" && !strings.Contains(sentence, marker),
	}
}

// protect replaces every '.' that sits between two decimal digits with the marker.
func (g decimalGuard) protect(s string) string {
	if !g.enabled || !strings.Contains(s, ".") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	var prev rune = utf8.RuneError
	for i, r := range s {
		if r == '.' && unicode.IsDigit(prev) {
			next, _ := utf8.DecodeRuneInString(s[i+1:])
			if unicode.IsDigit(next) {
				b.WriteString(g.marker)
				prev = r
				continue
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// restore turns every marker back into '.'.
func (g decimalGuard) restore(s string) string {
	if !g.enabled {
		return s
	}
	return strings.ReplaceAll(s, g.marker, ".")
}

// collapseSpaces reduces each run of spaces to a single space.
func collapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(s, " ")
}
