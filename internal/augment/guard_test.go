package augment_test

import (
	"testing"

	"github.com/alnah/go-augment/internal/augment"
)

// ---------------------------------------------------------------------------
// Tests for the decimal guard
// ---------------------------------------------------------------------------

func TestProtectDecimals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple decimal", "356.5조원", "356DOT5조원"},
		{"two numbers", "356.5조원, 81.7조원", "356DOT5조원, 81DOT7조원"},
		{"dotted version", "v1.2.3", "v1DOT2DOT3"},
		{"sentence period", "있습니다.", "있습니다."},
		{"digit then period", "2024.", "2024."},
		{"period then digit", "about .5", "about .5"},
		{"no dots", "예산 지출은", "예산 지출은"},
		{"full-width digits", "３.５", "３DOT５"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := augment.ProtectDecimals(augment.DefaultDecimalMarker, tt.input)
			if got != tt.expected {
				t.Errorf("ProtectDecimals(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecimalGuardRoundTrip(t *testing.T) {
	t.Parallel()

	sentences := []string{
		"2024년 중앙정부의 예산 지출은 일반회계 356.5조원으로 구성되어 있습니다.",
		"21개 특별회계 81.7조원, 기금 3.14 그리고 1.0.",
		"no numbers here.",
		"",
	}

	for _, s := range sentences {
		guarded := augment.ProtectDecimals(augment.DefaultDecimalMarker, s)
		if got := augment.RestoreDecimals(augment.DefaultDecimalMarker, s, guarded); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
}

func TestDecimalGuard_DisabledWhenMarkerPresent(t *testing.T) {
	t.Parallel()

	s := "DOT notation 3.5"
	guarded := augment.ProtectDecimals(augment.DefaultDecimalMarker, s)
	if guarded != s {
		t.Errorf("ProtectDecimals(%q) = %q, want unchanged", s, guarded)
	}
	if got := augment.RestoreDecimals(augment.DefaultDecimalMarker, s, "DOT notation 3.5"); got != s {
		t.Errorf("RestoreDecimals() = %q, want %q", got, s)
	}
}

func TestDecimalGuard_CustomMarker(t *testing.T) {
	t.Parallel()

	got := augment.ProtectDecimals("<d>", "1.5 DOT")
	if got != "1<d>5 DOT" {
		t.Errorf("ProtectDecimals() = %q, want %q", got, "1<d>5 DOT")
	}
}

// ---------------------------------------------------------------------------
// Tests for whitespace collapse
// ---------------------------------------------------------------------------

func TestCollapseSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"a  b", "a b"},
		{"a   b", "a b"},
		{"a b", "a b"},
		{"  a  ", " a "},
		{"a\t\tb", "a\t\tb"},
		{"", ""},
	}

	for _, tt := range tests {
		got := augment.CollapseSpaces(tt.input)
		if got != tt.expected {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.input, got, tt.expected)
		}
		if again := augment.CollapseSpaces(got); again != got {
			t.Errorf("CollapseSpaces not idempotent for %q: %q then %q", tt.input, got, again)
		}
	}
}
