// Package lang identifies the language of the text being augmented.
// Chat-based scorers need it to answer in the right language; fill-mask
// models ignore it.
package lang

import (
	"fmt"
	"strings"
)

// DefaultCode is the language assumed when none is configured.
const DefaultCode = "ko"

// names maps ISO 639-1 base codes and common locales to display names.
var names = map[string]string{
	"ar":    "Arabic",
	"bn":    "Bengali",
	"cs":    "Czech",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"en-gb": "British English",
	"en-us": "American English",
	"es":    "Spanish",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hu":    "Hungarian",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"ko-kp": "North Korean",
	"ko-kr": "South Korean",
	"ms":    "Malay",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"pt-br": "Brazilian Portuguese",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sv":    "Swedish",
	"sw":    "Swahili",
	"ta":    "Tamil",
	"th":    "Thai",
	"tl":    "Tagalog",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"ur":    "Urdu",
	"vi":    "Vietnamese",
	"zh":    "Chinese",
	"zh-cn": "Simplified Chinese",
	"zh-tw": "Traditional Chinese",
}

// Language is a normalized language code such as "ko" or "pt-br".
// The zero value means "not specified".
type Language struct {
	code string
}

// Parse validates and normalizes a language code.
// Accepts base codes ("ko") and locales ("pt-BR", "zh_CN").
// An empty string yields the zero Language.
func Parse(s string) (Language, error) {
	if s == "" {
		return Language{}, nil
	}
	code := normalize(s)
	if _, ok := names[baseOf(code)]; !ok {
		return Language{}, fmt.Errorf("%q (use ISO 639-1 codes like 'ko', 'en', 'pt-BR'): %w", s, ErrInvalid)
	}
	return Language{code: code}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Language {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Default returns the default language.
func Default() Language {
	return Language{code: DefaultCode}
}

// String returns the normalized code.
func (l Language) String() string {
	return l.code
}

// IsZero reports whether no language was specified.
func (l Language) IsZero() bool {
	return l.code == ""
}

// OrDefault returns l, or the default language when l is zero.
func (l Language) OrDefault() Language {
	if l.IsZero() {
		return Default()
	}
	return l
}

// BaseCode returns the ISO 639-1 part of the code: "pt-br" -> "pt".
func (l Language) BaseCode() string {
	return baseOf(l.code)
}

// DisplayName returns a human-readable name, falling back to the base
// language's name and then to the code itself.
func (l Language) DisplayName() string {
	if name, ok := names[l.code]; ok {
		return name
	}
	if name, ok := names[l.BaseCode()]; ok {
		return name
	}
	return l.code
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

func baseOf(code string) string {
	if i := strings.IndexByte(code, '-'); i != -1 {
		return code[:i]
	}
	return code
}
