package cli

import (
	"errors"
	"fmt"

	"github.com/alnah/go-augment/internal/fillmask"
)

// Provider name constants.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
)

// Environment variables holding credentials.
const (
	EnvHFToken      = "HF_TOKEN"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Provider represents a validated scorer backend.
// Zero value means "not specified"; OrDefault turns it into HuggingFace.
type Provider struct {
	name string
}

var _ fmt.Stringer = Provider{}

// ErrInvalidProvider indicates an invalid provider name was specified.
var ErrInvalidProvider = errors.New("invalid provider")

// Pre-parsed provider constants for use in code.
var (
	HuggingFaceProvider = Provider{name: ProviderHuggingFace}
	OpenAIProvider      = Provider{name: ProviderOpenAI}
	OllamaProvider      = Provider{name: ProviderOllama}
)

var validProviders = map[string]bool{
	ProviderHuggingFace: true,
	ProviderOpenAI:      true,
	ProviderOllama:      true,
}

// ParseProvider validates and parses a provider name string.
func ParseProvider(s string) (Provider, error) {
	if s == "" {
		return Provider{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidProvider)
	}
	if !validProviders[s] {
		return Provider{}, fmt.Errorf("unknown provider %q (use 'huggingface', 'openai' or 'ollama'): %w", s, ErrInvalidProvider)
	}
	return Provider{name: s}, nil
}

// MustParseProvider parses a provider name, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParseProvider(s string) Provider {
	p, err := ParseProvider(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the provider name string.
func (p Provider) String() string {
	return p.name
}

// IsZero returns true if no provider is set.
func (p Provider) IsZero() bool {
	return p.name == ""
}

// OrDefault returns the provider, or HuggingFaceProvider if zero.
func (p Provider) OrDefault() Provider {
	if p.IsZero() {
		return HuggingFaceProvider
	}
	return p
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	switch p.OrDefault() {
	case OpenAIProvider:
		return fillmask.DefaultOpenAIModel
	case OllamaProvider:
		return fillmask.DefaultOllamaModel
	default:
		return fillmask.DefaultHFModel
	}
}

// APIKeyEnv returns the environment variable holding the provider's
// credential, or "" when none is needed.
func (p Provider) APIKeyEnv() string {
	switch p.OrDefault() {
	case HuggingFaceProvider:
		return EnvHFToken
	case OpenAIProvider:
		return EnvOpenAIAPIKey
	default:
		return ""
	}
}
