package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gosuri/uiprogress"
	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/fillmask"
	"github.com/alnah/go-augment/internal/interrupt"
	"github.com/alnah/go-augment/internal/lang"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	ConfigLoader     ConfigLoader
	ModelFactory     ModelFactory
	ProgressFactory  ProgressFactory
	InterruptFactory InterruptFactory
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ModelSpec describes the scorer a command needs.
type ModelSpec struct {
	Provider   Provider
	Model      string
	MaskToken  string // empty means resolve from the model's tokenizer files
	BaseURL    string // empty means the provider's default endpoint
	APIKey     string
	CacheDir   string
	Language   lang.Language
	MaxRetries int
	OnRetry    func(retry int, delay time.Duration, err error)
}

// ModelFactory creates masked-language models.
type ModelFactory interface {
	NewModel(ctx context.Context, spec ModelSpec) (augment.Model, error)
}

// Progress tracks lines handled during a file run.
type Progress interface {
	Incr()
	Stop()
}

// ProgressFactory creates progress displays.
type ProgressFactory interface {
	NewProgress(w io.Writer, total int) Progress
}

// Interrupter reports Ctrl+C presses during a file run.
// *interrupt.Handler implements this.
type Interrupter interface {
	Stopping() <-chan struct{}
	WaitForDecision(message string) interrupt.Behavior
	Stop()
}

// InterruptFactory installs an Interrupter. The returned context is
// canceled when the user aborts.
type InterruptFactory interface {
	NewInterrupter(ctx context.Context) (Interrupter, context.Context)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithModelFactory sets the model factory.
func WithModelFactory(f ModelFactory) EnvOption {
	return func(e *Env) {
		e.ModelFactory = f
	}
}

// WithProgressFactory sets the progress factory.
func WithProgressFactory(f ProgressFactory) EnvOption {
	return func(e *Env) {
		e.ProgressFactory = f
	}
}

// WithInterruptFactory sets the interrupt factory.
func WithInterruptFactory(f InterruptFactory) EnvOption {
	return func(e *Env) {
		e.InterruptFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		Now:              time.Now,
		ConfigLoader:     &defaultConfigLoader{},
		ModelFactory:     &defaultModelFactory{},
		ProgressFactory:  &defaultProgressFactory{},
		InterruptFactory: &defaultInterruptFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultModelFactory builds HuggingFace fill-mask clients or chat
// clients for OpenAI-compatible servers.
type defaultModelFactory struct{}

func (defaultModelFactory) NewModel(_ context.Context, spec ModelSpec) (augment.Model, error) {
	switch spec.Provider.OrDefault() {
	case HuggingFaceProvider:
		mask := spec.MaskToken
		if mask == "" {
			var err error
			mask, err = fillmask.ResolveMaskToken(spec.Model,
				fillmask.WithHubToken(spec.APIKey),
				fillmask.WithCacheDir(spec.CacheDir),
			)
			if err != nil {
				return nil, err
			}
		}
		return fillmask.NewHFClient(spec.Model, mask,
			fillmask.WithAPIKey(spec.APIKey),
			fillmask.WithBaseURL(spec.BaseURL),
			fillmask.WithMaxRetries(spec.MaxRetries),
			fillmask.WithOnRetry(spec.OnRetry),
		)

	case OpenAIProvider, OllamaProvider:
		cfg := openai.DefaultConfig(spec.APIKey)
		if spec.BaseURL != "" {
			cfg.BaseURL = spec.BaseURL
		} else if spec.Provider == OllamaProvider {
			cfg.BaseURL = fillmask.DefaultOllamaBaseURL
		}
		return fillmask.NewChatClient(openai.NewClientWithConfig(cfg),
			fillmask.WithChatModel(spec.Model),
			fillmask.WithChatMask(spec.MaskToken),
			fillmask.WithLanguage(spec.Language),
			fillmask.WithChatMaxRetries(spec.MaxRetries),
			fillmask.WithChatOnRetry(spec.OnRetry),
		), nil

	default:
		return nil, fmt.Errorf("%q: %w", spec.Provider, ErrInvalidProvider)
	}
}

// defaultProgressFactory renders a uiprogress bar.
type defaultProgressFactory struct{}

func (defaultProgressFactory) NewProgress(w io.Writer, total int) Progress {
	p := uiprogress.New()
	p.SetOut(w)
	bar := p.AddBar(max(total, 1))
	bar.AppendCompleted()
	bar.PrependElapsed()
	p.Start()
	return &barProgress{progress: p, bar: bar}
}

type barProgress struct {
	progress *uiprogress.Progress
	bar      *uiprogress.Bar
}

func (b *barProgress) Incr() { b.bar.Incr() }
func (b *barProgress) Stop() { b.progress.Stop() }

// defaultInterruptFactory listens for SIGINT/SIGTERM.
type defaultInterruptFactory struct{}

func (defaultInterruptFactory) NewInterrupter(ctx context.Context) (Interrupter, context.Context) {
	return interrupt.NewHandler(ctx)
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ ModelFactory     = (*defaultModelFactory)(nil)
	_ ProgressFactory  = (*defaultProgressFactory)(nil)
	_ InterruptFactory = (*defaultInterruptFactory)(nil)
	_ Interrupter      = (*interrupt.Handler)(nil)
)
