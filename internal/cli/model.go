package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/lang"
)

// defaultMaxRetries bounds transport retries per scorer call.
const defaultMaxRetries = 3

// modelFlags are the flags shared by every command that runs a model.
type modelFlags struct {
	model      string
	provider   string
	maskToken  string
	baseURL    string
	language   string
	seed       int64
	maxRetries int
	verbose    bool
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model id (default depends on provider)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Scorer backend: huggingface, openai, ollama (default huggingface)")
	cmd.Flags().StringVar(&f.maskToken, "mask-token", "", "Mask token (default: read from the model's tokenizer files)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Custom endpoint (self-hosted inference server, Ollama on another host)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Sentence language, used by chat providers (default ko)")
	cmd.Flags().Int64Var(&f.seed, "seed", augment.DefaultSeed, "Random seed for position selection")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", defaultMaxRetries, "Retries on rate limits and unavailable models (0 disables)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print every masked step to stderr")
}

// resolveSpec merges flags, config and environment into a ModelSpec.
// Precedence: flag, then config file, then AUGMENT_* variables, then defaults.
func resolveSpec(env *Env, f modelFlags, cfg config.Config) (ModelSpec, error) {
	var spec ModelSpec

	providerName := f.provider
	if providerName == "" {
		providerName = cfg.Provider
	}
	if providerName != "" {
		p, err := ParseProvider(providerName)
		if err != nil {
			return spec, err
		}
		spec.Provider = p
	}
	spec.Provider = spec.Provider.OrDefault()

	spec.Model = resolveModel(f.model, cfg, spec.Provider)

	langCode := f.language
	if langCode == "" {
		langCode = cfg.Language
	}
	l, err := lang.Parse(langCode)
	if err != nil {
		return spec, err
	}
	spec.Language = l.OrDefault()

	spec.MaskToken = f.maskToken
	if spec.MaskToken == "" {
		spec.MaskToken = cfg.MaskToken
	}
	spec.BaseURL = f.baseURL
	spec.CacheDir = config.ExpandPath(cfg.CacheDir)
	spec.MaxRetries = max(f.maxRetries, 0)

	if keyEnv := spec.Provider.APIKeyEnv(); keyEnv != "" {
		spec.APIKey = env.Getenv(keyEnv)
	}
	switch {
	case spec.Provider == OpenAIProvider && spec.APIKey == "" && spec.BaseURL == "":
		return spec, fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	case spec.Provider == HuggingFaceProvider && spec.APIKey == "" && spec.BaseURL == "":
		return spec, fmt.Errorf("%w (set it with: export %s=hf_...)", ErrHFTokenMissing, EnvHFToken)
	}

	return spec, nil
}

// resolveModel picks the model id. A configured model only applies when
// it was configured for the same provider; a HuggingFace id means nothing
// to an OpenAI endpoint.
func resolveModel(flagModel string, cfg config.Config, p Provider) string {
	if flagModel != "" {
		return flagModel
	}
	if cfg.Model != "" {
		cfgProvider, err := ParseProvider(cfg.Provider)
		if cfg.Provider == "" {
			cfgProvider, err = HuggingFaceProvider, nil
		}
		if err == nil && cfgProvider == p {
			return cfg.Model
		}
	}
	return p.DefaultModel()
}

// loadConfig loads the config file. A broken file is reported and ignored.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	return cfg
}

// newAugmenter builds the model described by flags and cfg and wraps it
// in an Augmenter.
func newAugmenter(ctx context.Context, env *Env, f modelFlags, cfg config.Config) (*augment.Augmenter, error) {
	spec, err := resolveSpec(env, f, cfg)
	if err != nil {
		return nil, err
	}
	spec.OnRetry = func(retry int, delay time.Duration, err error) {
		fmt.Fprintf(env.Stderr, "Retrying in %s (attempt %d/%d): %v\n", delay, retry, spec.MaxRetries, err)
	}

	model, err := env.ModelFactory.NewModel(ctx, spec)
	if err != nil {
		return nil, err
	}

	opts := []augment.Option{augment.WithSeed(f.seed)}
	if f.verbose {
		fmt.Fprintf(env.Stderr, "Model: %s (provider: %s, mask token: %s)\n", spec.Model, spec.Provider, model.MaskToken())
		opts = append(opts, augment.WithOnStep(func(s augment.Step) {
			fmt.Fprintf(env.Stderr, "  %s %d/%d at %d: %s\n", s.Mode, s.Iteration, s.Total, s.Index, s.Filled)
		}))
	}

	return augment.New(model, opts...)
}
