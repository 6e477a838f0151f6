package cli

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/lang"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-augment/config.
Settings can also be provided via environment variables.

Supported settings:
  model         Model id for the configured provider (env: AUGMENT_MODEL)
  provider      huggingface, openai or ollama (env: AUGMENT_PROVIDER)
  mask-token    Mask token override (env: AUGMENT_MASK_TOKEN)
  language      Sentence language for chat providers (env: AUGMENT_LANGUAGE)
  cache-dir     Tokenizer file cache (env: AUGMENT_CACHE_DIR)
  output-dir    Default directory for augmented files (env: AUGMENT_OUTPUT_DIR)`,
		Example: `  augment config set model klue/roberta-base
  augment config set output-dir ~/corpora
  augment config get model
  augment config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Values are validated before they are saved. Directories are created
if they don't exist.`,
		Example: `  augment config set provider ollama
  augment config set language ja`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  augment config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  augment config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(config.Keys, ", "), config.ErrUnknownKey)
	}

	value, err := normalizeConfigValue(key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// normalizeConfigValue validates value for key and returns the form to store.
func normalizeConfigValue(key, value string) (string, error) {
	switch key {
	case config.KeyProvider:
		p, err := ParseProvider(value)
		if err != nil {
			return "", err
		}
		return p.String(), nil

	case config.KeyLanguage:
		l, err := lang.Parse(value)
		if err != nil {
			return "", err
		}
		if l.IsZero() {
			return "", fmt.Errorf("language cannot be empty: %w", lang.ErrInvalid)
		}
		return l.String(), nil

	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return "", err
		}
		return expanded, nil

	case config.KeyCacheDir:
		if value == "" {
			return "", fmt.Errorf("cache-dir cannot be empty")
		}
		return config.ExpandPath(value), nil

	case config.KeyMaskToken:
		if value == "" || strings.IndexFunc(value, unicode.IsSpace) >= 0 {
			return "", fmt.Errorf("mask token must be a single non-empty word")
		}
		return value, nil

	default:
		if value == "" {
			return "", fmt.Errorf("%s cannot be empty", key)
		}
		return value, nil
	}
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(config.Keys, ", "), config.ErrUnknownKey)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	printed := 0
	for _, key := range config.Keys {
		if v, ok := data[key]; ok {
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, v)
			printed++
			continue
		}
		if v := env.Getenv(config.EnvVar(key)); v != "" {
			fmt.Fprintf(env.Stdout, "%s=%s (from env)\n", key, v)
			printed++
		}
	}

	if printed == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
	}
	return nil
}
