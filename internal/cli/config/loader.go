package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// Package-level koanf instance and file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	envFileUsed    string
)

// flagKeys maps flag names to config keys. Flags not listed here are not
// configuration (for example --config itself).
var flagKeys = map[string]string{
	"limit":        "limit",
	"offset":       "offset",
	"json":         "json",
	"history-file": "history_file",
	"verbose":      "verbose",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > suiteql.yaml > suiteql.yml > user config dir
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"suiteql.yaml", "suiteql.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "suiteql", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findEnvFile returns the .env file to load. An explicit path must exist;
// the default one is optional.
func findEnvFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("env file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultEnvFile); err == nil {
		return DefaultEnvFile, nil
	}
	return "", nil
}

// envKey maps an environment variable name to a config key, or "" to
// ignore it.
// Transform: NETSUITE_ACCOUNT_ID -> account_id, SUITEQL_LIMIT -> limit
func envKey(name string) string {
	if key, ok := credentialKeys[name]; ok {
		return key
	}
	if strings.HasPrefix(name, SettingsEnvPrefix) {
		key := strings.ToLower(strings.TrimPrefix(name, SettingsEnvPrefix))
		if settingKeys[key] {
			return key
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	envFileUsed = ""
}

// LoadConfig loads configuration from defaults, the config file, the .env
// file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > .env file > config file > defaults
func LoadConfig(cfgFile, envFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	ResetConfig()

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"timeout":      DefaultTimeout.String(),
		"json":         false,
		"history_file": DefaultHistoryFile,
		"verbose":      false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load the .env file with the same key mapping as the environment
	path, err := findEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	envFileUsed = path
	if envFileUsed != "" {
		if err := k.Load(file.Provider(envFileUsed), dotenv.ParserEnv("", ".", envKey)); err != nil {
			return nil, fmt.Errorf("error reading env file %s: %w", envFileUsed, err)
		}
	}

	// 4. Load environment variables (NETSUITE_ credentials, SUITEQL_ settings)
	for _, prefix := range []string{CredentialEnvPrefix, SettingsEnvPrefix} {
		if err := k.Load(env.Provider(prefix, ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	// 5. Load flags (highest priority - overrides env vars and files)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.HistoryFile = expandHome(cfg.HistoryFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetEnvFileUsed returns the path to the .env file being used, if any.
func GetEnvFileUsed() string {
	return envFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// ErrNoConfig is returned by commands that need a loaded config when none is
// present in the command context.
var ErrNoConfig = errors.New("configuration not loaded")

type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig.
func FromContext(ctx context.Context) (*Config, error) {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*Config); ok && cfg != nil {
			return cfg, nil
		}
	}
	return nil, ErrNoConfig
}
