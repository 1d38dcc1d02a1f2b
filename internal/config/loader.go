package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "HPN_RELAY"

	// EnvAPIKey is the primary source of the upstream API key.
	// It takes priority over upstream.api_key from any other source.
	EnvAPIKey = "GEMINI_API_KEY"

	// DefaultEnvFile is loaded, if present, before anything else.
	DefaultEnvFile = ".env"
)

// Load loads the configuration.
// Priority order (highest to lowest):
// 1. GEMINI_API_KEY env var (API key only)
// 2. Environment variables (prefixed with HPN_RELAY_), including those from .env
// 3. config file (configPath, or config.yaml in the search paths)
// 4. Default values
func Load(configPath string) (*Configuration, error) {
	return LoadWithViper(viper.New(), configPath)
}

// LoadWithViper is Load on a caller-supplied viper instance, so CLI flags bound
// to v override file and environment values.
func LoadWithViper(v *viper.Viper, configPath string) (*Configuration, error) {
	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, &ConfigError{Op: "load_dotenv", Err: err}
	}

	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hpn-chat-relay")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		cfg.Upstream.APIKey = key
	}
	cfg.Upstream.APIKey = strings.TrimSpace(cfg.Upstream.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors_enabled", false)

	// Upstream defaults
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("upstream.model", "gemini-1.5-flash")
	v.SetDefault("upstream.temperature", 0.7)
	v.SetDefault("upstream.max_output_tokens", 500)
	v.SetDefault("upstream.client", "rest")
	v.SetDefault("upstream.timeout_seconds", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.console", false)
}
