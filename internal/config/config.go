// Package config provides configuration management for the relay.
// It loads configuration from a .env file, environment variables and config.yaml using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/hpn/hpn-chat-relay/internal/adapter"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Upstream generative API configuration
	Upstream UpstreamConfig `json:"upstream" mapstructure:"upstream"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeoutSeconds is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeoutSeconds is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeoutSeconds is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`

	// MaxBodyBytes caps the request body size.
	MaxBodyBytes int64 `json:"max_body_bytes" mapstructure:"max_body_bytes"`

	// CORSEnabled answers browser preflight requests and adds CORS headers.
	CORSEnabled bool `json:"cors_enabled" mapstructure:"cors_enabled"`
}

// UpstreamConfig describes the generative API call. None of it is caller-controlled.
type UpstreamConfig struct {
	// APIKey is overridden by the GEMINI_API_KEY environment variable.
	APIKey string `json:"-" mapstructure:"api_key"`

	// BaseURL is the API root including the version segment.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Model is the model path segment, e.g. gemini-1.5-flash.
	Model string `json:"model" mapstructure:"model"`

	// Temperature is sent as generationConfig.temperature.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxOutputTokens is sent as generationConfig.maxOutputTokens.
	MaxOutputTokens int `json:"max_output_tokens" mapstructure:"max_output_tokens"`

	// Client selects the backend (rest, sdk).
	Client adapter.ClientKind `json:"client" mapstructure:"client"`

	// TimeoutSeconds bounds a single upstream call. 0 disables the client timeout.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`

	// Console prints a colored line per request in addition to structured logs.
	Console bool `json:"console" mapstructure:"console"`
}

// Validate validates the configuration and returns an error if required fields are missing.
// A missing API key is not an error here: the relay answers 500 per request instead.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Server.MaxBodyBytes <= 0 {
		validationErrors = append(validationErrors, "server.max_body_bytes must be positive")
	}

	if c.Upstream.BaseURL == "" {
		validationErrors = append(validationErrors, "upstream.base_url is required")
	}

	if c.Upstream.Model == "" {
		validationErrors = append(validationErrors, "upstream.model is required")
	}

	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2 {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"upstream.temperature %v is invalid, must be between 0 and 2", c.Upstream.Temperature))
	}

	if c.Upstream.MaxOutputTokens <= 0 {
		validationErrors = append(validationErrors, "upstream.max_output_tokens must be positive")
	}

	if !c.Upstream.Client.IsValid() {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"upstream.client '%s' is invalid, must be one of: rest, sdk", c.Upstream.Client))
	}

	if c.Upstream.TimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "upstream.timeout_seconds cannot be negative")
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format '%s' is invalid, must be one of: json, text", c.Logging.Format))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// HasAPIKey reports whether an upstream key was provided.
func (c *Configuration) HasAPIKey() bool {
	return c.Upstream.APIKey != ""
}

// Address returns host:port for the HTTP listener.
func (c *Configuration) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// UpstreamTimeout returns the per-call client timeout.
func (c *Configuration) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}
