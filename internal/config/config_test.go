package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-chat-relay/internal/adapter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Server.CORSEnabled)
	assert.Equal(t, "gemini-1.5-flash", cfg.Upstream.Model)
	assert.InDelta(t, 0.7, cfg.Upstream.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.Upstream.MaxOutputTokens)
	assert.Equal(t, adapter.ClientREST, cfg.Upstream.Client)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.HasAPIKey(), "a missing key must not fail loading")
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoad_FileAndEnvPriority(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
upstream:
  api_key: from-file
  model: gemini-pro
  temperature: 0.2
  client: sdk
logging:
  level: debug
`)

	t.Run("file values", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "from-file", cfg.Upstream.APIKey)
		assert.Equal(t, "gemini-pro", cfg.Upstream.Model)
		assert.Equal(t, adapter.ClientSDK, cfg.Upstream.Client)
		assert.Equal(t, 500, cfg.Upstream.MaxOutputTokens)
	})

	t.Run("prefixed env overrides file", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv("HPN_RELAY_UPSTREAM_MODEL", "gemini-env")
		t.Setenv("HPN_RELAY_SERVER_PORT", "7000")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gemini-env", cfg.Upstream.Model)
		assert.Equal(t, 7000, cfg.Server.Port)
	})

	t.Run("GEMINI_API_KEY wins", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "  from-env  ")
		t.Setenv("HPN_RELAY_UPSTREAM_API_KEY", "from-prefixed-env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Upstream.APIKey)
	})
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultEnvFile),
		[]byte("HPN_RELAY_UPSTREAM_MODEL=gemini-dotenv\n"), 0o600))
	t.Chdir(dir)
	t.Setenv(EnvAPIKey, "")

	// Registers restoration, then clears so the .env value is applied.
	t.Setenv("HPN_RELAY_UPSTREAM_MODEL", "")
	require.NoError(t, os.Unsetenv("HPN_RELAY_UPSTREAM_MODEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-dotenv", cfg.Upstream.Model)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 70000
upstream:
  temperature: 3
  client: grpc
logging:
  level: verbose
`)
		_, err := Load(path)
		require.Error(t, err)
		require.True(t, IsValidationError(err))

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.HasError("server.port"))
		assert.True(t, ve.HasError("upstream.temperature"))
		assert.True(t, ve.HasError("upstream.client"))
		assert.True(t, ve.HasError("logging.level"))
		assert.Len(t, ve.Errors, 4)
	})
}

func TestLoadWithViper_FlagOverride(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Chdir(t.TempDir())

	v := viper.New()
	v.Set("server.port", 9191)

	cfg, err := LoadWithViper(v, "")
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestConfiguration_Validate(t *testing.T) {
	valid := func() Configuration {
		return Configuration{
			Server:   ServerConfig{Port: 8080, MaxBodyBytes: 1024},
			Upstream: UpstreamConfig{BaseURL: "http://x", Model: "m", Temperature: 0.7, MaxOutputTokens: 500, Client: adapter.ClientREST},
			Logging:  LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Configuration)
		field  string
	}{
		{"valid", func(*Configuration) {}, ""},
		{"zero body limit", func(c *Configuration) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"empty model", func(c *Configuration) { c.Upstream.Model = "" }, "upstream.model"},
		{"empty base url", func(c *Configuration) { c.Upstream.BaseURL = "" }, "upstream.base_url"},
		{"zero max tokens", func(c *Configuration) { c.Upstream.MaxOutputTokens = 0 }, "upstream.max_output_tokens"},
		{"negative timeout", func(c *Configuration) { c.Upstream.TimeoutSeconds = -1 }, "upstream.timeout_seconds"},
		{"bad format", func(c *Configuration) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.True(t, ve.HasError(tt.field), "errors: %v", ve.Errors)
		})
	}
}
