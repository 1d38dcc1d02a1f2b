package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-chat-relay/internal/adapter"
	"github.com/hpn/hpn-chat-relay/internal/config"
	"github.com/hpn/hpn-chat-relay/internal/domain"
)

func testConfig(baseURL, apiKey string) *config.Configuration {
	return &config.Configuration{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, MaxBodyBytes: 1 << 20},
		Upstream: config.UpstreamConfig{
			APIKey:          apiKey,
			BaseURL:         baseURL,
			Model:           "gemini-1.5-flash",
			Temperature:     0.7,
			MaxOutputTokens: 500,
			Client:          adapter.ClientREST,
			TimeoutSeconds:  5,
		},
		Logging: config.LoggingConfig{Level: "debug", Format: "json"},
	}
}

func TestRunAsk(t *testing.T) {
	color.NoColor = true

	var calls atomic.Int32
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Paris"}]}}]}`)
	}))
	defer server.Close()

	historyPath := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(historyPath, []byte(`[{"role":"user","text":"hello"},{"role":"model","text":"hi"}]`), 0o600))

	var logs, out bytes.Buffer
	status, err := runAsk(context.Background(), testConfig(server.URL, "secret-key-123"), &logs, &out, "capital of France?", historyPath)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, out.String(), `{"response":"Paris"}`)
	assert.Contains(t, gotBody, `"text":"hello"`)
	assert.Contains(t, gotBody, `"text":"capital of France?"`)
	assert.NotContains(t, logs.String(), "secret-key-123")
}

func TestRunAsk_MissingKey(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	status, err := runAsk(context.Background(), testConfig("http://127.0.0.1:1", ""), io.Discard, &out, "hi", "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, out.String(), "API key missing")
}

func TestLoadHistory(t *testing.T) {
	dir := t.TempDir()

	turns, err := loadHistory("")
	require.NoError(t, err)
	assert.Nil(t, turns)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"role":"model","text":"b"}]`), 0o600))
	turns, err = loadHistory(good)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChatTurn{{Role: domain.RoleModel, Text: "b"}}, turns)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))
	_, err = loadHistory(bad)
	assert.Error(t, err)

	_, err = loadHistory(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, "super-secret-value")

	logger.Info("dropped")
	logger.Warn("call failed", slog.String("detail", "used super-secret-value"))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "call failed")
	assert.NotContains(t, out, "super-secret-value")
	assert.True(t, strings.Contains(out, "[REDACTED]"), out)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Equal(t, "hpn-chat-relay "+version+"\n", buf.String())
}
