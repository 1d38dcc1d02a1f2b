package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hpn/hpn-chat-relay/internal/adapter"
	"github.com/hpn/hpn-chat-relay/internal/config"
	"github.com/hpn/hpn-chat-relay/internal/metrics"
	"github.com/hpn/hpn-chat-relay/internal/relay"
	"github.com/hpn/hpn-chat-relay/internal/security"
)

// setupLogger creates a structured logger from the logging config.
// Every record passes through the redacting handler, which also knows the API key.
func setupLogger(w io.Writer, cfg config.LoggingConfig, secrets ...string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var inner slog.Handler
	if cfg.Format == "text" {
		inner = slog.NewTextHandler(w, opts)
	} else {
		// JSON format for structured logging
		inner = slog.NewJSONHandler(w, opts)
	}

	return slog.New(security.NewRedactedHandler(inner, secrets...))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildRelay assembles the relay from configuration.
func buildRelay(cfg *config.Configuration, logger *slog.Logger, m *metrics.Metrics) (*relay.Relay, error) {
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout()}

	factory, err := adapter.NewGeneratorFactory(cfg.Upstream.Client, cfg.Upstream.BaseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream client: %w", err)
	}

	settings := relay.Settings{
		Model: cfg.Upstream.Model,
		Generation: adapter.GeminiGenerationConfig{
			Temperature:     cfg.Upstream.Temperature,
			MaxOutputTokens: cfg.Upstream.MaxOutputTokens,
		},
	}

	return relay.New(cfg.Upstream.APIKey, settings, factory,
		relay.WithLogger(logger),
		relay.WithMetrics(m),
		relay.WithClientName(string(cfg.Upstream.Client)),
	), nil
}
