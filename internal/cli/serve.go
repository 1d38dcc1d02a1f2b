package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hpn/hpn-chat-relay/internal/handler"
	"github.com/hpn/hpn-chat-relay/internal/metrics"
	"github.com/hpn/hpn-chat-relay/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP relay",
	Long: `Run the HTTP relay with graceful shutdown on SIGINT/SIGTERM.

Routes:
  POST /api/chat                         chat relay
  POST /.netlify/functions/gemini-chat   chat relay (compatibility path)
  GET  /health                           liveness and key status
  GET  /metrics                          prometheus metrics

Examples:
  # Serve with defaults and GEMINI_API_KEY from the environment or .env
  relay serve

  # Custom config and port
  relay serve --config ./configs/config.yaml --port 9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().String("host", "", "bind address (overrides server.host)")
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(os.Stdout, cfg.Logging, cfg.Upstream.APIKey)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("address", cfg.Address()),
		slog.String("model", cfg.Upstream.Model),
		slog.String("client", string(cfg.Upstream.Client)),
		slog.Float64("temperature", cfg.Upstream.Temperature),
		slog.Int("max_output_tokens", cfg.Upstream.MaxOutputTokens),
		slog.Bool("cors_enabled", cfg.Server.CORSEnabled),
	)

	if !cfg.HasAPIKey() {
		logger.Warn("upstream API key is not configured; chat requests will fail until it is set",
			slog.String("env", "GEMINI_API_KEY"),
		)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	r, err := buildRelay(cfg, logger, m)
	if err != nil {
		return err
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Relay:        r,
		Logger:       logger,
		Metrics:      m,
		Gatherer:     reg,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORSEnabled:  cfg.Server.CORSEnabled,
		Console:      cfg.Logging.Console,
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	if cfg.Logging.Console {
		ui.PrintBanner(version)
		ui.PrintStartupInfo(cfg.Address(), cfg.Upstream.Model, string(cfg.Upstream.Client), cfg.HasAPIKey())
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("address", srv.Addr))
		if cfg.Logging.Console {
			ui.PrintInfo(fmt.Sprintf("Listening on http://%s (Ctrl+C to stop)", srv.Addr))
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if cfg.Logging.Console {
		ui.PrintShutdown()
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped gracefully")
	if cfg.Logging.Console {
		ui.PrintGoodbye()
	}

	return nil
}
