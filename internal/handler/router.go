package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hpn/hpn-chat-relay/internal/metrics"
	"github.com/hpn/hpn-chat-relay/internal/relay"
)

// Chat routes. The second path keeps existing serverless-style clients working.
const (
	RouteChat       = "/api/chat"
	RouteChatCompat = "/.netlify/functions/gemini-chat"
	RouteHealth     = "/health"
	RouteMetrics    = "/metrics"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Relay        *relay.Relay
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer // nil disables /metrics
	MaxBodyBytes int64
	CORSEnabled  bool
	Console      bool
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	chat := NewChatHandler(cfg.Relay,
		WithLogger(logger),
		WithMaxBodyBytes(cfg.MaxBodyBytes),
	)

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	if cfg.CORSEnabled {
		router.Use(CORSMiddleware())
	}
	router.Use(MetricsMiddleware(cfg.Metrics))
	router.Use(LoggingMiddleware(logger, cfg.Console))

	// All methods go to the relay so that anything but POST gets its 405 body.
	router.Any(RouteChat, chat.HandleChat)
	router.Any(RouteChatCompat, chat.HandleChat)

	router.GET(RouteHealth, chat.HandleHealth)
	if cfg.Gatherer != nil {
		router.GET(RouteMetrics, gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	return router
}
