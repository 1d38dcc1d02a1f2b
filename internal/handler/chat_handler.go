package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-chat-relay/internal/domain"
	"github.com/hpn/hpn-chat-relay/internal/relay"
)

// DefaultMaxBodyBytes is used when no body limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// ChatHandler adapts gin requests to relay invocations.
type ChatHandler struct {
	relay        *relay.Relay
	logger       *slog.Logger
	maxBodyBytes int64
}

// ChatHandlerOption is a functional option for configuring ChatHandler.
type ChatHandlerOption func(*ChatHandler)

// WithMaxBodyBytes caps the accepted request body size.
func WithMaxBodyBytes(n int64) ChatHandlerOption {
	return func(h *ChatHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ChatHandlerOption {
	return func(h *ChatHandler) {
		h.logger = logger
	}
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(r *relay.Relay, opts ...ChatHandlerOption) *ChatHandler {
	h := &ChatHandler{
		relay:        r,
		logger:       slog.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandleChat handles every method on the chat routes. Only POST bodies are read;
// a read failure is passed to the relay so the method and key checks still come first.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	in := relay.IncomingRequest{Method: c.Request.Method}

	if c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
		if err != nil {
			in.BodyErr = h.bodyError(c, err)
		} else {
			in.Body = body
		}
	}

	out := h.relay.Handle(c.Request.Context(), in)
	c.Data(out.StatusCode, "application/json", out.Body)
}

// bodyError turns a body read failure into a validation error.
func (h *ChatHandler) bodyError(c *gin.Context, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("request body too large",
			slog.String("request_id", RequestID(c)),
			slog.Int64("limit", tooLarge.Limit),
		)
		return domain.NewValidationError("request body exceeds %d bytes", tooLarge.Limit)
	}

	h.logger.Warn("failed to read request body",
		slog.String("request_id", RequestID(c)),
		slog.String("error", err.Error()),
	)
	return domain.NewValidationError("failed to read request body")
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Client string `json:"client"`
}

// HandleHealth handles GET /health.
// Degraded means the relay is up but every chat call will fail for lack of an API key.
func (h *ChatHandler) HandleHealth(c *gin.Context) {
	status := "healthy"
	if !h.relay.HasAPIKey() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: status,
		Model:  h.relay.Model(),
		Client: h.relay.ClientName(),
	})
}
