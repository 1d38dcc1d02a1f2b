// Package relay turns one inbound chat request into one upstream generateContent
// call and maps the outcome back to a status code and JSON body.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpn/hpn-chat-relay/internal/adapter"
	"github.com/hpn/hpn-chat-relay/internal/domain"
	"github.com/hpn/hpn-chat-relay/internal/metrics"
	"github.com/hpn/hpn-chat-relay/internal/security"
)

// FallbackReply is returned with status 200 when a successful upstream answer
// carries no candidate text. The relay degrades instead of failing.
const FallbackReply = "Sorry, no response could be generated."

// Caller-visible error messages.
const (
	msgMethodNotAllowed = "Method Not Allowed"
	msgMissingAPIKey    = "Server configuration error: API key missing."
	msgUpstreamError    = "Upstream API error"
	msgInternalError    = "Internal Server Error"
)

// IncomingRequest is the part of an HTTP request the relay looks at.
type IncomingRequest struct {
	Method string
	Body   []byte

	// BodyErr is set when the body could not be read. It is reported only
	// after the method and key checks have passed.
	BodyErr error
}

// OutgoingResponse is the relay's answer. Body is always a JSON document.
type OutgoingResponse struct {
	StatusCode int
	Body       []byte
}

// SuccessBody is the JSON shape of a 200 answer.
type SuccessBody struct {
	Response string `json:"response"`
}

// ErrorBody is the JSON shape of every non-200 answer.
type ErrorBody struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Settings are the operator-chosen, caller-independent upstream parameters.
type Settings struct {
	Model      string
	Generation adapter.GeminiGenerationConfig
}

// Relay is the chat relay handler. It is safe for concurrent use; nothing is
// shared between invocations besides the read-only configuration.
type Relay struct {
	apiKey       string
	settings     Settings
	newGenerator adapter.GeneratorFactory
	redactor     *security.Redactor
	logger       *slog.Logger
	metrics      *metrics.Metrics
	clientName   string
}

// Option is a functional option for configuring Relay.
type Option func(*Relay)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records upstream call outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

// WithClientName sets the backend label used in logs and metrics.
func WithClientName(name string) Option {
	return func(r *Relay) {
		r.clientName = name
	}
}

// New creates a Relay. apiKey may be empty; every POST is then answered with a
// configuration error instead of reaching upstream.
func New(apiKey string, settings Settings, factory adapter.GeneratorFactory, opts ...Option) *Relay {
	r := &Relay{
		apiKey:       apiKey,
		settings:     settings,
		newGenerator: factory,
		redactor:     security.NewRedactor(apiKey),
		logger:       slog.Default(),
		clientName:   string(adapter.ClientREST),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// HasAPIKey reports whether an upstream key is configured.
func (r *Relay) HasAPIKey() bool {
	return r.apiKey != ""
}

// Model returns the configured upstream model name.
func (r *Relay) Model() string {
	return r.settings.Model
}

// ClientName returns the backend label.
func (r *Relay) ClientName() string {
	return r.clientName
}

// Handle runs one invocation: method check, configuration check, body parsing,
// request construction, the upstream call, and response mapping.
func (r *Relay) Handle(ctx context.Context, in IncomingRequest) (out OutgoingResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic recovered in relay", slog.Any("panic", rec))
			out = r.internalError(fmt.Errorf("panic: %v", rec))
		}
	}()

	if in.Method != http.MethodPost {
		return r.mapError(domain.ErrMethodNotAllowed)
	}

	if r.apiKey == "" {
		r.logger.Error("upstream API key is not configured")
		return r.mapError(domain.ErrMissingAPIKey)
	}

	if in.BodyErr != nil {
		return r.mapError(in.BodyErr)
	}

	payload, err := DecodePayload(in.Body)
	if err != nil {
		return r.mapError(err)
	}

	reply, err := r.generate(ctx, payload)
	if err != nil {
		return r.mapError(err)
	}

	return respond(http.StatusOK, SuccessBody{Response: reply})
}

// DecodePayload parses and validates a request body.
func DecodePayload(body []byte) (domain.ChatPayload, error) {
	var payload domain.ChatPayload

	if len(strings.TrimSpace(string(body))) == 0 {
		return payload, domain.NewValidationError("request body is required")
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, domain.NewValidationError("invalid JSON body: %v", err)
	}

	if err := payload.Validate(); err != nil {
		return payload, err
	}

	return payload, nil
}

// BuildRequest maps a validated payload to the upstream request body.
func (r *Relay) BuildRequest(payload domain.ChatPayload) adapter.GeminiRequest {
	return adapter.NewGeminiRequest(payload.ChatHistory, payload.Prompt, r.settings.Generation)
}

// generate performs the single upstream call. The caller's cancellation is
// detached: once issued, the call runs to completion or failure.
func (r *Relay) generate(ctx context.Context, payload domain.ChatPayload) (string, error) {
	ctx = context.WithoutCancel(ctx)

	gen, err := r.newGenerator(ctx, r.apiKey)
	if err != nil {
		return "", fmt.Errorf("failed to create upstream client: %w", err)
	}

	req := r.BuildRequest(payload)

	start := time.Now()
	resp, err := gen.GenerateContent(ctx, r.settings.Model, req)
	elapsed := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeInternal
		if _, ok := domain.AsUpstreamError(err); ok {
			outcome = metrics.OutcomeUpstream
		}
		r.metrics.ObserveUpstream(gen.Name(), outcome, elapsed)
		return "", err
	}

	text, ok := r.extractReply(resp)
	outcome := metrics.OutcomeSuccess
	if !ok {
		outcome = metrics.OutcomeFallback
		r.logger.Warn("upstream response carried no text, using fallback reply",
			slog.Int("candidates", len(resp.Candidates)),
		)
	}
	r.metrics.ObserveUpstream(gen.Name(), outcome, elapsed)

	r.logger.Debug("upstream call finished",
		slog.String("client", gen.Name()),
		slog.String("model", r.settings.Model),
		slog.Int("contents", len(req.Contents)),
		slog.Duration("latency", elapsed),
	)

	return text, nil
}

// extractReply applies the leniency policy: a 2xx answer without candidate
// text yields FallbackReply rather than an error.
func (r *Relay) extractReply(resp adapter.GeminiResponse) (string, bool) {
	if text, ok := resp.FirstText(); ok {
		return text, true
	}
	return FallbackReply, false
}

func (r *Relay) mapError(err error) OutgoingResponse {
	switch {
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return respond(http.StatusMethodNotAllowed, ErrorBody{Error: msgMethodNotAllowed})
	case errors.Is(err, domain.ErrMissingAPIKey):
		return respond(http.StatusInternalServerError, ErrorBody{Error: msgMissingAPIKey})
	case domain.IsValidationError(err):
		return respond(http.StatusBadRequest, ErrorBody{Error: err.Error()})
	}

	if ue, ok := domain.AsUpstreamError(err); ok {
		r.logger.Warn("upstream returned an error",
			slog.Int("status", ue.StatusCode),
			slog.String("error", ue.Error()),
		)
		return respond(ue.StatusCode, ErrorBody{
			Error:   msgUpstreamError,
			Status:  ue.StatusCode,
			Details: ue.Details,
		})
	}

	return r.internalError(err)
}

func (r *Relay) internalError(err error) OutgoingResponse {
	details := r.redactor.Redact(err.Error())
	r.logger.Error("relay failed", slog.String("error", details))
	return respond(http.StatusInternalServerError, ErrorBody{Error: msgInternalError, Details: details})
}

func respond(status int, body any) OutgoingResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		encoded = []byte(`{"error":"Internal Server Error"}`)
	}
	return OutgoingResponse{StatusCode: status, Body: encoded}
}
