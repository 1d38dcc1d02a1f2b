package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/hpn/hpn-chat-relay/internal/domain"
)

// SDKAdapter implements Generator on top of the official genai client.
// Upstream failures are normalised to *domain.UpstreamError so callers cannot
// tell the two backends apart.
type SDKAdapter struct {
	client *genai.Client
}

type sdkSettings struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

// SDKAdapterOption is a functional option for configuring SDKAdapter.
type SDKAdapterOption func(*sdkSettings)

// WithSDKBaseURL points the client at a custom endpoint. A trailing API version
// segment such as "/v1beta" is split off and passed separately, so the same
// base URL works for both backends.
func WithSDKBaseURL(baseURL string) SDKAdapterOption {
	return func(s *sdkSettings) {
		s.baseURL, s.apiVersion = splitAPIVersion(baseURL)
	}
}

// WithSDKHTTPClient sets a custom HTTP client.
func WithSDKHTTPClient(client *http.Client) SDKAdapterOption {
	return func(s *sdkSettings) {
		s.httpClient = client
	}
}

// NewSDKAdapter creates a genai-backed Generator for the Gemini API backend.
func NewSDKAdapter(ctx context.Context, apiKey string, opts ...SDKAdapterOption) (*SDKAdapter, error) {
	settings := &sdkSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: settings.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    settings.baseURL,
			APIVersion: settings.apiVersion,
		},
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &SDKAdapter{client: client}, nil
}

// Name returns the backend identifier.
func (s *SDKAdapter) Name() string {
	return string(ClientSDK)
}

// GenerateContent translates req to genai types, calls the model, and translates back.
func (s *SDKAdapter) GenerateContent(ctx context.Context, model string, req GeminiRequest) (GeminiResponse, error) {
	contents := make([]*genai.Content, 0, len(req.Contents))
	for _, c := range req.Contents {
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, &genai.Content{Role: c.Role, Parts: parts})
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.GenerationConfig.Temperature)),
		MaxOutputTokens: int32(req.GenerationConfig.MaxOutputTokens),
	}

	result, err := s.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return GeminiResponse{}, upstreamErrorFromAPIError(apiErr)
		}
		return GeminiResponse{}, fmt.Errorf("failed to execute genai request: %w", err)
	}

	return fromSDKResponse(result), nil
}

// upstreamErrorFromAPIError rebuilds the {"error": {...}} envelope the REST API returns.
func upstreamErrorFromAPIError(apiErr genai.APIError) *domain.UpstreamError {
	detail := map[string]any{
		"code":    apiErr.Code,
		"message": apiErr.Message,
		"status":  apiErr.Status,
	}
	if len(apiErr.Details) > 0 {
		detail["details"] = apiErr.Details
	}

	status := apiErr.Code
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}

	return &domain.UpstreamError{
		StatusCode: status,
		Details:    map[string]any{"error": detail},
	}
}

func fromSDKResponse(result *genai.GenerateContentResponse) GeminiResponse {
	var resp GeminiResponse
	if result == nil {
		return resp
	}

	for _, cand := range result.Candidates {
		if cand == nil {
			continue
		}
		gc := GeminiCandidate{FinishReason: string(cand.FinishReason)}
		if cand.Content != nil {
			content := &GeminiContent{Role: cand.Content.Role}
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				content.Parts = append(content.Parts, GeminiPart{Text: p.Text})
			}
			gc.Content = content
		}
		resp.Candidates = append(resp.Candidates, gc)
	}

	return resp
}

// splitAPIVersion turns "https://host/v1beta" into ("https://host/", "v1beta").
func splitAPIVersion(baseURL string) (string, string) {
	trimmed := strings.TrimSuffix(baseURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return baseURL, ""
	}

	last := trimmed[idx+1:]
	if strings.HasPrefix(last, "v1") {
		return trimmed[:idx+1], last
	}
	return trimmed + "/", ""
}
