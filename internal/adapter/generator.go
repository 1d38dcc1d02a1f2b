// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to abstract provider-specific clients behind a common interface.
package adapter

import (
	"context"
	"fmt"
	"net/http"
)

// Generator sends one generateContent call upstream.
// Non-2xx answers are reported as *domain.UpstreamError.
type Generator interface {
	GenerateContent(ctx context.Context, model string, req GeminiRequest) (GeminiResponse, error)

	// Name returns the backend identifier string.
	Name() string
}

// ClientKind selects which Generator implementation talks to the upstream API.
type ClientKind string

const (
	// ClientREST calls the REST endpoint directly with net/http.
	ClientREST ClientKind = "rest"

	// ClientSDK goes through the google.golang.org/genai client.
	ClientSDK ClientKind = "sdk"
)

// IsValid reports whether k names a known backend.
func (k ClientKind) IsValid() bool {
	return k == ClientREST || k == ClientSDK
}

// GeneratorFactory builds a Generator bound to an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// NewGeneratorFactory returns a factory for the given backend.
// baseURL may be empty to use the public Gemini endpoint.
func NewGeneratorFactory(kind ClientKind, baseURL string, httpClient *http.Client) (GeneratorFactory, error) {
	switch kind {
	case ClientREST, "":
		return func(_ context.Context, apiKey string) (Generator, error) {
			opts := []GeminiAdapterOption{}
			if baseURL != "" {
				opts = append(opts, WithBaseURL(baseURL))
			}
			if httpClient != nil {
				opts = append(opts, WithHTTPClient(httpClient))
			}
			return NewGeminiAdapter(apiKey, opts...), nil
		}, nil
	case ClientSDK:
		return func(ctx context.Context, apiKey string) (Generator, error) {
			opts := []SDKAdapterOption{}
			if baseURL != "" {
				opts = append(opts, WithSDKBaseURL(baseURL))
			}
			if httpClient != nil {
				opts = append(opts, WithSDKHTTPClient(httpClient))
			}
			return NewSDKAdapter(ctx, apiKey, opts...)
		}, nil
	default:
		return nil, fmt.Errorf("unknown upstream client %q", kind)
	}
}
