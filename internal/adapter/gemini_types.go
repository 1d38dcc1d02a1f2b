package adapter

import (
	"github.com/samber/lo"

	"github.com/hpn/hpn-chat-relay/internal/domain"
)

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents         []GeminiContent        `json:"contents"`
	GenerationConfig GeminiGenerationConfig `json:"generationConfig"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiGenerationConfig contains generation parameters.
// Both values are fixed by the operator, never by the caller.
type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GeminiResponse represents a Gemini generateContent response.
// Only the first part of the first candidate is ever read.
type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// GeminiCandidate represents a single generated candidate.
type GeminiCandidate struct {
	Content      *GeminiContent `json:"content,omitempty"`
	FinishReason string         `json:"finishReason,omitempty"`
}

// GeminiErrorResponse represents an error response from Gemini API.
type GeminiErrorResponse struct {
	Error GeminiErrorDetail `json:"error"`
}

// GeminiErrorDetail contains error details.
type GeminiErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiRequest builds the upstream body: history turns in order, then the
// prompt as a final user turn.
func NewGeminiRequest(history []domain.ChatTurn, prompt string, cfg GeminiGenerationConfig) GeminiRequest {
	contents := lo.Map(history, func(turn domain.ChatTurn, _ int) GeminiContent {
		return GeminiContent{
			Role:  string(turn.Role),
			Parts: []GeminiPart{{Text: turn.Text}},
		}
	})

	contents = append(contents, GeminiContent{
		Role:  string(domain.RoleUser),
		Parts: []GeminiPart{{Text: prompt}},
	})

	return GeminiRequest{
		Contents:         contents,
		GenerationConfig: cfg,
	}
}

// FirstText returns candidates[0].content.parts[0].text.
// ok is false when any link of that path is missing or the text is empty.
func (r GeminiResponse) FirstText() (text string, ok bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	text = content.Parts[0].Text
	return text, text != ""
}
