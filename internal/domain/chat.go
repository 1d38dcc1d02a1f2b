// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the application.
package domain

import (
	"fmt"
	"strings"
)

// Role identifies the author of a chat turn.
type Role string

const (
	// RoleUser marks a turn written by the end user.
	RoleUser Role = "user"

	// RoleModel marks a turn produced by the generative model.
	RoleModel Role = "model"
)

// IsValid reports whether the role is one the upstream API accepts.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleModel
}

// ChatTurn is one role-tagged message of a conversation history.
type ChatTurn struct {
	// Role is either "user" or "model".
	Role Role `json:"role"`

	// Text is the message content.
	Text string `json:"text"`
}

// ChatPayload is the body a caller posts to the relay.
type ChatPayload struct {
	// Prompt is the new user message. Required.
	Prompt string `json:"prompt"`

	// ChatHistory holds earlier turns, oldest first. Optional.
	ChatHistory []ChatTurn `json:"chatHistory,omitempty"`
}

// Validate checks the payload and returns a *ValidationError listing every problem found.
func (p *ChatPayload) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Prompt) == "" {
		problems = append(problems, "prompt is required")
	}

	for i, turn := range p.ChatHistory {
		if !turn.Role.IsValid() {
			problems = append(problems, fmt.Sprintf("chatHistory[%d].role %q must be one of: user, model", i, turn.Role))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
