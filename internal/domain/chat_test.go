package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleModel.IsValid())
	assert.False(t, Role("system").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestChatPayload_Validate(t *testing.T) {
	tests := []struct {
		name         string
		payload      ChatPayload
		wantProblems []string
	}{
		{
			name:    "prompt only",
			payload: ChatPayload{Prompt: "hello"},
		},
		{
			name: "prompt with history",
			payload: ChatPayload{
				Prompt:      "c",
				ChatHistory: []ChatTurn{{Role: RoleUser, Text: "a"}, {Role: RoleModel, Text: "b"}},
			},
		},
		{
			name:         "blank prompt",
			payload:      ChatPayload{Prompt: "  \n\t"},
			wantProblems: []string{"prompt is required"},
		},
		{
			name: "every problem is collected",
			payload: ChatPayload{
				ChatHistory: []ChatTurn{
					{Role: RoleUser, Text: "a"},
					{Role: "assistant", Text: "b"},
					{Role: "", Text: "c"},
				},
			},
			wantProblems: []string{
				"prompt is required",
				`chatHistory[1].role "assistant" must be one of: user, model`,
				`chatHistory[2].role "" must be one of: user, model`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantProblems == nil {
				assert.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantProblems, ve.Problems)
			assert.True(t, IsValidationError(err))
		})
	}
}
