package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenUsage(t *testing.T) {
	t.Parallel()

	assert.True(t, TokenUsage{Model: "gemini"}.Empty())
	assert.False(t, TokenUsage{CompletionTokens: 1}.Empty())

	assert.Equal(t, 7, TokenUsage{PromptTokens: 3, CompletionTokens: 4}.Total())
	assert.Equal(t, 9, TokenUsage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 9}.Total())
}
