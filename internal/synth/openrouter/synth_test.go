package openrouter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/extract"
	"github.com/polyglot-ai/mocktransport/internal/synth"
	"github.com/polyglot-ai/mocktransport/internal/synth/openrouter"
)

func chatContext(t *testing.T) *domain.RequestContext {
	t.Helper()
	rc, err := extract.FromURL("https://openrouter.ai/api/v1/chat/completions", &extract.RequestInit{
		Method: "POST",
		Body:   []byte(`{"model":"openai/gpt-4.1-nano","messages":[{"role":"user","content":"Say hello"}]}`),
	})
	require.NoError(t, err)
	return rc
}

func TestSuccess(t *testing.T) {
	s, ok := synth.For(domain.ProviderOpenRouter)
	require.True(t, ok, "openrouter synthesizer must self-register")

	rc := chatContext(t)
	md := domain.RequestMetadata{Provider: domain.ProviderOpenRouter, Model: "openai/gpt-4.1-nano", ExternalAPI: true}

	resp := s.Success(rc, md, "Hello!")
	body, ok := resp.Body.(openrouter.ChatCompletionResponse)
	require.True(t, ok, "body must be the typed envelope")

	assert.Contains(t, body.ID, "gen-")
	assert.Equal(t, "chat.completion", body.Object)
	assert.Equal(t, "openai/gpt-4.1-nano", body.Model)
	assert.Equal(t, "OpenAI", body.Provider)
	require.Len(t, body.Choices, 1)
	assert.Equal(t, "assistant", body.Choices[0].Message.Role)
	assert.Equal(t, "Hello!", body.Choices[0].Message.Content)
	assert.Equal(t, "stop", body.Choices[0].FinishReason)
	assert.Equal(t, body.Usage.PromptTokens+body.Usage.CompletionTokens, body.Usage.TotalTokens)
}

func TestError_NumericCode(t *testing.T) {
	s, _ := synth.For(domain.ProviderOpenRouter)
	rc := chatContext(t)
	md := domain.RequestMetadata{Provider: domain.ProviderOpenRouter, ExternalAPI: true}

	for _, class := range []domain.ErrorClass{
		domain.ErrorClassRateLimit,
		domain.ErrorClassInvalidRequest,
		domain.ErrorClassServer,
	} {
		t.Run(string(class), func(t *testing.T) {
			resp := s.Error(rc, md, class)
			assert.Equal(t, class.HTTPStatus(), resp.StatusCode)

			body, ok := resp.Body.(openrouter.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, resp.StatusCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}
