package openrouter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/synth"
	"github.com/polyglot-ai/mocktransport/internal/synth/openai"
	"github.com/polyglot-ai/mocktransport/internal/tokens"
)

const defaultModel = "openai/gpt-4.1-nano"

type synthesizer struct {
	counter *tokens.Counter
}

func init() {
	synth.Register(&synthesizer{counter: tokens.Default()})
}

// Provider implements synth.Synthesizer.
func (s *synthesizer) Provider() domain.Provider {
	return domain.ProviderOpenRouter
}

// Success builds an OpenAI-compatible chat.completion envelope with
// OpenRouter's id prefix and routed-provider field. The request body shape
// is OpenAI-compatible, so prompt extraction is shared with the openai
// synthesizer.
func (s *synthesizer) Success(rc *domain.RequestContext, md domain.RequestMetadata, text string) *domain.MockResponse {
	model := md.Model
	if model == "" {
		model = defaultModel
	}

	promptTokens := s.counter.Count(model, openai.PromptText(rc))
	completionTokens := s.counter.Count(model, text)

	return &domain.MockResponse{
		Body: ChatCompletionResponse{
			ID:       fmt.Sprintf("gen-%s", strings.ReplaceAll(uuid.NewString(), "-", "")),
			Object:   "chat.completion",
			Created:  time.Now().Unix(),
			Model:    model,
			Provider: routedProvider(model),
			Choices: []Choice{{
				Index:        0,
				Message:      ChatMessage{Role: "assistant", Content: text},
				FinishReason: "stop",
			}},
			Usage: Usage{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      promptTokens + completionTokens,
			},
		},
	}
}

// Error maps an abstract error class to OpenRouter's error envelope, whose
// numeric code mirrors the HTTP status.
func (s *synthesizer) Error(rc *domain.RequestContext, md domain.RequestMetadata, class domain.ErrorClass) *domain.MockResponse {
	status := class.HTTPStatus()

	var message string
	switch class {
	case domain.ErrorClassRateLimit:
		message = "Rate limit exceeded: free-tier requests per minute."
	case domain.ErrorClassInvalidRequest:
		message = "Invalid request: bad or missing parameters."
	default:
		message = "Internal server error."
	}

	return &domain.MockResponse{
		StatusCode: status,
		Body:       ErrorResponse{Error: ErrorBody{Code: status, Message: message}},
	}
}

// routedProvider derives the upstream provider label from the model's
// org prefix, e.g. "openai/gpt-4.1-nano" routes to "OpenAI".
func routedProvider(model string) string {
	org, _, found := strings.Cut(model, "/")
	if !found || org == "" {
		return "OpenRouter"
	}
	switch org {
	case "openai":
		return "OpenAI"
	case "google":
		return "Google"
	case "anthropic":
		return "Anthropic"
	default:
		return strings.ToUpper(org[:1]) + org[1:]
	}
}
