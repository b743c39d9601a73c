package openai

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/synth"
	"github.com/polyglot-ai/mocktransport/internal/tokens"
)

// defaultModel is echoed in responses when the request carried no model.
const defaultModel = "gpt-4.1-nano"

type synthesizer struct {
	counter *tokens.Counter
}

func init() {
	synth.Register(&synthesizer{counter: tokens.Default()})
}

// Provider implements synth.Synthesizer.
func (s *synthesizer) Provider() domain.Provider {
	return domain.ProviderOpenAI
}

// Success builds a chat.completion envelope with one assistant choice and
// token usage derived from the request messages and the response text.
func (s *synthesizer) Success(rc *domain.RequestContext, md domain.RequestMetadata, text string) *domain.MockResponse {
	model := md.Model
	if model == "" {
		model = defaultModel
	}

	promptTokens := s.counter.Count(model, PromptText(rc))
	completionTokens := s.counter.Count(model, text)

	return &domain.MockResponse{
		Body: ChatCompletionResponse{
			ID:      fmt.Sprintf("chatcmpl-%s", strings.ReplaceAll(uuid.NewString(), "-", "")),
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   model,
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

// Error maps an abstract error class to OpenAI's status-code convention and
// error envelope.
func (s *synthesizer) Error(rc *domain.RequestContext, md domain.RequestMetadata, class domain.ErrorClass) *domain.MockResponse {
	var body ErrorBody
	switch class {
	case domain.ErrorClassRateLimit:
		body = ErrorBody{
			Message: "Rate limit reached for requests.",
			Type:    "rate_limit_error",
			Code:    "rate_limit_exceeded",
		}
	case domain.ErrorClassInvalidRequest:
		body = ErrorBody{
			Message: "The request was malformed or missing required parameters.",
			Type:    "invalid_request_error",
			Code:    "invalid_request",
		}
	default:
		body = ErrorBody{
			Message: "The server had an error while processing your request.",
			Type:    "server_error",
			Code:    "server_error",
		}
	}

	return &domain.MockResponse{
		StatusCode: class.HTTPStatus(),
		Body:       ErrorResponse{Error: body},
	}
}

// PromptText joins the content of all chat messages in the request body.
// Non-message bodies yield an empty prompt.
func PromptText(rc *domain.RequestContext) string {
	body := rc.BodyObject()
	if body == nil {
		return ""
	}
	messages, _ := body["messages"].([]any)
	var parts []string
	for _, m := range messages {
		msg, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if content, ok := msg["content"].(string); ok && content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n")
}
