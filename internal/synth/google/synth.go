package google

import (
	"strings"

	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/synth"
	"github.com/polyglot-ai/mocktransport/internal/tokens"
)

const defaultModel = "gemini-2.5-flash"

type synthesizer struct {
	counter *tokens.Counter
}

func init() {
	synth.Register(&synthesizer{counter: tokens.Default()})
}

// Provider implements synth.Synthesizer.
func (s *synthesizer) Provider() domain.Provider {
	return domain.ProviderGoogle
}

// Success builds a candidates envelope with one model-role candidate and a
// usage-metadata block.
func (s *synthesizer) Success(rc *domain.RequestContext, md domain.RequestMetadata, text string) *domain.MockResponse {
	model := md.Model
	if model == "" {
		model = defaultModel
	}

	promptTokens := s.counter.Count(model, PromptText(rc))
	candidateTokens := s.counter.Count(model, text)

	return &domain.MockResponse{
		Body: GenerateContentResponse{
			Candidates: []Candidate{{
				Content: Content{
					Parts: []Part{{Text: text}},
					Role:  "model",
				},
				FinishReason: "STOP",
				Index:        0,
			}},
			UsageMetadata: UsageMetadata{
				PromptTokenCount:     promptTokens,
				CandidatesTokenCount: candidateTokens,
				TotalTokenCount:      promptTokens + candidateTokens,
			},
		},
	}
}

// Error maps an abstract error class to Google's error envelope, where the
// numeric code mirrors the HTTP status.
func (s *synthesizer) Error(rc *domain.RequestContext, md domain.RequestMetadata, class domain.ErrorClass) *domain.MockResponse {
	status := class.HTTPStatus()

	var body ErrorStatus
	switch class {
	case domain.ErrorClassRateLimit:
		body = ErrorStatus{
			Code:    status,
			Message: "Resource has been exhausted (e.g. check quota).",
			Status:  "RESOURCE_EXHAUSTED",
		}
	case domain.ErrorClassInvalidRequest:
		body = ErrorStatus{
			Code:    status,
			Message: "Request contains an invalid argument.",
			Status:  "INVALID_ARGUMENT",
		}
	default:
		body = ErrorStatus{
			Code:    status,
			Message: "An internal error has occurred.",
			Status:  "INTERNAL",
		}
	}

	return &domain.MockResponse{
		StatusCode: status,
		Body:       ErrorResponse{Error: body},
	}
}

// PromptText joins the text parts of all contents in the request body.
func PromptText(rc *domain.RequestContext) string {
	body := rc.BodyObject()
	if body == nil {
		return ""
	}
	contents, _ := body["contents"].([]any)
	var out []string
	for _, c := range contents {
		content, ok := c.(map[string]any)
		if !ok {
			continue
		}
		parts, _ := content["parts"].([]any)
		for _, p := range parts {
			part, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				out = append(out, text)
			}
		}
	}
	return strings.Join(out, "\n")
}
