// Package openrouter synthesizes wire-accurate OpenRouter payloads. The
// success envelope is OpenAI-compatible with OpenRouter's gen- id prefix and
// routed-provider field; the error envelope carries a numeric code matching
// the HTTP status.
package openrouter

// ChatCompletionResponse is the OpenRouter chat completion success envelope.
type ChatCompletionResponse struct {
	ID       string   `json:"id"`
	Object   string   `json:"object"`
	Created  int64    `json:"created"`
	Model    string   `json:"model"`
	Provider string   `json:"provider"`
	Choices  []Choice `json:"choices"`
	Usage    Usage    `json:"usage"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatMessage is a chat message in a completion response.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage carries token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse is the OpenRouter error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the error object inside an ErrorResponse. Code is numeric
// and equals the HTTP status.
type ErrorBody struct {
	Code     int            `json:"code"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
