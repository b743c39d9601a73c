// Package domain provides the canonical types shared by the mock transport:
// request contexts, derived request metadata, mock responses, and the
// traffic log model.
package domain

import "time"

// Provider identifies a classified third-party AI API family.
type Provider string

const (
	// ProviderOpenAI is the official OpenAI API.
	ProviderOpenAI Provider = "openai"

	// ProviderGoogle is the Google Generative Language API.
	ProviderGoogle Provider = "google"

	// ProviderOpenRouter is the OpenRouter API.
	ProviderOpenRouter Provider = "openrouter"

	// ProviderUnknown is used when the hostname matches no registered provider.
	ProviderUnknown Provider = "unknown"
)

// RequestContext is the uniform record of one outbound HTTP call.
// It is derived fresh per call and never mutated afterwards.
type RequestContext struct {
	// URL is the full request URL in string form.
	URL string `json:"url"`

	// Method is the HTTP method, defaulting to GET when not supplied.
	Method string `json:"method"`

	// Headers holds the normalized request headers. All accepted header
	// representations collapse into this single map form.
	Headers map[string]string `json:"headers"`

	// Body is the parsed request body: a JSON value when the raw bytes
	// parse as JSON, the raw string otherwise, or nil when absent.
	Body any `json:"body,omitempty"`

	// RawBody preserves the undecoded body bytes for pass-through.
	RawBody []byte `json:"-"`
}

// BodyObject returns the parsed body as a JSON object, or nil when the
// body is absent or not an object.
func (rc *RequestContext) BodyObject() map[string]any {
	obj, _ := rc.Body.(map[string]any)
	return obj
}

// Clone returns a deep copy of the context: the header map, the raw body
// bytes, and the parsed body value are all copied, so mutating the result
// cannot reach the original.
func (rc RequestContext) Clone() RequestContext {
	out := rc
	if rc.Headers != nil {
		out.Headers = make(map[string]string, len(rc.Headers))
		for name, value := range rc.Headers {
			out.Headers[name] = value
		}
	}
	if rc.RawBody != nil {
		out.RawBody = append([]byte(nil), rc.RawBody...)
	}
	out.Body = cloneJSONValue(rc.Body)
	return out
}

// cloneJSONValue deep-copies a parsed JSON value. Scalars are immutable and
// pass through as-is.
func cloneJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[key] = cloneJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneJSONValue(item)
		}
		return out
	default:
		return val
	}
}

// RequestMetadata is derived from a RequestContext by the analyzer.
// It is never persisted; ExternalAPI is always the negation of
// InternalRequest.
type RequestMetadata struct {
	// Provider is the classified API family.
	Provider Provider `json:"provider"`

	// Model is the model identifier when it could be derived, either from
	// the JSON body or from a URL path segment. Empty when undetectable.
	Model string `json:"model,omitempty"`

	// Endpoint is the canonical route string, e.g. "/chat/completions".
	Endpoint string `json:"endpoint"`

	// ExternalAPI reports whether the call targets a real third-party API.
	ExternalAPI bool `json:"isExternalApi"`

	// InternalRequest reports whether the call targets the system under
	// test's own local server. Internal calls always bypass scenarios.
	InternalRequest bool `json:"isInternalRequest"`
}

// MockResponse is the intended wire response before serialization.
type MockResponse struct {
	// StatusCode is the HTTP status; zero means 200.
	StatusCode int `json:"status,omitempty"`

	// Headers are additional response headers. Content-Type defaults to
	// application/json.
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the JSON value to serialize as the response body.
	Body any `json:"body"`

	// Delay is a fixed, deterministic wait applied before responding.
	Delay time.Duration `json:"delay,omitempty"`
}

// ErrorClass is an abstract provider error category. Each synthesizer maps
// a class to its provider's real HTTP status and error envelope shape.
type ErrorClass string

const (
	// ErrorClassRateLimit maps to HTTP 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassInvalidRequest maps to HTTP 400 responses.
	ErrorClassInvalidRequest ErrorClass = "invalid_request"

	// ErrorClassServer maps to HTTP 500 responses.
	ErrorClassServer ErrorClass = "server_error"
)

// HTTPStatus returns the HTTP status code shared by all provider families
// for this error class.
func (c ErrorClass) HTTPStatus() int {
	switch c {
	case ErrorClassRateLimit:
		return 429
	case ErrorClassInvalidRequest:
		return 400
	default:
		return 500
	}
}

// Valid reports whether c is one of the known error classes.
func (c ErrorClass) Valid() bool {
	switch c {
	case ErrorClassRateLimit, ErrorClassInvalidRequest, ErrorClassServer:
		return true
	}
	return false
}
