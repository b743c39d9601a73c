package analyze_test

import (
	"testing"

	"github.com/polyglot-ai/mocktransport/internal/analyze"
	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/extract"
)

func mustContext(t *testing.T, rawURL string, init *extract.RequestInit) *domain.RequestContext {
	t.Helper()
	rc, err := extract.FromURL(rawURL, init)
	if err != nil {
		t.Fatalf("FromURL(%q) error = %v", rawURL, err)
	}
	return rc
}

func TestAnalyze_ProviderClassification(t *testing.T) {
	a := analyze.New()

	tests := []struct {
		name         string
		url          string
		wantProvider domain.Provider
		wantExternal bool
	}{
		{
			name:         "openai",
			url:          "https://api.openai.com/v1/chat/completions",
			wantProvider: domain.ProviderOpenAI,
			wantExternal: true,
		},
		{
			name:         "openai subdomain",
			url:          "https://eu.api.openai.com/v1/chat/completions",
			wantProvider: domain.ProviderOpenAI,
			wantExternal: true,
		},
		{
			name:         "google",
			url:          "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
			wantProvider: domain.ProviderGoogle,
			wantExternal: true,
		},
		{
			name:         "openrouter",
			url:          "https://openrouter.ai/api/v1/chat/completions",
			wantProvider: domain.ProviderOpenRouter,
			wantExternal: true,
		},
		{
			name:         "unknown host",
			url:          "https://api.example.com/v1/chat/completions",
			wantProvider: domain.ProviderUnknown,
			wantExternal: true,
		},
		{
			name:         "registered domain embedded in a longer hostname does not match",
			url:          "https://api.openai.com.evil.test/v1/chat/completions",
			wantProvider: domain.ProviderUnknown,
			wantExternal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := a.Analyze(mustContext(t, tt.url, nil))
			if md.Provider != tt.wantProvider {
				t.Errorf("Provider = %q, want %q", md.Provider, tt.wantProvider)
			}
			if md.ExternalAPI != tt.wantExternal {
				t.Errorf("ExternalAPI = %v, want %v", md.ExternalAPI, tt.wantExternal)
			}
			if md.InternalRequest == md.ExternalAPI {
				t.Error("InternalRequest must be the negation of ExternalAPI")
			}
		})
	}
}

func TestAnalyze_InternalClassification(t *testing.T) {
	a := analyze.New(analyze.WithInternalHosts("test-backend"))

	tests := []struct {
		name         string
		url          string
		wantInternal bool
	}{
		{name: "localhost", url: "http://localhost:8001/health", wantInternal: true},
		{name: "loopback ip", url: "http://127.0.0.1:3000/api/chat", wantInternal: true},
		{name: "ipv6 loopback", url: "http://[::1]:8001/health", wantInternal: true},
		{name: "internal suffix", url: "http://profiles.internal/users/1", wantInternal: true},
		{name: "configured host", url: "http://test-backend:9000/todos", wantInternal: true},
		{name: "hostname merely containing localhost", url: "https://notlocalhost.example.com/x", wantInternal: false},
		{name: "external provider", url: "https://api.openai.com/v1/chat/completions", wantInternal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := a.Analyze(mustContext(t, tt.url, nil))
			if md.InternalRequest != tt.wantInternal {
				t.Errorf("InternalRequest = %v, want %v", md.InternalRequest, tt.wantInternal)
			}
		})
	}
}

func TestAnalyze_ModelExtraction(t *testing.T) {
	a := analyze.New()

	t.Run("body-keyed at chat completions", func(t *testing.T) {
		rc := mustContext(t, "https://api.openai.com/v1/chat/completions", &extract.RequestInit{
			Method: "POST",
			Body:   []byte(`{"model":"gpt-4.1-nano","messages":[]}`),
		})
		md := a.Analyze(rc)
		if md.Model != "gpt-4.1-nano" {
			t.Errorf("Model = %q, want gpt-4.1-nano", md.Model)
		}
		if md.Endpoint != analyze.EndpointChatCompletions {
			t.Errorf("Endpoint = %q, want %q", md.Endpoint, analyze.EndpointChatCompletions)
		}
	})

	t.Run("path-keyed generate content", func(t *testing.T) {
		rc := mustContext(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent", nil)
		md := a.Analyze(rc)
		if md.Model != "gemini-2.5-flash" {
			t.Errorf("Model = %q, want gemini-2.5-flash", md.Model)
		}
		if md.Endpoint != analyze.EndpointGenerateContent {
			t.Errorf("Endpoint = %q, want %q", md.Endpoint, analyze.EndpointGenerateContent)
		}
	})

	t.Run("model id with extra colon keeps leading segment", func(t *testing.T) {
		rc := mustContext(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-tuned:v2:generateContent", nil)
		md := a.Analyze(rc)
		if md.Model != "gemini-tuned" {
			t.Errorf("Model = %q, want gemini-tuned", md.Model)
		}
	})

	t.Run("body model ignored off the chat completions path", func(t *testing.T) {
		rc := mustContext(t, "https://api.openai.com/v1/embeddings", &extract.RequestInit{
			Method: "POST",
			Body:   []byte(`{"model":"text-embedding-3-small"}`),
		})
		md := a.Analyze(rc)
		if md.Model != "" {
			t.Errorf("Model = %q, want empty", md.Model)
		}
	})

	t.Run("no model is not an error", func(t *testing.T) {
		rc := mustContext(t, "https://api.openai.com/v1/chat/completions", &extract.RequestInit{
			Method: "POST",
			Body:   []byte(`{"messages":[]}`),
		})
		md := a.Analyze(rc)
		if md.Model != "" {
			t.Errorf("Model = %q, want empty", md.Model)
		}
	})
}

func TestAnalyze_EndpointCanonicalization(t *testing.T) {
	a := analyze.New()

	tests := []struct {
		url  string
		want string
	}{
		{"https://api.openai.com/v1/chat/completions", "/chat/completions"},
		{"https://openrouter.ai/api/v1/chat/completions", "/chat/completions"},
		{"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent", "/models/{model}:generateContent"},
		{"http://localhost:8001/health", "/health"},
	}

	for _, tt := range tests {
		md := a.Analyze(mustContext(t, tt.url, nil))
		if md.Endpoint != tt.want {
			t.Errorf("Analyze(%q).Endpoint = %q, want %q", tt.url, md.Endpoint, tt.want)
		}
	}
}

func TestAnalyze_CustomProviderHost(t *testing.T) {
	a := analyze.New(analyze.WithProviderHost("llm.corp.example", domain.ProviderOpenAI))
	md := a.Analyze(mustContext(t, "https://llm.corp.example/v1/chat/completions", nil))
	if md.Provider != domain.ProviderOpenAI {
		t.Errorf("Provider = %q, want openai for registered custom host", md.Provider)
	}
}
