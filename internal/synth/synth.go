// Package synth holds the response-synthesizer registry. Per-provider
// packages register themselves via init(); consumers blank-import the
// provider packages they need and look synthesizers up by provider tag.
//
// Synthesizers are tagged variant builders: each returns a fully-typed,
// schema-accurate payload for its provider, so scenario authors cannot
// produce malformed envelopes by poking nested fields.
package synth

import (
	"sync"

	"github.com/polyglot-ai/mocktransport/internal/domain"
)

// Synthesizer builds wire-accurate success and error payloads for one
// provider family. Implementations are pure functions of their inputs.
type Synthesizer interface {
	// Provider returns the provider tag this synthesizer serves.
	Provider() domain.Provider

	// Success builds the provider's canonical success envelope carrying
	// the given assistant text.
	Success(rc *domain.RequestContext, md domain.RequestMetadata, text string) *domain.MockResponse

	// Error builds the provider's error envelope for the given class,
	// with the provider's real status-code convention.
	Error(rc *domain.RequestContext, md domain.RequestMetadata, class domain.ErrorClass) *domain.MockResponse
}

var (
	mu       sync.RWMutex
	registry = make(map[domain.Provider]Synthesizer)
)

// Register adds a synthesizer to the registry, replacing any previous
// registration for the same provider.
func Register(s Synthesizer) {
	mu.Lock()
	defer mu.Unlock()
	registry[s.Provider()] = s
}

// For returns the synthesizer registered for a provider.
func For(p domain.Provider) (Synthesizer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[p]
	return s, ok
}

// Providers returns the provider tags with a registered synthesizer.
func Providers() []domain.Provider {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]domain.Provider, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	return out
}
