// Package analyze classifies outbound calls: which provider family they
// target, whether they are internal to the system under test, the canonical
// endpoint, and the model identifier when one can be derived.
package analyze

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/polyglot-ai/mocktransport/internal/domain"
)

// Canonical endpoint routes. Raw paths are normalized to these for
// cross-test comparability.
const (
	EndpointChatCompletions = "/chat/completions"
	EndpointGenerateContent = "/models/{model}:generateContent"
)

// generateContentPath matches Google-style generate-content paths and
// captures the model segment between "/models/" and the first colon.
// Model ids containing colons keep only the leading segment.
var generateContentPath = regexp.MustCompile(`/models/([^/:]+)[^/]*:generateContent`)

// Analyzer maps request contexts to request metadata. Provider hostnames and
// the internal-host allow-list are fixed at construction; there is no
// substring guessing at classification time.
type Analyzer struct {
	providerHosts    map[string]domain.Provider
	internalHosts    map[string]struct{}
	internalSuffixes []string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithInternalHosts adds hostnames to the internal allow-list.
func WithInternalHosts(hosts ...string) Option {
	return func(a *Analyzer) {
		for _, h := range hosts {
			a.internalHosts[strings.ToLower(h)] = struct{}{}
		}
	}
}

// WithInternalSuffixes adds hostname suffixes (e.g. ".internal") that mark
// a call as internal.
func WithInternalSuffixes(suffixes ...string) Option {
	return func(a *Analyzer) {
		for _, s := range suffixes {
			a.internalSuffixes = append(a.internalSuffixes, strings.ToLower(s))
		}
	}
}

// WithProviderHost registers an additional provider hostname, e.g. a
// self-hosted OpenAI-compatible domain.
func WithProviderHost(host string, p domain.Provider) Option {
	return func(a *Analyzer) {
		a.providerHosts[strings.ToLower(host)] = p
	}
}

// New creates an Analyzer with the real provider domains registered and
// localhost/loopback on the internal allow-list.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		providerHosts: map[string]domain.Provider{
			"api.openai.com":                    domain.ProviderOpenAI,
			"generativelanguage.googleapis.com": domain.ProviderGoogle,
			"openrouter.ai":                     domain.ProviderOpenRouter,
		},
		internalHosts: map[string]struct{}{
			"localhost": {},
			"127.0.0.1": {},
			"0.0.0.0":   {},
			"::1":       {},
		},
		internalSuffixes: []string{".internal", ".local"},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze derives RequestMetadata from a RequestContext. Classification is
// permissive: an unmatched hostname yields ProviderUnknown and an
// undetectable model stays empty, leaving the admission decision to the
// active scenario.
func (a *Analyzer) Analyze(rc *domain.RequestContext) domain.RequestMetadata {
	u, err := url.Parse(rc.URL)
	if err != nil {
		return domain.RequestMetadata{
			Provider:    domain.ProviderUnknown,
			Endpoint:    rc.URL,
			ExternalAPI: true,
		}
	}

	host := strings.ToLower(u.Hostname())
	internal := a.isInternal(host)
	endpoint, pathModel := canonicalEndpoint(u.Path)

	md := domain.RequestMetadata{
		Provider:        a.matchProvider(host),
		Endpoint:        endpoint,
		InternalRequest: internal,
		ExternalAPI:     !internal,
	}

	switch endpoint {
	case EndpointChatCompletions:
		if body := rc.BodyObject(); body != nil {
			if model, ok := body["model"].(string); ok {
				md.Model = model
			}
		}
	case EndpointGenerateContent:
		md.Model = pathModel
	}

	return md
}

// matchProvider matches the hostname against the registered provider
// domains. A hostname matches when it equals the registered domain or is a
// subdomain of it; broader fuzzy matching is out of scope.
func (a *Analyzer) matchProvider(host string) domain.Provider {
	if p, ok := a.providerHosts[host]; ok {
		return p
	}
	for registered, p := range a.providerHosts {
		if strings.HasSuffix(host, "."+registered) {
			return p
		}
	}
	return domain.ProviderUnknown
}

// isInternal checks the hostname against the explicit allow-list and the
// configured suffixes. Loopback IPs are internal even when not listed.
func (a *Analyzer) isInternal(host string) bool {
	if _, ok := a.internalHosts[host]; ok {
		return true
	}
	for _, suffix := range a.internalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}
	return false
}

// canonicalEndpoint normalizes a raw URL path to a canonical route string.
// Unrecognized paths pass through unchanged. The second return value is the
// model captured from a generate-content path, when present.
func canonicalEndpoint(path string) (string, string) {
	if strings.Contains(path, EndpointChatCompletions) {
		return EndpointChatCompletions, ""
	}
	if m := generateContentPath.FindStringSubmatch(path); m != nil {
		return EndpointGenerateContent, m[1]
	}
	return path, ""
}
