// Package scenario defines the two-phase mock policy contract and a library
// of composable factories for common policies.
//
// A scenario is declarative: phase one (RequestExpected) decides admission,
// phase two (GenerateResponse) runs only after phase one returned true.
// The split keeps "no unexpected calls occurred" (admission failure, a hard
// test failure) distinct from "the call occurred but got a deliberately bad
// response" (an error-shaped body). These are different test intents.
package scenario

import (
	"github.com/polyglot-ai/mocktransport/internal/domain"

	// Register the built-in synthesizers the factories dispatch to.
	_ "github.com/polyglot-ai/mocktransport/internal/synth/google"
	_ "github.com/polyglot-ai/mocktransport/internal/synth/openai"
	_ "github.com/polyglot-ai/mocktransport/internal/synth/openrouter"
)

// Scenario is a swappable policy governing which outbound calls are
// permitted and what they receive in response. Implementations must be
// stateless: both phases are deterministic for identical input given fixed
// configuration, and invocation has no side effects on the scenario.
type Scenario interface {
	// Name identifies the policy in logs and rejection errors.
	Name() string

	// RequestExpected decides admission for a call. It receives the same
	// context and metadata the generator will receive.
	RequestExpected(rc *domain.RequestContext, md domain.RequestMetadata) bool

	// GenerateResponse produces a complete MockResponse. It is only ever
	// invoked when RequestExpected returned true for the same call.
	GenerateResponse(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error)
}

// Policy adapts inline functions to the Scenario interface for one-off
// test policies.
type Policy struct {
	// ScenarioName is the policy name; required.
	ScenarioName string

	// Expect is the phase-one admission predicate. Nil rejects everything.
	Expect func(rc *domain.RequestContext, md domain.RequestMetadata) bool

	// Respond is the phase-two generator. Nil admits nothing useful and
	// must not be reachable when Expect never returns true.
	Respond func(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error)
}

// Name implements Scenario.
func (p *Policy) Name() string { return p.ScenarioName }

// RequestExpected implements Scenario.
func (p *Policy) RequestExpected(rc *domain.RequestContext, md domain.RequestMetadata) bool {
	if p.Expect == nil {
		return false
	}
	return p.Expect(rc, md)
}

// GenerateResponse implements Scenario.
func (p *Policy) GenerateResponse(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
	return p.Respond(rc, md)
}
