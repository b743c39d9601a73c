package scenario

import (
	"fmt"
	"time"

	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/synth"
)

// DefaultContent is the assistant text used when a factory receives no
// content override for a provider.
const DefaultContent = "This is a mocked response."

// providerSet answers membership for a factory's declared provider list.
type providerSet map[domain.Provider]struct{}

func newProviderSet(providers []domain.Provider) providerSet {
	set := make(providerSet, len(providers))
	for _, p := range providers {
		set[p] = struct{}{}
	}
	return set
}

// expects admits external calls to exactly the declared providers. A call
// to any provider outside the set is rejected, never default-accepted.
func (s providerSet) expects(md domain.RequestMetadata) bool {
	if !md.ExternalAPI {
		return false
	}
	_, ok := s[md.Provider]
	return ok
}

func contentFor(overrides map[domain.Provider]string, p domain.Provider) string {
	if text, ok := overrides[p]; ok {
		return text
	}
	return DefaultContent
}

func synthFor(p domain.Provider) (synth.Synthesizer, error) {
	s, ok := synth.For(p)
	if !ok {
		return nil, fmt.Errorf("no synthesizer registered for provider %q", p)
	}
	return s, nil
}

// SuccessForProviders admits external calls to the listed providers and
// synthesizes each provider's canonical success envelope, with optional
// per-provider content substitution.
func SuccessForProviders(providers []domain.Provider, overrides map[domain.Provider]string) Scenario {
	set := newProviderSet(providers)
	return &Policy{
		ScenarioName: "success-for-providers",
		Expect: func(rc *domain.RequestContext, md domain.RequestMetadata) bool {
			return set.expects(md)
		},
		Respond: func(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
			s, err := synthFor(md.Provider)
			if err != nil {
				return nil, err
			}
			return s.Success(rc, md, contentFor(overrides, md.Provider)), nil
		},
	}
}

// ErrorForProviders admits external calls to the listed providers and
// always synthesizes the given error class in each provider's real error
// envelope.
func ErrorForProviders(class domain.ErrorClass, providers []domain.Provider) Scenario {
	set := newProviderSet(providers)
	return &Policy{
		ScenarioName: fmt.Sprintf("error-for-providers(%s)", class),
		Expect: func(rc *domain.RequestContext, md domain.RequestMetadata) bool {
			return set.expects(md)
		},
		Respond: func(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
			s, err := synthFor(md.Provider)
			if err != nil {
				return nil, err
			}
			return s.Error(rc, md, class), nil
		},
	}
}

// SlowResponse behaves like SuccessForProviders but attaches a fixed delay
// to every response, simulating latency deterministically.
func SlowResponse(delay time.Duration, providers []domain.Provider, overrides map[domain.Provider]string) Scenario {
	set := newProviderSet(providers)
	return &Policy{
		ScenarioName: fmt.Sprintf("slow-response(%s)", delay),
		Expect: func(rc *domain.RequestContext, md domain.RequestMetadata) bool {
			return set.expects(md)
		},
		Respond: func(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
			s, err := synthFor(md.Provider)
			if err != nil {
				return nil, err
			}
			resp := s.Success(rc, md, contentFor(overrides, md.Provider))
			resp.Delay = delay
			return resp, nil
		},
	}
}

// BehaviorKind selects the response style of one provider in a Mixed
// scenario.
type BehaviorKind string

const (
	BehaviorSuccess BehaviorKind = "success"
	BehaviorError   BehaviorKind = "error"
	BehaviorSlow    BehaviorKind = "slow"
)

// Behavior configures one provider's behavior in a Mixed scenario.
type Behavior struct {
	Kind BehaviorKind

	// Content overrides the assistant text for success and slow behaviors.
	Content string

	// ErrorClass selects the error for BehaviorError; defaults to
	// server_error.
	ErrorClass domain.ErrorClass

	// Delay is the fixed wait for BehaviorSlow.
	Delay time.Duration
}

// Mixed dispatches per-provider behavior from a single configuration map.
// A call is admitted only if its provider has a configured behavior.
func Mixed(behaviors map[domain.Provider]Behavior) Scenario {
	return &Policy{
		ScenarioName: "mixed",
		Expect: func(rc *domain.RequestContext, md domain.RequestMetadata) bool {
			if !md.ExternalAPI {
				return false
			}
			_, ok := behaviors[md.Provider]
			return ok
		},
		Respond: func(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
			behavior := behaviors[md.Provider]
			s, err := synthFor(md.Provider)
			if err != nil {
				return nil, err
			}

			content := behavior.Content
			if content == "" {
				content = DefaultContent
			}

			switch behavior.Kind {
			case BehaviorError:
				class := behavior.ErrorClass
				if class == "" {
					class = domain.ErrorClassServer
				}
				return s.Error(rc, md, class), nil
			case BehaviorSlow:
				resp := s.Success(rc, md, content)
				resp.Delay = behavior.Delay
				return resp, nil
			default:
				return s.Success(rc, md, content), nil
			}
		},
	}
}

// RejectAllExternal admits only internal calls; every external call fails
// admission. Used to assert that a code path must not contact any external
// provider.
func RejectAllExternal() Scenario {
	return &Policy{
		ScenarioName: "reject-all-external",
		Expect: func(rc *domain.RequestContext, md domain.RequestMetadata) bool {
			return false
		},
		Respond: func(rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
			return nil, fmt.Errorf("reject-all-external generates no responses")
		},
	}
}
