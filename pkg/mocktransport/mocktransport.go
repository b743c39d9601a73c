// Package mocktransport provides the public API for embedding the mock
// transport in test suites. This is the stable API for external consumers.
package mocktransport

import (
	"github.com/polyglot-ai/mocktransport/internal/analyze"
	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/manager"
	"github.com/polyglot-ai/mocktransport/internal/scenario"
)

// Manager is the interception orchestrator.
// See internal/manager.Manager for full documentation.
type Manager = manager.Manager

// Option is a functional option for configuring a Manager.
type Option = manager.Option

// LogSink receives traffic log entries for persistence.
type LogSink = manager.LogSink

// New creates a new Manager with the given initial scenario.
// Example:
//
//	m := mocktransport.New(
//	    mocktransport.SuccessForProviders([]mocktransport.Provider{mocktransport.ProviderOpenAI}, nil),
//	    mocktransport.WithLogger(logger),
//	)
//	m.Start()
//	defer m.Stop()
var New = manager.New

// Manager options
var (
	WithAnalyzer      = manager.WithAnalyzer
	WithLogger        = manager.WithLogger
	WithSink          = manager.WithSink
	WithBaseTransport = manager.WithBaseTransport
)

// Scenario is the two-phase mock policy contract.
type Scenario = scenario.Scenario

// Policy adapts inline functions to the Scenario interface.
type Policy = scenario.Policy

// Behavior configures one provider in a Mixed scenario.
type (
	Behavior     = scenario.Behavior
	BehaviorKind = scenario.BehaviorKind
)

// Scenario factories
var (
	SuccessForProviders = scenario.SuccessForProviders
	ErrorForProviders   = scenario.ErrorForProviders
	SlowResponse        = scenario.SlowResponse
	Mixed               = scenario.Mixed
	RejectAllExternal   = scenario.RejectAllExternal
)

// Mixed behavior kinds
const (
	BehaviorSuccess = scenario.BehaviorSuccess
	BehaviorError   = scenario.BehaviorError
	BehaviorSlow    = scenario.BehaviorSlow
)

// Core domain types
type (
	Provider               = domain.Provider
	RequestContext         = domain.RequestContext
	RequestMetadata        = domain.RequestMetadata
	MockResponse           = domain.MockResponse
	ErrorClass             = domain.ErrorClass
	LogEntry               = domain.LogEntry
	UnexpectedRequestError = domain.UnexpectedRequestError
)

// Provider tags
const (
	ProviderOpenAI     = domain.ProviderOpenAI
	ProviderGoogle     = domain.ProviderGoogle
	ProviderOpenRouter = domain.ProviderOpenRouter
	ProviderUnknown    = domain.ProviderUnknown
)

// Error classes
const (
	ErrorClassRateLimit      = domain.ErrorClassRateLimit
	ErrorClassInvalidRequest = domain.ErrorClassInvalidRequest
	ErrorClassServer         = domain.ErrorClassServer
)

// Analyzer construction, for extending provider hostnames or the internal
// allow-list at manager construction time.
type Analyzer = analyze.Analyzer

var (
	NewAnalyzer          = analyze.New
	WithInternalHosts    = analyze.WithInternalHosts
	WithInternalSuffixes = analyze.WithInternalSuffixes
	WithProviderHost     = analyze.WithProviderHost
)
