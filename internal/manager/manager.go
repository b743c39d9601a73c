// Package manager implements the stateful interception orchestrator. A
// Manager substitutes the process-wide HTTP transport (or is injected
// directly as an http.RoundTripper), classifies every outbound call,
// appends it to an in-memory traffic log, and runs the two-phase scenario
// protocol: admission first, generation second. Internal calls always reach
// the real transport untouched.
package manager

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/polyglot-ai/mocktransport/internal/analyze"
	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/extract"
	"github.com/polyglot-ai/mocktransport/internal/scenario"
)

// LogSink receives every traffic log entry as it is appended. Sink failures
// are logged and never fail the intercepted call.
type LogSink interface {
	Record(ctx context.Context, entry domain.LogEntry) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithAnalyzer replaces the default analyzer, e.g. to extend the internal
// host allow-list.
func WithAnalyzer(a *analyze.Analyzer) Option {
	return func(m *Manager) { m.analyzer = a }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithSink attaches a persistent sink for the traffic log.
func WithSink(sink LogSink) Option {
	return func(m *Manager) { m.sink = sink }
}

// WithBaseTransport sets the transport used for internal pass-through when
// the manager is injected instead of installed. Defaults to
// http.DefaultTransport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(m *Manager) { m.base = rt }
}

// Manager orchestrates interception. Exactly one scenario is current at any
// instant; the scenario slot is a stack so nested test contexts can push
// and pop policies instead of flat-replacing them.
//
// A Manager is either installed process-wide via Start/Stop (the ambient
// http.DefaultTransport slot, where only one manager may be active) or
// injected explicitly through Client()/RoundTrip, which avoids the shared
// slot and its start/stop ordering hazard entirely.
type Manager struct {
	analyzer *analyze.Analyzer
	logger   *slog.Logger
	tracer   trace.Tracer
	sink     LogSink
	base     http.RoundTripper

	mu        sync.Mutex
	scenarios []scenario.Scenario
	log       []domain.LogEntry
	active    bool
	original  http.RoundTripper
}

// New creates an inactive Manager with the given initial scenario.
func New(initial scenario.Scenario, opts ...Option) *Manager {
	m := &Manager{
		analyzer:  analyze.New(),
		logger:    slog.Default(),
		tracer:    otel.Tracer("mocktransport"),
		scenarios: []scenario.Scenario{initial},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start installs the manager as the process-wide transport. If the manager
// is already active it stops first, so the transport is never installed
// twice. All subsequent calls through the ambient transport are intercepted
// until Stop.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		m.stopLocked()
	}
	m.original = http.DefaultTransport
	http.DefaultTransport = m
	m.active = true
	m.logger.Debug("mock transport installed", slog.String("scenario", m.currentLocked().Name()))
}

// Stop restores the original transport. Idempotent: stopping an inactive
// manager is a no-op. Call sites must arrange teardown so Stop runs on
// every exit path, or interception leaks into unrelated tests.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if !m.active {
		return
	}
	http.DefaultTransport = m.original
	m.original = nil
	m.active = false
	m.logger.Debug("mock transport removed")
}

// Active reports whether the manager currently owns the ambient transport.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Client returns an http.Client that routes through the manager without
// touching the ambient transport slot.
func (m *Manager) Client() *http.Client {
	return &http.Client{Transport: m}
}

// Scenario returns the current policy.
func (m *Manager) Scenario() scenario.Scenario {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

func (m *Manager) currentLocked() scenario.Scenario {
	return m.scenarios[len(m.scenarios)-1]
}

// SetScenario atomically replaces the current policy. It takes effect for
// calls dispatched after it returns and has no retroactive effect on calls
// already in flight. The transition is recorded in the traffic log.
func (m *Manager) SetScenario(next scenario.Scenario) {
	m.mu.Lock()
	from := m.currentLocked().Name()
	m.scenarios[len(m.scenarios)-1] = next
	entry := domain.NewScenarioChangeEntry(domain.ScenarioOpSet, from, next.Name())
	m.log = append(m.log, entry)
	m.mu.Unlock()

	m.record(context.Background(), entry)
}

// PushScenario makes next the current policy while keeping the previous one
// underneath for PopScenario, for nested test contexts.
func (m *Manager) PushScenario(next scenario.Scenario) {
	m.mu.Lock()
	from := m.currentLocked().Name()
	m.scenarios = append(m.scenarios, next)
	entry := domain.NewScenarioChangeEntry(domain.ScenarioOpPush, from, next.Name())
	m.log = append(m.log, entry)
	m.mu.Unlock()

	m.record(context.Background(), entry)
}

// PopScenario restores the policy that was current before the last push.
// Popping the last remaining scenario is refused: exactly one policy must
// stay current.
func (m *Manager) PopScenario() error {
	m.mu.Lock()
	if len(m.scenarios) == 1 {
		m.mu.Unlock()
		return ErrScenarioStackBottom
	}
	from := m.currentLocked().Name()
	m.scenarios = m.scenarios[:len(m.scenarios)-1]
	entry := domain.NewScenarioChangeEntry(domain.ScenarioOpPop, from, m.currentLocked().Name())
	m.log = append(m.log, entry)
	m.mu.Unlock()

	m.record(context.Background(), entry)
	return nil
}

// RequestLog returns a snapshot of the traffic log in call order. Entries
// are deep copies: neither the slice nor the request payloads behind it
// alias internal storage.
func (m *Manager) RequestLog() []domain.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LogEntry, len(m.log))
	for i, entry := range m.log {
		out[i] = entry.Clone()
	}
	return out
}

// ClearRequestLog truncates the traffic log. The log is unbounded until
// cleared, so long test runs should clear it periodically. Active/inactive
// state and the current scenario are unaffected.
func (m *Manager) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = nil
}

// RoundTrip implements http.RoundTripper: extract, analyze, log, then
// either pass internal calls through to the real transport or run the
// two-phase scenario protocol.
func (m *Manager) RoundTrip(req *http.Request) (*http.Response, error) {
	rc, err := extract.FromRequest(req)
	if err != nil {
		return nil, err
	}
	md := m.analyzer.Analyze(rc)

	if md.InternalRequest {
		m.append(req.Context(), domain.NewRequestEntry(rc, md))
		// Internal calls bypass the scenario entirely; transport errors
		// propagate unmodified.
		return m.passthrough(req)
	}

	resp, err := m.Dispatch(req.Context(), rc, md)
	if err != nil {
		return nil, err
	}
	return buildResponse(req, resp)
}

// Dispatch logs the call and runs the two-phase protocol: admission by the
// current scenario, then generation, then the configured fixed delay. The
// delay is a deterministic wait, not a cancellable timer.
func (m *Manager) Dispatch(ctx context.Context, rc *domain.RequestContext, md domain.RequestMetadata) (*domain.MockResponse, error) {
	current := m.Scenario()

	ctx, span := m.tracer.Start(ctx, "mocktransport.dispatch", trace.WithAttributes(
		attribute.String("mock.provider", string(md.Provider)),
		attribute.String("mock.model", md.Model),
		attribute.String("mock.endpoint", md.Endpoint),
		attribute.String("mock.scenario", current.Name()),
	))
	defer span.End()

	m.append(ctx, domain.NewRequestEntry(rc, md))

	if !current.RequestExpected(rc, md) {
		err := &domain.UnexpectedRequestError{
			Method:   rc.Method,
			URL:      rc.URL,
			Provider: md.Provider,
			Model:    md.Model,
			Scenario: current.Name(),
		}
		span.SetStatus(codes.Error, "unexpected request")
		span.RecordError(err)
		m.logger.Error("unexpected request rejected",
			slog.String("method", rc.Method),
			slog.String("url", rc.URL),
			slog.String("provider", string(md.Provider)),
			slog.String("scenario", current.Name()),
		)
		return nil, err
	}

	resp, err := current.GenerateResponse(rc, md)
	if err != nil {
		span.SetStatus(codes.Error, "generation failed")
		span.RecordError(err)
		return nil, err
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	m.logger.Debug("mock response generated",
		slog.String("provider", string(md.Provider)),
		slog.String("endpoint", md.Endpoint),
		slog.Int("status", statusOf(resp)),
		slog.Duration("delay", resp.Delay),
	)
	return resp, nil
}

// passthrough forwards an internal call to the real transport: the captured
// original while active, the configured base otherwise.
func (m *Manager) passthrough(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	rt := m.original
	if !m.active {
		rt = m.base
	}
	m.mu.Unlock()

	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}

// append records a log entry unconditionally, even for calls that will be
// rejected or passed through, so the log is a complete trace of observed
// traffic.
func (m *Manager) append(ctx context.Context, entry domain.LogEntry) {
	m.mu.Lock()
	m.log = append(m.log, entry)
	m.mu.Unlock()

	m.record(ctx, entry)
}

// record forwards an entry to the sink, if any.
func (m *Manager) record(ctx context.Context, entry domain.LogEntry) {
	if m.sink == nil {
		return
	}
	if err := m.sink.Record(ctx, entry); err != nil {
		m.logger.Warn("log sink record failed", slog.String("error", err.Error()))
	}
}

func statusOf(resp *domain.MockResponse) int {
	if resp.StatusCode == 0 {
		return http.StatusOK
	}
	return resp.StatusCode
}
