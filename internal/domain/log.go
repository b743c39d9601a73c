package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogEntryKind discriminates entries in the traffic log.
type LogEntryKind string

const (
	// LogEntryRequest records one observed HTTP call.
	LogEntryRequest LogEntryKind = "request"

	// LogEntryScenarioChange records a scenario transition on the manager.
	LogEntryScenarioChange LogEntryKind = "scenario_change"
)

// ScenarioOp names the operation that caused a scenario transition.
type ScenarioOp string

const (
	ScenarioOpSet  ScenarioOp = "set"
	ScenarioOpPush ScenarioOp = "push"
	ScenarioOpPop  ScenarioOp = "pop"
)

// RequestRecord is the request payload of a LogEntry.
type RequestRecord struct {
	Context  RequestContext  `json:"context"`
	Metadata RequestMetadata `json:"metadata"`
}

// ScenarioChange is the scenario-transition payload of a LogEntry.
type ScenarioChange struct {
	Op   ScenarioOp `json:"op"`
	From string     `json:"from"`
	To   string     `json:"to"`
}

// LogEntry is one append-only record of observed traffic or of a scenario
// transition. Ordering is call order; entries are cleared only by explicit
// request.
type LogEntry struct {
	ID        string          `json:"id"`
	Kind      LogEntryKind    `json:"kind"`
	Request   *RequestRecord  `json:"request,omitempty"`
	Scenario  *ScenarioChange `json:"scenario,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Clone returns a deep copy of the entry. The request and scenario payloads
// are copied through, including the request context's header map and body,
// so snapshot readers cannot mutate the entry they were handed out of.
func (e LogEntry) Clone() LogEntry {
	out := e
	if e.Request != nil {
		out.Request = &RequestRecord{
			Context:  e.Request.Context.Clone(),
			Metadata: e.Request.Metadata,
		}
	}
	if e.Scenario != nil {
		change := *e.Scenario
		out.Scenario = &change
	}
	return out
}

// NewRequestEntry builds a request log entry stamped with the current time.
func NewRequestEntry(rc *RequestContext, md RequestMetadata) LogEntry {
	return LogEntry{
		ID:        uuid.NewString(),
		Kind:      LogEntryRequest,
		Request:   &RequestRecord{Context: *rc, Metadata: md},
		Timestamp: time.Now(),
	}
}

// NewScenarioChangeEntry builds a scenario-transition log entry.
func NewScenarioChangeEntry(op ScenarioOp, from, to string) LogEntry {
	return LogEntry{
		ID:        uuid.NewString(),
		Kind:      LogEntryScenarioChange,
		Scenario:  &ScenarioChange{Op: op, From: from, To: to},
		Timestamp: time.Now(),
	}
}
