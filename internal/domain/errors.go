package domain

import "fmt"

// UnexpectedRequestError is returned when the active scenario's admission
// predicate rejects a call. It is fatal to the calling code path on purpose:
// a test must fail loudly rather than silently mock something unintended.
// The message carries enough context to diagnose the failure without a
// debugger.
type UnexpectedRequestError struct {
	// Method and URL identify the rejected call.
	Method string
	URL    string

	// Provider and Model are the analyzer's classification of the call.
	Provider Provider
	Model    string

	// Scenario is the name of the policy that rejected the call.
	Scenario string
}

// Error implements the error interface.
func (e *UnexpectedRequestError) Error() string {
	model := e.Model
	if model == "" {
		model = "unknown"
	}
	return fmt.Sprintf("unexpected request: %s %s (provider=%s model=%s) rejected by scenario %q",
		e.Method, e.URL, e.Provider, model, e.Scenario)
}
