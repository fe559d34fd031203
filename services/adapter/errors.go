package adapter

import "fmt"

// ConfigurationError means a source's connection configuration cannot be
// satisfied by any adapter variant. Fatal at registry-resolution time, never
// retried.
type ConfigurationError struct {
	SourceID string
	Endpoint string
	Expected string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("source %s misconfigured (endpoint %q, expected %s adapter): %s",
		e.SourceID, e.Endpoint, e.Expected, e.Reason)
}

// AdapterUnavailableError is a network/timeout/connection failure reaching one
// supplier. It isolates to that source's contribution to a fan-out.
type AdapterUnavailableError struct {
	SourceID string
	Err      error
}

func (e *AdapterUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.SourceID, e.Err)
}

func (e *AdapterUnavailableError) Unwrap() error {
	return e.Err
}

// AdapterStatusError carries a remote HTTP/RPC status the supplier returned.
type AdapterStatusError struct {
	SourceID   string
	StatusCode int
	Status     string
	Body       string
}

func (e *AdapterStatusError) Error() string {
	return fmt.Sprintf("source %s returned %s", e.SourceID, e.Status)
}

// MockAdapterForbiddenError means configuration resolved to the mock adapter
// outside a permitted environment. Mock data is fabricated; serving it from a
// production deployment is a configuration fault, not a downgrade.
type MockAdapterForbiddenError struct {
	SourceID string
}

func (e *MockAdapterForbiddenError) Error() string {
	return fmt.Sprintf("source %s resolves to the mock adapter, which is not permitted in this environment", e.SourceID)
}
