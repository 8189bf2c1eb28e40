package llm

import (
	"errors"
)

// UserMessage is the only failure text shown to end users for a failed
// completion. The underlying cause goes to the logs.
const UserMessage = "Failed to generate smart contract code. Please check your API key and try again."

// ErrEmptyResponse is returned by backends when the model produced no text.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// ConfigurationError reports a missing or unusable credential. It is raised
// while constructing a client, never per request.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return "llm: configuration error: " + e.Setting + " " + e.Reason
}

// EmptyResponseError means the upstream answered without any text.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string { return UserMessage }

func (e *EmptyResponseError) Is(target error) bool { return target == ErrEmptyResponse }

// UpstreamError wraps any transport or service failure. Error() returns the
// generic user message; the cause is reachable via errors.Unwrap.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string { return UserMessage }

func (e *UpstreamError) Unwrap() error { return e.Cause }
