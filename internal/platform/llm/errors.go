package llm

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider is returned when a report is requested from a model
// tag that no registered provider serves. No network call is made.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ProviderError wraps a transport, auth, or quota failure from an upstream
// model. These are the only errors a caller may reasonably retry.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SchemaError reports model output that does not conform to the handoff
// report schema. It is never retried by the gateway and never coerced into a
// partial report; the caller must surface it distinctly from an outage.
type SchemaError struct {
	Provider string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("provider %s returned non-conforming output: %s", e.Provider, e.Reason)
}
