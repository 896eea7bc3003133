package llm

import "fmt"

// TransportError means the HTTP call itself failed (dial, timeout, ...).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("openai: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError means the provider answered with a non-2xx status. Body is the
// response body captured verbatim; callers must not assume structure.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.Status, e.Body)
}
