package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the model server could not be reached.
	ErrUnavailable = errors.New("llm server unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrEmptyResponse indicates the server answered without any completion text.
	ErrEmptyResponse = errors.New("llm returned an empty completion")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrUnknownEngine is returned by NewClient for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown llm engine")
)

// StatusError carries a non-2xx HTTP status from the model server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("llm server returned status %d: %s", e.StatusCode, e.Body)
}
