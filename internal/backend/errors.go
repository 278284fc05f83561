package backend

import (
	"fmt"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

// StatusError is a non-2xx reply from the backend.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsRetryable reports whether the failure was on the server side (5xx).
// Nothing retries automatically; callers may surface it.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Unwrap classifies the failure: a missing or unreadable project is
// ErrNotFound, everything else ErrTransport.
func (e *StatusError) Unwrap() error {
	if e.Op == opGetProject {
		return project.ErrNotFound
	}
	return project.ErrTransport
}
