package remote

import (
	"fmt"
	"net/http"

	"github.com/meigma/artisign/core"
)

// StatusError is returned when the signing service answers with a
// non-success HTTP status.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements error.
func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("signing service returned %s", status)
}

// Is maps the status to artisign sentinel errors. Every StatusError is
// ErrSigningFailed; 401 and 403 are also ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	switch target {
	case core.ErrSigningFailed:
		return true
	case core.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	default:
		return false
	}
}
