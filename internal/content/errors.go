package content

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document or version does not exist or is
// not owned by the caller. Ownership failures are deliberately
// indistinguishable from absence so existence never leaks across owners.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input. It is surfaced directly to the
// caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
