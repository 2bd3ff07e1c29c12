package ai

import (
	"errors"
	"fmt"
)

// ValidationError marks a model response that failed schema or domain
// validation. It is never retried: the same prompt would produce the same
// malformed shape, and the article must be counted as failed rather than
// silently treated as "no incident".
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("ai: invalid response: %s", e.Reason)
	}
	return fmt.Sprintf("ai: invalid response field %q: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
