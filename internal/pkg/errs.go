package pkg

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the service layer. Handlers match these with
// errors.Is and map them to HTTP statuses; anything wrapped as ErrUnexpected
// keeps its storage detail in the chain for logs but renders generically.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotMember     = errors.New("not a member")
	ErrAccessDenied  = errors.New("access denied")
	ErrNotFound      = errors.New("not found")
	ErrUnexpected    = errors.New("something unexpected happened")
)

// Invalid builds an ErrInvalidInput carrying a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// Unexpected wraps a storage-layer failure into the generic kind.
func Unexpected(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnexpected, err)
}
