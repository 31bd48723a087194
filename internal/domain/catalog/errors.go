package catalog

import (
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors returned by catalog operations.
var (
	// ErrNotFound is returned when the referenced listing does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrForbidden is returned when the requester is not the listing owner.
	ErrForbidden = errors.New("not the product owner")
)

// ValidationError reports one or more field-level invariant violations. The
// record that triggered it is never written.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid product: " + strings.Join(e.Fields, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
