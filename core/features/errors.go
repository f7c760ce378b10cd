package features

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports an enumerated field holding an unknown token.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: unrecognized %s %q", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrInvalidInput) succeed.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, value string) error {
	return &InvalidInputError{Field: field, Value: value}
}
