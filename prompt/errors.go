package prompt

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTemplate is returned when the template text
	// is empty or consists only of whitespace.
	ErrInvalidTemplate = errors.New(
		"template text must not be blank",
	)

	// ErrMissingVariable is returned by Render when a
	// variable referenced by the template has no binding.
	ErrMissingVariable = errors.New("value is missing")

	// ErrNullVariableValue is returned by Render when the
	// value bound to a referenced variable is nil.
	ErrNullVariableValue = errors.New("value is null")
)

// VariableError reports a render failure tied to a single
// variable. Err is ErrMissingVariable or
// ErrNullVariableValue.
type VariableError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *VariableError) Error() string {
	return fmt.Sprintf("variable %q: %v", e.Name, e.Err)
}

// Unwrap returns the sentinel error.
func (e *VariableError) Unwrap() error {
	return e.Err
}
