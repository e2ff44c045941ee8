package transform

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes transformation errors.
type ErrorKind string

const (
	// InvalidShape indicates "types" or "accounts" is not an array of
	// named objects, so the merge cannot be performed safely.
	InvalidShape ErrorKind = "INVALID_SHAPE"
)

// ShapeError reports a document that does not have the IDL shape the merge
// pass relies on.
type ShapeError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Path locates the offending value, e.g. "accounts[2].name".
	Path string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
}

// IsShapeError returns true if err is or wraps a *ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

func newShapeError(path, format string, args ...any) *ShapeError {
	return &ShapeError{
		Kind:    InvalidShape,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}
