package geo

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty           = errors.New("geometry is empty")
	ErrMalformed       = errors.New("geometry is malformed")
	ErrUnsupportedType = errors.New("geometry type is not supported")
)

// GeometryError is returned by ParseGeometry. Kind is one of the Err* sentinels
// above, so callers can use errors.Is(err, ErrMalformed) etc.
type GeometryError struct {
	Kind   error
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *GeometryError) Unwrap() error {
	return e.Kind
}

// KindName is a short label for logs and metrics.
func (e *GeometryError) KindName() string {
	switch e.Kind {
	case ErrEmpty:
		return "empty"
	case ErrMalformed:
		return "malformed"
	case ErrUnsupportedType:
		return "unsupported_type"
	default:
		return "unknown"
	}
}

func newGeometryError(kind error, format string, args ...any) *GeometryError {
	return &GeometryError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}
