package wire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfData is returned by a poll-backed reader when its supplier could
// not provide the bytes requested. The input is not malformed: the caller
// may retry with a fresh reader seeded with more bytes.
var ErrOutOfData = errors.New("wire: out of data")

// ErrPendingBool is recorded by a Writer when a bool field key is followed
// by another key or the end of the struct instead of WriteBool.
var ErrPendingBool = errors.New("wire: bool field key written without a value")

// FormatError reports bytes that cannot be interpreted. The stream position
// is unknown afterwards, so a FormatError is never recoverable.
type FormatError struct {
	Type   CompactType
	Detail string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("wire: bad compact type %d: %s", uint8(e.Type), e.Detail)
	}
	return fmt.Sprintf("wire: bad compact type %d", uint8(e.Type))
}

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["outer", "inner", "bar"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at field path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// WrapField wraps an error with a field name, prepending it to any existing
// path so the outermost field comes first.
func WrapField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
