package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType      = errors.New("unknown type")
	ErrTemplateArity    = errors.New("wrong number of template arguments")
	ErrReservedFieldID  = errors.New("field id 0 is reserved")
	ErrDuplicateFieldID = errors.New("duplicate field id")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrEmptyEnum        = errors.New("enum has no members")
	ErrInvalidDefault   = errors.New("invalid default value")
	ErrUnhashableKey    = errors.New("type cannot be used as a map key or set element")
)

// SchemaError reports a schema that cannot be compiled. Expr locates the
// problem, e.g. "ForTest.bar" or "map<binary, i32>".
type SchemaError struct {
	Expr string
	Err  error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v", e.Expr, e.Err)
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaErr(expr string, err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
	}
	return &SchemaError{Expr: expr, Err: err}
}
