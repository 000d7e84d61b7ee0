package employee

import "errors"

// Sentinel error kinds for this package. All shape errors wrap ErrSchemaMismatch.
var (
	ErrSchemaMismatch = errors.New("record does not match schema")
	ErrMissingField   = errors.New("missing field")
	ErrUnknownField   = errors.New("unknown field")
	ErrFieldOrder     = errors.New("field out of order")
	ErrFieldType      = errors.New("field has wrong type")
)
