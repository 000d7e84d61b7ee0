package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package.
var (
	ErrLoadArtifact    = errors.New("load classifier artifact failed")
	ErrInvalidArtifact = errors.New("invalid classifier artifact")
	ErrUnknownCategory = errors.New("unknown category")
)

// ValidationError lists the JSON Schema violations of an artifact.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a document path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("artifact validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %s: %s", i+1, err.Field, err.Message))
	}
	return sb.String()
}

func (ve *ValidationError) Unwrap() error { return ErrInvalidArtifact }
