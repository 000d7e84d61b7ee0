package probe

import "errors"

// Sentinel error kinds for probe runs.
var (
	ErrHealthCheck  = errors.New("service health check failed")
	ErrSchemaDrift  = errors.New("server schema differs from local schema")
	ErrUnexpected   = errors.New("unexpected response")
	ErrVerification = errors.New("verification failed")
	ErrIdempotence  = errors.New("repeated prediction differs")
)
