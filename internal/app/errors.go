package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNoClassifier = errors.New("no classifier configured")
	ErrNotStarted   = errors.New("service not started")
)
