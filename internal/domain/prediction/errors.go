package prediction

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNilClassifier   = errors.New("classifier is nil")
	ErrPredict         = errors.New("prediction failed")
	ErrUnexpectedLabel = errors.New("classifier returned unexpected label")
	ErrProbability     = errors.New("classifier returned invalid probabilities")
)
