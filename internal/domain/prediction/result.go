package prediction

import (
	"fmt"
)

// Label is the user-facing decision.
type Label string

// Decision labels.
const (
	LabelStay  Label = "Stay"
	LabelLeave Label = "Leave"
)

// Class returns the classifier class the label was mapped from.
func (l Label) Class() int {
	if l == LabelLeave {
		return 1
	}
	return 0
}

// LabelFor maps a classifier class to a label.
func LabelFor(class int) (Label, error) {
	switch class {
	case 0:
		return LabelStay, nil
	case 1:
		return LabelLeave, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnexpectedLabel, class)
	}
}

// Result is the outcome of one prediction. Probabilities are nil when the
// classifier has no probability capability.
type Result struct {
	Label            Label
	ProbabilityStay  *float64
	ProbabilityLeave *float64
}

// HasProbabilities reports whether both probabilities are available.
func (r Result) HasProbabilities() bool {
	return r.ProbabilityStay != nil && r.ProbabilityLeave != nil
}

// unavailable is shown in place of a missing probability.
const unavailable = "N/A"

// FormatProbability renders p with two decimals, or N/A when absent.
func FormatProbability(p *float64) string {
	if p == nil {
		return unavailable
	}
	return fmt.Sprintf("%.2f", *p)
}
