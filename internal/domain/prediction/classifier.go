// Package prediction maps a classifier's output for one employee record into
// the stay/leave decision shown to users.
package prediction

import (
	"context"

	"github.com/okian/attrition/internal/domain/employee"
)

// Predicts is the base classifier capability. Predict returns the class
// label for a single-row input: 1 means the employee leaves, 0 means stays.
type Predicts interface {
	Predict(ctx context.Context, r *employee.Record) (int, error)
}

// PredictsWithProbability is the extended capability of classifiers that
// also expose class probabilities as [p(class 0), p(class 1)].
type PredictsWithProbability interface {
	Predicts
	PredictProba(ctx context.Context, r *employee.Record) ([2]float64, error)
}
