package prediction

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/attrition/internal/domain/employee"
)

// probabilitySumTolerance bounds |p0 + p1 - 1|.
const probabilitySumTolerance = 1e-6

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithSchema overrides the record schema checked before each call.
func WithSchema(s employee.Schema) Option {
	return func(a *Adapter) {
		if len(s) > 0 {
			a.schema = s
		}
	}
}

// Adapter forwards records to a classifier and maps its output to a Result.
// It holds no mutable state, so one Adapter may serve concurrent callers as
// long as the classifier does.
type Adapter struct {
	classifier Predicts
	// proba is set once at construction when the classifier supports it.
	proba  PredictsWithProbability
	schema employee.Schema
}

// NewAdapter creates an adapter around c.
func NewAdapter(c Predicts, opts ...Option) (*Adapter, error) {
	if c == nil {
		return nil, ErrNilClassifier
	}
	a := &Adapter{
		classifier: c,
		schema:     employee.Fields,
	}
	if p, ok := c.(PredictsWithProbability); ok {
		a.proba = p
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ProbabilityCapable reports whether results will carry probabilities.
func (a *Adapter) ProbabilityCapable() bool { return a.proba != nil }

// Predict runs the classifier on r. A record that does not match the schema
// fails without calling the classifier.
func (a *Adapter) Predict(ctx context.Context, r *employee.Record) (Result, error) {
	if err := a.schema.CheckShape(r); err != nil {
		return Result{}, err
	}

	class, err := a.classifier.Predict(ctx, r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	label, err := LabelFor(class)
	if err != nil {
		return Result{}, err
	}

	res := Result{Label: label}
	if a.proba == nil {
		return res, nil
	}

	probs, err := a.proba.PredictProba(ctx, r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	if err := checkProbabilities(probs); err != nil {
		return Result{}, err
	}
	stay, leave := probs[0], probs[1]
	res.ProbabilityStay = &stay
	res.ProbabilityLeave = &leave
	return res, nil
}

func checkProbabilities(p [2]float64) error {
	for i, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: p%d=%v", ErrProbability, i, v)
		}
	}
	if math.Abs(p[0]+p[1]-1) > probabilitySumTolerance {
		return fmt.Errorf("%w: sum %v", ErrProbability, p[0]+p[1])
	}
	return nil
}
