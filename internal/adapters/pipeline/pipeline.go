// Package pipeline loads the serialized attrition classification pipeline
// (a JSON artifact) and exposes it through the prediction capabilities.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
)

// Option applies a configuration option to Load and Parse.
type Option func(*options)

type options struct {
	threshold float64
}

// WithThreshold overrides the artifact's decision threshold for logistic
// models. Values outside (0, 1) are ignored.
func WithThreshold(t float64) Option {
	return func(o *options) {
		if t > 0 && t < 1 {
			o.threshold = t
		}
	}
}

// Info describes a loaded artifact.
type Info struct {
	Name               string `json:"name"`
	Format             string `json:"format"`
	Estimator          string `json:"estimator"`
	Columns            int    `json:"columns"`
	EncodedWidth       int    `json:"encoded_width"`
	ProbabilityCapable bool   `json:"probability_capable"`
}

// Pipeline is a loaded classifier exposing only the label capability.
// It is immutable after load and safe for concurrent use.
type Pipeline struct {
	info    Info
	encoder *encoder
	est     estimator
}

// ProbabilisticPipeline additionally exposes class probabilities.
type ProbabilisticPipeline struct {
	*Pipeline
	prob probEstimator
}

var (
	_ prediction.Predicts                = (*Pipeline)(nil)
	_ prediction.PredictsWithProbability = (*ProbabilisticPipeline)(nil)
)

// Load reads and parses the artifact at path. The returned value implements
// prediction.PredictsWithProbability when the estimator supports it.
func Load(path string, opts ...Option) (prediction.Predicts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadArtifact, path, err)
	}
	p, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadArtifact, path, err)
	}
	return p, nil
}

// Parse builds a classifier from raw artifact bytes.
func Parse(data []byte, opts ...Option) (prediction.Predicts, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var a artifact
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	seen := make(map[string]bool, len(a.Features))
	for _, f := range a.Features {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrInvalidArtifact, f.Name)
		}
		seen[f.Name] = true
		if f.Type == featureCategorical && f.width() == 0 {
			return nil, fmt.Errorf("%w: feature %q encodes to no columns", ErrInvalidArtifact, f.Name)
		}
	}

	enc := newEncoder(a.Features, a.HandleUnknown)
	est, err := buildEstimator(a.Estimator, enc.width, o.threshold)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		info: Info{
			Name:         a.Name,
			Format:       a.Format,
			Estimator:    a.Estimator.Type,
			Columns:      len(a.Features),
			EncodedWidth: enc.width,
		},
		encoder: enc,
		est:     est,
	}
	if pe, ok := est.(probEstimator); ok {
		p.info.ProbabilityCapable = true
		return &ProbabilisticPipeline{Pipeline: p, prob: pe}, nil
	}
	return p, nil
}

// Info describes the artifact.
func (p *Pipeline) Info() Info { return p.info }

// Columns returns the record columns the pipeline expects, in order.
func (p *Pipeline) Columns() []string { return p.encoder.columns() }

// Predict returns 1 (leave) or 0 (stay) for a single record.
func (p *Pipeline) Predict(ctx context.Context, r *employee.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := p.encoder.encode(r)
	if err != nil {
		return 0, err
	}
	return p.est.decide(x), nil
}

// PredictProba returns [p(stay), p(leave)] for a single record.
func (p *ProbabilisticPipeline) PredictProba(ctx context.Context, r *employee.Record) ([2]float64, error) {
	if err := ctx.Err(); err != nil {
		return [2]float64{}, err
	}
	x, err := p.encoder.encode(r)
	if err != nil {
		return [2]float64{}, err
	}
	return p.prob.proba(x), nil
}

// Describe returns Info for any classifier produced by this package.
func Describe(c prediction.Predicts) (Info, bool) {
	switch v := c.(type) {
	case *ProbabilisticPipeline:
		return v.Info(), true
	case *Pipeline:
		return v.Info(), true
	}
	return Info{}, false
}

// CheckColumns compares the pipeline's expected columns with a schema and
// returns a descriptive error on the first difference.
func CheckColumns(c prediction.Predicts, s employee.Schema) error {
	var cols []string
	switch v := c.(type) {
	case *ProbabilisticPipeline:
		cols = v.Columns()
	case *Pipeline:
		cols = v.Columns()
	default:
		return nil
	}
	want := s.Names()
	if len(cols) != len(want) {
		return fmt.Errorf("%w: pipeline has %d columns, schema has %d", employee.ErrSchemaMismatch, len(cols), len(want))
	}
	for i := range cols {
		if cols[i] != want[i] {
			return fmt.Errorf("%w: column %d is %q in pipeline, %q in schema", employee.ErrSchemaMismatch, i, cols[i], want[i])
		}
	}
	return nil
}
