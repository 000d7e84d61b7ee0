package pipeline

import (
	"fmt"

	"github.com/okian/attrition/internal/domain/employee"
)

// encoder turns a record into the estimator's input vector: numeric columns
// are standardized, categorical columns are one-hot encoded.
type encoder struct {
	features      []featureSpec
	ignoreUnknown bool
	width         int
}

func newEncoder(features []featureSpec, handleUnknown string) *encoder {
	e := &encoder{
		features:      features,
		ignoreUnknown: handleUnknown == handleUnknownIgnore,
	}
	for _, f := range features {
		e.width += f.width()
	}
	return e
}

// width is the number of encoded columns the feature produces.
func (f featureSpec) width() int {
	if f.Type == featureNumeric {
		return 1
	}
	if f.DropFirst {
		return len(f.Categories) - 1
	}
	return len(f.Categories)
}

// columns returns the expected record column names in order.
func (e *encoder) columns() []string {
	out := make([]string, len(e.features))
	for i, f := range e.features {
		out[i] = f.Name
	}
	return out
}

// encode validates the record's columns against the pipeline's features and
// returns the encoded row.
func (e *encoder) encode(r *employee.Record) ([]float64, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", employee.ErrSchemaMismatch)
	}
	names := r.Names()
	if len(names) != len(e.features) {
		return nil, fmt.Errorf("%w: got %d columns, pipeline expects %d", employee.ErrSchemaMismatch, len(names), len(e.features))
	}

	x := make([]float64, 0, e.width)
	for i, f := range e.features {
		if names[i] != f.Name {
			return nil, fmt.Errorf("%w: column %d is %q, pipeline expects %q", employee.ErrSchemaMismatch, i, names[i], f.Name)
		}
		v, _ := r.Get(f.Name)

		switch f.Type {
		case featureNumeric:
			n, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", employee.ErrSchemaMismatch, f.Name, err)
			}
			scale := f.Scale
			if scale == 0 {
				scale = 1
			}
			x = append(x, (n-f.Mean)/scale)

		case featureCategorical:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q is %T, want string", employee.ErrSchemaMismatch, f.Name, v)
			}
			hot := -1
			for j, c := range f.Categories {
				if c == s {
					hot = j
					break
				}
			}
			if hot < 0 && !e.ignoreUnknown {
				return nil, fmt.Errorf("%w: %w: %q for %q", employee.ErrSchemaMismatch, ErrUnknownCategory, s, f.Name)
			}
			start := 0
			if f.DropFirst {
				start = 1
			}
			for j := start; j < len(f.Categories); j++ {
				if j == hot {
					x = append(x, 1)
				} else {
					x = append(x, 0)
				}
			}
		}
	}
	return x, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("value %v of type %T is not numeric", v, v)
	}
}
