package probe

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/attrition/internal/domain/employee"
)

// Generator produces random employees inside the schema's declared domains.
// It is not safe for concurrent use.
type Generator struct {
	schema employee.Schema
	rng    *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(schema employee.Schema, seed uint64) *Generator {
	return &Generator{
		schema: schema,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Boundary returns the record with every integer at its minimum and every
// category at its first choice.
func (g *Generator) Boundary() map[string]any {
	out := make(map[string]any, len(g.schema))
	for _, f := range g.schema {
		switch f.Kind {
		case employee.KindInteger:
			out[f.Key] = f.Min
		case employee.KindCategory:
			out[f.Key] = f.Choices[0]
		}
	}
	return out
}

// Random returns one record drawn uniformly from each field's domain.
func (g *Generator) Random() map[string]any {
	out := make(map[string]any, len(g.schema))
	for _, f := range g.schema {
		switch f.Kind {
		case employee.KindInteger:
			step := max(f.Step, 1)
			out[f.Key] = f.Min + g.rng.IntN((f.Max-f.Min)/step+1)*step
		case employee.KindCategory:
			out[f.Key] = f.Choices[g.rng.IntN(len(f.Choices))]
		}
	}
	return out
}

// Samples returns n samples, the first being the boundary record.
func (g *Generator) Samples(n int) []Sample {
	if n <= 0 {
		return nil
	}
	out := make([]Sample, n)
	out[0] = Sample{ID: uuid.NewString(), Input: g.Boundary()}
	for i := 1; i < n; i++ {
		out[i] = Sample{ID: uuid.NewString(), Input: g.Random()}
	}
	return out
}
