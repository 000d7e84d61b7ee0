package pipeline

import (
	"fmt"
	"math"
)

// defaultThreshold is the p(leave) cut-off for logistic models.
const defaultThreshold = 0.5

// estimator decides a class from an encoded row.
type estimator interface {
	decide(x []float64) int
}

// probEstimator also yields [p0, p1].
type probEstimator interface {
	estimator
	proba(x []float64) [2]float64
}

func dot(w, x []float64) float64 {
	var s float64
	for i := range w {
		s += w[i] * x[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

type logistic struct {
	coef      []float64
	intercept float64
	threshold float64
}

func (m *logistic) proba(x []float64) [2]float64 {
	p1 := sigmoid(dot(m.coef, x) + m.intercept)
	return [2]float64{1 - p1, p1}
}

func (m *logistic) decide(x []float64) int {
	if m.proba(x)[1] > m.threshold {
		return 1
	}
	return 0
}

// linearSVM has no calibrated probabilities.
type linearSVM struct {
	coef      []float64
	intercept float64
}

func (m *linearSVM) decide(x []float64) int {
	if dot(m.coef, x)+m.intercept > 0 {
		return 1
	}
	return 0
}

type node struct {
	feature     int
	threshold   float64
	left, right int
	value       [2]float64
}

type tree struct {
	nodes []node
}

// leaf walks from the root; samples with x[feature] <= threshold go left.
func (t *tree) leaf(x []float64) node {
	i := 0
	for {
		n := t.nodes[i]
		if n.left < 0 {
			return n
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func (t *tree) proba(x []float64) [2]float64 {
	v := t.leaf(x).value
	total := v[0] + v[1]
	return [2]float64{v[0] / total, v[1] / total}
}

func (t *tree) decide(x []float64) int {
	return argmax(t.proba(x))
}

type forest struct {
	trees []*tree
}

func (f *forest) proba(x []float64) [2]float64 {
	var p [2]float64
	for _, t := range f.trees {
		tp := t.proba(x)
		p[0] += tp[0]
		p[1] += tp[1]
	}
	n := float64(len(f.trees))
	return [2]float64{p[0] / n, p[1] / n}
}

func (f *forest) decide(x []float64) int {
	return argmax(f.proba(x))
}

// argmax breaks ties towards class 0.
func argmax(p [2]float64) int {
	if p[1] > p[0] {
		return 1
	}
	return 0
}

// buildEstimator checks the spec against the encoded width and builds it.
func buildEstimator(spec estimatorSpec, width int, threshold float64) (estimator, error) {
	switch spec.Type {
	case EstimatorLogistic:
		if len(spec.Coef) != width {
			return nil, fmt.Errorf("%w: %d coefficients for %d encoded columns", ErrInvalidArtifact, len(spec.Coef), width)
		}
		t := spec.Threshold
		if threshold > 0 {
			t = threshold
		}
		if t <= 0 || t >= 1 {
			t = defaultThreshold
		}
		return &logistic{coef: spec.Coef, intercept: spec.Intercept, threshold: t}, nil

	case EstimatorLinearSVM:
		if len(spec.Coef) != width {
			return nil, fmt.Errorf("%w: %d coefficients for %d encoded columns", ErrInvalidArtifact, len(spec.Coef), width)
		}
		return &linearSVM{coef: spec.Coef, intercept: spec.Intercept}, nil

	case EstimatorDecisionTree:
		if spec.Tree == nil {
			return nil, fmt.Errorf("%w: decision_tree without tree", ErrInvalidArtifact)
		}
		return buildTree(*spec.Tree, width)

	case EstimatorRandomForest:
		f := &forest{trees: make([]*tree, 0, len(spec.Trees))}
		for i, ts := range spec.Trees {
			t, err := buildTree(ts, width)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			f.trees = append(f.trees, t)
		}
		if len(f.trees) == 0 {
			return nil, fmt.Errorf("%w: random_forest without trees", ErrInvalidArtifact)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: unsupported estimator %q", ErrInvalidArtifact, spec.Type)
}

// buildTree requires children to follow their parent so that every walk
// terminates at a leaf.
func buildTree(spec treeSpec, width int) (*tree, error) {
	t := &tree{nodes: make([]node, len(spec.Nodes))}
	for i, ns := range spec.Nodes {
		n := node{feature: ns.Feature, threshold: ns.Threshold, left: ns.Left, right: ns.Right, value: ns.Value}
		if n.left < 0 {
			if n.value[0]+n.value[1] <= 0 {
				return nil, fmt.Errorf("%w: leaf %d has no samples", ErrInvalidArtifact, i)
			}
			t.nodes[i] = n
			continue
		}
		if n.feature < 0 || n.feature >= width {
			return nil, fmt.Errorf("%w: node %d splits on column %d of %d", ErrInvalidArtifact, i, n.feature, width)
		}
		if n.left <= i || n.right <= i || n.left >= len(spec.Nodes) || n.right >= len(spec.Nodes) {
			return nil, fmt.Errorf("%w: node %d has invalid children %d/%d", ErrInvalidArtifact, i, n.left, n.right)
		}
		t.nodes[i] = n
	}
	return t, nil
}
