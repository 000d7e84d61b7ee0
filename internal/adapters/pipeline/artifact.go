package pipeline

// Format identifies the artifact layout understood by this package.
const Format = "attrition-pipeline/v1"

// Feature types.
const (
	featureNumeric     = "numeric"
	featureCategorical = "categorical"
)

// Estimator types.
const (
	EstimatorLogistic     = "logistic_regression"
	EstimatorLinearSVM    = "linear_svm"
	EstimatorDecisionTree = "decision_tree"
	EstimatorRandomForest = "random_forest"
)

// Unknown-category policies.
const (
	handleUnknownError  = "error"
	handleUnknownIgnore = "ignore"
)

// artifact is the on-disk JSON layout.
type artifact struct {
	Format        string        `json:"format"`
	Name          string        `json:"name"`
	HandleUnknown string        `json:"handle_unknown"`
	Features      []featureSpec `json:"features"`
	Estimator     estimatorSpec `json:"estimator"`
}

type featureSpec struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Mean       float64  `json:"mean"`
	Scale      float64  `json:"scale"`
	Categories []string `json:"categories"`
	DropFirst  bool     `json:"drop_first"`
}

type estimatorSpec struct {
	Type      string     `json:"type"`
	Coef      []float64  `json:"coef"`
	Intercept float64    `json:"intercept"`
	Threshold float64    `json:"threshold"`
	Tree      *treeSpec  `json:"tree"`
	Trees     []treeSpec `json:"trees"`
}

type treeSpec struct {
	Nodes []nodeSpec `json:"nodes"`
}

type nodeSpec struct {
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold"`
	Left      int        `json:"left"`
	Right     int        `json:"right"`
	Value     [2]float64 `json:"value"`
}
