// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ModelPath is the classifier artifact loaded once at start-up.
	ModelPath string `koanf:"model_path"`

	// DecisionThreshold overrides the artifact's p(leave) cut-off for
	// logistic models when set to a value in (0, 1). Zero keeps the artifact's.
	DecisionThreshold float64 `koanf:"decision_threshold"`

	// RequestTimeoutMS bounds a single prediction request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ModelPath:         "models/attrition_pipeline.json",
		DecisionThreshold: 0,
		RequestTimeoutMS:  5000,
	}
}
