// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// Error kinds reported to metrics.
const (
	KindSchemaMismatch  = "schema_mismatch"
	KindClassifier      = "classifier"
	KindProbability     = "probability"
	KindUnexpectedLabel = "unexpected_label"
	KindCanceled        = "canceled"
	KindNotStarted      = "not_started"
)

// ModelInfo identifies the loaded classifier artifact.
type ModelInfo struct {
	Name      string
	Estimator string
}

// Service implements the API dependencies for the attrition predictor.
type Service struct {
	mu sync.RWMutex

	// Core components
	classifier prediction.Predicts
	adapter    *prediction.Adapter
	schema     employee.Schema
	model      ModelInfo

	// Counters
	predictions atomic.Int64
	failures    atomic.Int64
	leaveCount  atomic.Int64
	stayCount   atomic.Int64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClassifier injects the loaded classifier.
func WithClassifier(c prediction.Predicts) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithModelInfo records the artifact identity reported by GetStats.
func WithModelInfo(info ModelInfo) Option {
	return func(s *Service) {
		s.model = info
	}
}

// WithSchema overrides the employee schema.
func WithSchema(schema employee.Schema) Option {
	return func(s *Service) {
		if len(schema) > 0 {
			s.schema = schema
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		schema: employee.Fields,
		model:  ModelInfo{Name: "unknown", Estimator: "unknown"},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the prediction adapter around the injected classifier.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.classifier == nil {
		return ErrNoClassifier
	}

	adapter, err := prediction.NewAdapter(s.classifier, prediction.WithSchema(s.schema))
	if err != nil {
		return err
	}
	s.adapter = adapter

	s.started = true
	s.logger.Info(ctx, "attrition service started",
		logger.String("model", s.model.Name),
		logger.String("estimator", s.model.Estimator),
		logger.Bool("probabilityCapable", adapter.ProbabilityCapable()),
		logger.Int("fields", len(s.schema)),
	)
	if !adapter.ProbabilityCapable() {
		s.logger.Warn(ctx, "classifier has no probability capability; probabilities will be reported as unavailable")
	}

	return nil
}

// Stop marks the service as stopped. Later predictions fail with
// ErrNotStarted; the classifier is left untouched.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.adapter = nil
	s.logger.Info(context.Background(), "attrition service stopped",
		logger.Any("predictions", s.predictions.Load()),
	)
}

// Predict classifies one employee record.
func (s *Service) Predict(ctx context.Context, r *employee.Record) (prediction.Result, error) {
	s.mu.RLock()
	adapter := s.adapter
	s.mu.RUnlock()

	if adapter == nil {
		metrics.RecordPredictionError(KindNotStarted)
		return prediction.Result{}, ErrNotStarted
	}

	start := time.Now()
	res, err := adapter.Predict(ctx, r)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		kind := ErrorKind(err)
		s.failures.Add(1)
		metrics.RecordPredictionError(kind)
		metrics.RecordErrorLatency("predictor", kind, latencyMs)
		s.logger.Warn(ctx, "prediction failed",
			logger.String("kind", kind),
			logger.Error(err),
		)
		return prediction.Result{}, err
	}

	s.predictions.Add(1)
	if res.Label == prediction.LabelLeave {
		s.leaveCount.Add(1)
	} else {
		s.stayCount.Add(1)
	}
	metrics.RecordPrediction(string(res.Label), latencyMs, res.HasProbabilities())

	s.logger.Debug(ctx, "prediction served",
		logger.String("label", string(res.Label)),
		logger.String("probabilityStay", prediction.FormatProbability(res.ProbabilityStay)),
		logger.String("probabilityLeave", prediction.FormatProbability(res.ProbabilityLeave)),
		logger.Float64("latencyMs", latencyMs),
	)

	return res, nil
}

// Schema returns the employee schema records must follow.
func (s *Service) Schema() employee.Schema {
	return s.schema
}

// ProbabilityCapable reports whether predictions carry probabilities.
func (s *Service) ProbabilityCapable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adapter != nil && s.adapter.ProbabilityCapable()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":            s.started,
		"model":              s.model.Name,
		"estimator":          s.model.Estimator,
		"probabilityCapable": s.adapter != nil && s.adapter.ProbabilityCapable(),
		"predictions":        s.predictions.Load(),
		"predictionErrors":   s.failures.Load(),
		"leaveCount":         s.leaveCount.Load(),
		"stayCount":          s.stayCount.Load(),
	}
}

// ErrorKind classifies a prediction error for metrics and HTTP mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrNotStarted):
		return KindNotStarted
	case errors.Is(err, employee.ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, prediction.ErrProbability):
		return KindProbability
	case errors.Is(err, prediction.ErrUnexpectedLabel):
		return KindUnexpectedLabel
	default:
		return KindClassifier
	}
}
