// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	"github.com/okian/attrition/pkg/logger"
)

// maxBodyBytes caps the request body of POST /api/predict.
const maxBodyBytes = 64 << 10

// PredictResponse is the body of a successful POST /api/predict.
type PredictResponse struct {
	RequestID            string           `json:"request_id"`
	Label                prediction.Label `json:"label"`
	Prediction           int              `json:"prediction"`
	ProbabilityStay      *float64         `json:"probability_stay"`
	ProbabilityLeave     *float64         `json:"probability_leave"`
	ProbabilityAvailable bool             `json:"probability_available"`
}

// NewPredictResponse maps a prediction result to its wire shape.
func NewPredictResponse(requestID string, res prediction.Result) PredictResponse {
	return PredictResponse{
		RequestID:            requestID,
		Label:                res.Label,
		Prediction:           res.Label.Class(),
		ProbabilityStay:      res.ProbabilityStay,
		ProbabilityLeave:     res.ProbabilityLeave,
		ProbabilityAvailable: res.HasProbabilities(),
	}
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps    Dependencies
	timeout time.Duration
	logger  logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, timeout time.Duration, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, timeout: timeout, logger: l}
}

// HandlePredict handles POST /api/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	in, err := decodeInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := in.Validate(); err != nil {
		var ie *InputError
		if errors.As(err, &ie) {
			writeInputError(w, ie)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.deps.Predict(ctx, in.Record(h.deps.Schema()))
	if err != nil {
		status, code, kind := classify(err)
		h.logger.Warn(ctx, "prediction request failed",
			logger.String("requestId", RequestIDFrom(r.Context())),
			logger.String("code", code),
			logger.Error(err),
		)
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}

	writeJSON(w, http.StatusOK, NewPredictResponse(RequestIDFrom(r.Context()), res))
}

// decodeInput decodes exactly one JSON object with no unknown keys.
func decodeInput(body io.Reader) (*EmployeeInput, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var in EmployeeInput
	if err := dec.Decode(&in); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	return &in, nil
}

// classify maps a prediction error to an HTTP status, error code and kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, employee.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, "schema_mismatch", ErrSchemaMismatch
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", ErrPrediction
	default:
		return http.StatusInternalServerError, "prediction_failed", ErrPrediction
	}
}
