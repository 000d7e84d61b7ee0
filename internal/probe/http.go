package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/attrition/internal/adapters/http/api"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health checks that /healthz answers 200.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHealthCheck, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrHealthCheck, status)
	}
	return nil
}

// Schema fetches the server's field list.
func (c *HTTPClient) Schema(ctx context.Context) (api.SchemaResponse, error) {
	var out api.SchemaResponse
	status, body, err := c.do(ctx, http.MethodGet, "/api/schema", "", nil)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, fmt.Errorf("%w: schema status %d", ErrUnexpected, status)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return out, nil
}

// Predict submits one sample and decodes the answer. Non-200 answers are
// returned with a nil response and no error.
func (c *HTTPClient) Predict(ctx context.Context, s Sample) (int, *api.PredictResponse, error) {
	payload, err := json.Marshal(s.Input)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, "/api/predict", s.ID, payload)
	if err != nil {
		return 0, nil, err
	}
	if status != http.StatusOK {
		return status, nil, nil
	}
	var resp api.PredictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return status, nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return status, &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, requestID string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set(api.RequestIDHeader, requestID)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}
