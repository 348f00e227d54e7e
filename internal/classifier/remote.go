package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spam-detector/internal/apperr"
)

// Remote is a classifier served by an external inference process.
// Tokenization happens on the remote side, so Encode only carries the text.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	numLabels  int
	model      string
	device     string
}

// LogitsRequest is the body of POST /v1/logits.
type LogitsRequest struct {
	Text string `json:"text"`
}

// LogitsResponse is returned by POST /v1/logits.
type LogitsResponse struct {
	Logits []float64 `json:"logits"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	NumLabels int    `json:"num_labels"`
	Device    string `json:"device"`
}

// LoadRemote connects to the inference process and confirms it has a model
// loaded. Any failure is reported as apperr.ErrModelLoad.
func LoadRemote(ctx context.Context, baseURL string, timeout time.Duration) (*Remote, error) {
	r := &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	health, err := r.HealthCheck(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrModelLoad, err)
	}
	if health.Status != "ok" {
		return nil, fmt.Errorf("%w: inference service status %q", apperr.ErrModelLoad, health.Status)
	}
	if health.NumLabels < 2 {
		return nil, fmt.Errorf("%w: inference service reports %d labels", apperr.ErrModelLoad, health.NumLabels)
	}

	r.numLabels = health.NumLabels
	r.model = health.Model
	r.device = health.Device
	return r, nil
}

// HealthCheck checks if the inference service is healthy.
func (r *Remote) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result HealthResponse
	if err := r.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *Remote) Encode(text string) (Encoding, error) {
	return Encoding{Text: text}, nil
}

// Forward sends the text to the inference service and returns its logits.
func (r *Remote) Forward(ctx context.Context, enc Encoding) ([]float64, error) {
	body, err := json.Marshal(LogitsRequest{Text: enc.Text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/logits", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result LogitsResponse
	if err := r.do(req, &result); err != nil {
		return nil, err
	}
	return result.Logits, nil
}

func (r *Remote) do(req *http.Request, out interface{}) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (r *Remote) NumClasses() int { return r.numLabels }

func (r *Remote) ConcurrentSafe() bool { return true }

func (r *Remote) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

func (r *Remote) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":   "remote",
		"model":      r.model,
		"device":     r.device,
		"num_labels": r.numLabels,
		"url":        r.baseURL,
	}
}
