package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/classahp/internal/domain/types"
)

// ErrUnexpectedStatus is returned when the service answers with a status the
// probe does not expect for the call.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// Evaluate posts a request to the synchronous endpoint.
func (c *HTTPClient) Evaluate(ctx context.Context, req types.EvaluationRequest) (types.Evaluation, error) {
	var ev types.Evaluation
	status, err := c.postJSON(ctx, "/v1/evaluate", req, &ev)
	if err != nil {
		return ev, err
	}
	if status != http.StatusOK {
		return ev, fmt.Errorf("%w: evaluate returned %d", ErrUnexpectedStatus, status)
	}
	return ev, nil
}

// Submit posts a request to the queue.
func (c *HTTPClient) Submit(ctx context.Context, req types.EvaluationRequest) (types.Submission, error) {
	var sub types.Submission
	status, err := c.postJSON(ctx, "/v1/evaluations", req, &sub)
	if err != nil {
		return sub, err
	}
	if status != http.StatusAccepted && status != http.StatusOK {
		return sub, fmt.Errorf("%w: submit returned %d", ErrUnexpectedStatus, status)
	}
	return sub, nil
}

// Poll fetches an evaluation until it leaves the pending state or ctx ends.
func (c *HTTPClient) Poll(ctx context.Context, id string) (types.Evaluation, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		ev, status, err := c.get(ctx, id)
		if err != nil {
			return ev, err
		}
		switch status {
		case http.StatusOK:
			return ev, nil
		case http.StatusAccepted:
		default:
			return ev, fmt.Errorf("%w: get evaluation returned %d", ErrUnexpectedStatus, status)
		}
		select {
		case <-ctx.Done():
			return ev, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stats fetches GET /stats.
func (c *HTTPClient) Stats(ctx context.Context) (map[string]any, error) {
	resp, err := c.do(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: stats returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	out := map[string]any{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, id string) (types.Evaluation, int, error) {
	var ev types.Evaluation
	resp, err := c.do(ctx, http.MethodGet, "/v1/evaluations/"+id, nil)
	if err != nil {
		return ev, 0, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return ev, resp.StatusCode, err
	}
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		if err := json.Unmarshal(body, &ev); err != nil {
			return ev, resp.StatusCode, fmt.Errorf("failed to decode evaluation: %w", err)
		}
	}
	return ev, resp.StatusCode, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) (int, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode/100 != 2 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
