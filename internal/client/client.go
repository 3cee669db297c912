// Package client provides an HTTP client for the guestbook comment API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/portfolio/internal/comment"
)

// Client is an HTTP client for the comment API. It applies no timeout of its
// own; callers bound requests through the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. baseURL includes the /api prefix,
// e.g. http://localhost:3000/api.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// APIError is returned when the server answers with a failure envelope or a
// non-success status.
type APIError struct {
	Status  int
	Message string // empty when the server gave none
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Health is the response from GET /health.
type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// ListComments returns all comments, newest first.
func (c *Client) ListComments(ctx context.Context) ([]*comment.Comment, error) {
	var resp struct {
		Comments []*comment.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/comments", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Comments == nil {
		resp.Comments = make([]*comment.Comment, 0)
	}
	return resp.Comments, nil
}

// AddComment creates a comment and returns the stored row.
func (c *Client) AddComment(ctx context.Context, in comment.Input) (*comment.Comment, error) {
	var resp struct {
		Comment *comment.Comment `json:"comment"`
	}
	if err := c.do(ctx, http.MethodPost, "/comments", in, &resp); err != nil {
		return nil, err
	}
	if resp.Comment == nil {
		return nil, fmt.Errorf("response missing comment")
	}
	return resp.Comment, nil
}

// DeleteComment removes a comment by ID.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil)
}

// CountComments returns the total number of comments.
func (c *Client) CountComments(ctx context.Context) (int64, error) {
	var resp struct {
		Total int64 `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/comments/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// do executes a request and decodes the envelope into result.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	slog.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start).String())

	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding response: %w", decodeErr)
	}
	if env.Success != nil && !*env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
