// Package client talks to the portal's chat proxy the way the browser does:
// it attaches the session id, bounds each round trip with a timeout and
// normalizes replies to a single shape.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskagent-portal/internal/types"
)

const DefaultTimeout = 15 * time.Second

var (
	ErrTimeout         = errors.New("Request timed out. Please try again.")
	ErrInvalidResponse = errors.New("Invalid response format")
)

// HTTPError reports a non-2xx response from the proxy.
type HTTPError struct {
	Status int
	// Message is the proxy's error envelope text, when it sent one.
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a client for the proxy at baseURL. A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// SendMessage posts one chat message and returns the normalized reply.
// On deadline it returns ErrTimeout.
func (c *Client) SendMessage(ctx context.Context, sess Session, query, companyID string) (*types.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, types.ChatRequest{
		Query:     query,
		SessionID: sess.ID,
		CompanyID: companyID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, body types.ChatRequest) (*types.ChatResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env types.ErrorResponse
		_ = json.Unmarshal(raw, &env)
		return nil, &HTTPError{Status: resp.StatusCode, Message: env.Error}
	}
	return Normalize(raw)
}

// Normalize accepts a bare JSON string or an object with a non-empty reply.
// Both come back with Status "success".
func Normalize(raw []byte) (*types.ChatResponse, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &types.ChatResponse{Reply: text, Status: "success"}, nil
	}
	var out types.ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.Reply == "" {
		return nil, ErrInvalidResponse
	}
	out.Status = "success"
	return &out, nil
}
