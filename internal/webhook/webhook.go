// Package webhook forwards chat payloads to the external workflow engine.
//
// A Client performs exactly one outbound POST per call. It never retries and
// keeps no state between calls; the only condition checked up front is whether
// a target URL was configured.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Forwarding modes, mirroring config.ModeQuery and config.ModeBody.
const (
	ModeQuery = "query"
	ModeBody  = "body"
)

// QueryFields are the top-level body fields moved into the query string in ModeQuery.
var QueryFields = []string{"query", "companyId", "sessionId"}

// ErrNotConfigured is returned by Forward when no webhook URL is set.
var ErrNotConfigured = errors.New("webhook URL is not configured")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code       int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	return "webhook error: " + e.StatusText
}

// Result is a successful upstream reply, already shaped for the browser:
// the upstream JSON, or {"reply": text} when the upstream sent plain text.
type Result struct {
	Body    json.RawMessage
	Wrapped bool
}

type Options struct {
	URL           string
	Mode          string
	Timeout       time.Duration
	SuccessMarker bool
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

type Client struct {
	url           string
	mode          string
	timeout       time.Duration
	successMarker bool
	httpClient    *http.Client
	logger        *slog.Logger
}

func New(opts Options) *Client {
	c := &Client{
		url:           strings.TrimSpace(opts.URL),
		mode:          opts.Mode,
		timeout:       opts.Timeout,
		successMarker: opts.SuccessMarker,
		httpClient:    opts.HTTPClient,
		logger:        opts.Logger,
	}
	if c.mode != ModeBody {
		c.mode = ModeQuery
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

func (c *Client) Configured() bool { return c.url != "" }

func (c *Client) Mode() string { return c.mode }

// Forward posts payload to the webhook and shapes the reply. Errors are
// ErrNotConfigured, *StatusError, or a transport/parse failure.
func (c *Client) Forward(ctx context.Context, payload any) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	target, body, err := c.prepare(payload)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode webhook body: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("forwarding to webhook", "url", target, "mode", c.mode, "body", string(b))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("webhook returned error", "status", resp.StatusCode, "body", string(raw))
		return nil, &StatusError{
			Code:       resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(raw),
		}
	}
	return c.shape(raw)
}

func (c *Client) prepare(payload any) (string, any, error) {
	obj, ok := payload.(map[string]any)
	if c.mode != ModeQuery || !ok {
		return c.url, payload, nil
	}
	params, rest := SplitQuery(obj, QueryFields...)
	target, err := withQuery(c.url, params)
	if err != nil {
		return "", nil, err
	}
	return target, rest, nil
}

func (c *Client) shape(raw []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		b, err := json.Marshal(map[string]string{"reply": string(raw)})
		if err != nil {
			return nil, fmt.Errorf("wrap webhook reply: %w", err)
		}
		return &Result{Body: b, Wrapped: true}, nil
	}
	if !c.successMarker || trimmed[0] != '{' {
		return &Result{Body: json.RawMessage(trimmed)}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("decode webhook reply: %w", err)
	}
	if _, exists := obj["status"]; !exists {
		obj["status"] = json.RawMessage(`"success"`)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode webhook reply: %w", err)
	}
	return &Result{Body: b}, nil
}

// SplitQuery removes fields from body and returns the non-null ones as query
// values together with the remaining body. body itself is not modified.
func SplitQuery(body map[string]any, fields ...string) (url.Values, map[string]any) {
	params := url.Values{}
	rest := make(map[string]any, len(body))
	for k, v := range body {
		rest[k] = v
	}
	for _, f := range fields {
		v, ok := rest[f]
		if !ok {
			continue
		}
		delete(rest, f)
		if v == nil {
			continue
		}
		params.Set(f, queryValue(v))
	}
	return params, rest
}

func queryValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func withQuery(base string, params url.Values) (string, error) {
	if len(params) == 0 {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse webhook URL: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// statusText extracts "Service Unavailable" from "503 Service Unavailable".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
