package types

import "encoding/json"

// ChatRequest is what the portal clients send to the proxy. The proxy itself
// forwards arbitrary JSON and never relies on this shape.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatResponse is the normalized reply shape clients work with.
type ChatResponse struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// ErrorResponse is the proxy error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// WSResponse is one server frame on the websocket transport. Data carries the
// proxied reply exactly as POST /api/chat would return it.
type WSResponse struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Status    int             `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *ErrorResponse  `json:"error,omitempty"`
}
