package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskagent-portal/internal/types"
	"taskagent-portal/internal/webhook"
)

const (
	msgNotConfigured = "webhook URL is not configured."
	msgProxyFailed   = "Failed to proxy request to webhook."
)

// POST /api/chat
// Relays an arbitrary JSON body to the configured webhook and the reply back.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.webhook.Configured() {
		s.writeError(w, http.StatusInternalServerError, types.ErrorResponse{Error: msgNotConfigured})
		return
	}
	body := io.Reader(r.Body)
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	payload, err := decodePayload(body)
	if err != nil {
		s.logger.Error("chat proxy failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, types.ErrorResponse{Error: msgProxyFailed, Details: err.Error()})
		return
	}
	res, err := s.webhook.Forward(r.Context(), payload)
	if err != nil {
		code, env := proxyError(err)
		if code == http.StatusInternalServerError {
			s.logger.Error("chat proxy failed", "error", err)
		}
		s.writeError(w, code, env)
		return
	}
	writeJSON(w, http.StatusOK, res.Body)
}

// proxyError maps a Forward error to the status and envelope sent to the browser.
func proxyError(err error) (int, types.ErrorResponse) {
	var se *webhook.StatusError
	switch {
	case errors.Is(err, webhook.ErrNotConfigured):
		return http.StatusInternalServerError, types.ErrorResponse{Error: msgNotConfigured}
	case errors.As(err, &se):
		return se.Code, types.ErrorResponse{Error: se.Error(), Raw: se.Body}
	default:
		return http.StatusInternalServerError, types.ErrorResponse{Error: msgProxyFailed, Details: err.Error()}
	}
}

// decodePayload reads exactly one JSON value, keeping numbers as sent.
// Anything after that value other than whitespace is an error.
func decodePayload(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return v, nil
}
