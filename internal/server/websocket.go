package server

import (
	"bytes"
	"net/http"

	"github.com/gorilla/websocket"

	"taskagent-portal/internal/types"
)

// GET /ws?sessionId=...
// Each text frame is one chat request; it is forwarded like POST /api/chat and
// answered with exactly one frame. Frames on a connection are handled in order.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.MaxBodyBytes)

	sessionID := r.URL.Query().Get("sessionId")
	if err := conn.WriteJSON(types.WSResponse{Type: "connected", SessionID: sessionID, Status: http.StatusOK}); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
		return
	}

	ctx := r.Context()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
		frame := s.forwardFrame(r, sessionID, message)
		if err := conn.WriteJSON(frame); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Server) forwardFrame(r *http.Request, sessionID string, message []byte) types.WSResponse {
	frame := types.WSResponse{Type: "error", SessionID: sessionID}
	if !s.webhook.Configured() {
		frame.Status = http.StatusInternalServerError
		frame.Error = &types.ErrorResponse{Error: msgNotConfigured}
		return frame
	}
	payload, err := decodePayload(bytes.NewReader(message))
	if err != nil {
		frame.Status = http.StatusInternalServerError
		frame.Error = &types.ErrorResponse{Error: msgProxyFailed, Details: err.Error()}
		return frame
	}
	// The connection's session id fills in for frames that omit their own.
	if obj, ok := payload.(map[string]any); ok && sessionID != "" {
		if _, has := obj["sessionId"]; !has {
			obj["sessionId"] = sessionID
		}
	}
	res, err := s.webhook.Forward(r.Context(), payload)
	if err != nil {
		code, env := proxyError(err)
		s.logger.Error("websocket proxy failed", "status", code, "error", err)
		frame.Status = code
		frame.Error = &env
		return frame
	}
	frame.Type = "reply"
	frame.Status = http.StatusOK
	frame.Data = res.Body
	return frame
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.AllowedOrigin
	if allowed == "" || allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients
	}
	return origin == allowed
}
