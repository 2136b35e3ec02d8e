package httpapi

import (
	"net/http"

	"github.com/dwizi/concierge/internal/sanitize"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Source    string `json:"source"`
}

func (r *router) handleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if r.deps.Sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is unavailable")
		return
	}

	var payload chatRequest
	if !decodeJSON(w, req, &payload) {
		return
	}
	text := sanitize.Text(payload.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	sessionID, outcome := r.deps.Sessions.Submit(req.Context(), payload.SessionID, text)
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Reply:     outcome.Reply,
		Source:    string(outcome.Source),
	})
}
