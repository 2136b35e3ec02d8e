package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwizi/concierge/internal/config"
	"github.com/dwizi/concierge/internal/health"
	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/store"
)

type ChatSessions interface {
	Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome)
}

type Dependencies struct {
	Config   config.Config
	Store    *store.Store
	Sessions ChatSessions
	Health   *health.Registry
	Logger   *slog.Logger
	Version  string
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/health", rt.handleComponents)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/chat", rt.handleChat)
	mux.HandleFunc("/api/v1/chat/ws", rt.handleChatSocket)
	mux.HandleFunc("/api/v1/contact", rt.handleContact)
	mux.HandleFunc("/api/v1/tasks", rt.handleTasks)
	mux.HandleFunc("/api/v1/tasks/{id}", rt.handleTask)
	return mux
}

// maxBodyBytes bounds request bodies and websocket frames.
const maxBodyBytes = 64 << 10

// decodeJSON reads a bounded JSON body into dst, writing the error response
// itself when it returns false.
func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) bool {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
