package httpapi

import "net/http"

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": "store is unavailable"})
		return
	}
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleComponents(w http.ResponseWriter, req *http.Request) {
	if r.deps.Health == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "health registry is disabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Health.Snapshot())
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         "concierge",
		"version":      r.version(),
		"environment":  r.deps.Config.Environment,
		"llm_provider": r.deps.Config.LLMProvider,
	})
}

func (r *router) version() string {
	if r.deps.Version == "" {
		return "dev"
	}
	return r.deps.Version
}
