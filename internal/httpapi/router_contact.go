package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dwizi/concierge/internal/sanitize"
	"github.com/dwizi/concierge/internal/store"
	"github.com/dwizi/concierge/internal/validation"
)

type contactView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	Read          bool   `json:"read"`
	CreatedAtUnix int64  `json:"created_at_unix"`
}

func newContactView(record store.ContactMessage) contactView {
	return contactView{
		ID:            record.ID,
		Name:          record.Name,
		Email:         record.Email,
		Subject:       record.Subject,
		Message:       record.Message,
		Read:          record.Read,
		CreatedAtUnix: record.CreatedAt.Unix(),
	}
}

func (r *router) handleContact(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store is unavailable")
		return
	}
	switch req.Method {
	case http.MethodPost:
		r.createContact(w, req)
	case http.MethodGet:
		r.listContacts(w, req)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *router) createContact(w http.ResponseWriter, req *http.Request) {
	var payload validation.Contact
	if !decodeJSON(w, req, &payload) {
		return
	}
	payload.Name = sanitize.Text(payload.Name)
	payload.Email = sanitize.Text(payload.Email)
	payload.Subject = sanitize.Text(payload.Subject)
	payload.Message = sanitize.Text(payload.Message)

	if result := validation.ValidateContact(payload); !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	record, err := r.deps.Store.CreateContact(req.Context(), store.CreateContactInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
		Message: payload.Message,
	})
	if err != nil {
		r.deps.Logger.Error("failed to save contact message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	r.deps.Logger.Info("contact message received", "contact_id", record.ID)
	writeJSON(w, http.StatusCreated, newContactView(record))
}

func (r *router) listContacts(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	records, err := r.deps.Store.ListContacts(req.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]contactView, 0, len(records))
	for _, record := range records {
		views = append(views, newContactView(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(views), "messages": views})
}
