package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dwizi/concierge/internal/sanitize"
	"github.com/dwizi/concierge/internal/store"
	"github.com/dwizi/concierge/internal/validation"
)

type taskView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Completed     bool   `json:"completed"`
	CreatedAtUnix int64  `json:"created_at_unix"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

func newTaskView(task store.Task) taskView {
	return taskView{
		ID:            task.ID,
		Title:         task.Title,
		Completed:     task.Completed,
		CreatedAtUnix: task.CreatedAt.Unix(),
		UpdatedAtUnix: task.UpdatedAt.Unix(),
	}
}

type createTaskRequest struct {
	Title string `json:"title"`
}

type updateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (r *router) handleTasks(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store is unavailable")
		return
	}
	switch req.Method {
	case http.MethodGet:
		tasks, err := r.deps.Store.ListTasks(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]taskView, 0, len(tasks))
		for _, task := range tasks {
			views = append(views, newTaskView(task))
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(views), "tasks": views})
	case http.MethodPost:
		var payload createTaskRequest
		if !decodeJSON(w, req, &payload) {
			return
		}
		title := sanitize.Text(payload.Title)
		if result := validation.ValidateTaskTitle(title); !result.Valid {
			writeJSON(w, http.StatusBadRequest, result)
			return
		}
		task, err := r.deps.Store.CreateTask(req.Context(), title)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, newTaskView(task))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *router) handleTask(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store is unavailable")
		return
	}
	id := strings.TrimSpace(req.PathValue("id"))
	switch req.Method {
	case http.MethodPatch:
		var payload updateTaskRequest
		if !decodeJSON(w, req, &payload) {
			return
		}
		if payload.Title == nil && payload.Completed == nil {
			writeError(w, http.StatusBadRequest, "title or completed is required")
			return
		}
		if payload.Title != nil {
			title := sanitize.Text(*payload.Title)
			if result := validation.ValidateTaskTitle(title); !result.Valid {
				writeJSON(w, http.StatusBadRequest, result)
				return
			}
			payload.Title = &title
		}
		task, err := r.deps.Store.UpdateTask(req.Context(), id, store.UpdateTaskInput{
			Title:     payload.Title,
			Completed: payload.Completed,
		})
		if err != nil {
			writeTaskError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTaskView(task))
	case http.MethodDelete:
		if err := r.deps.Store.DeleteTask(req.Context(), id); err != nil {
			writeTaskError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeTaskError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrTaskNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}
