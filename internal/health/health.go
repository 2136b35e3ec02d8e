package health

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateDisabled = "disabled"
	StateStopped  = "stopped"
)

// Component names reported by the runtime.
const (
	RemoteTier = "remote-tier"
	API        = "api"
	Sweeper    = "session-sweeper"
	Persona    = "persona-watcher"
	Store      = "store"
)

type Reporter interface {
	Starting(component, message string)
	Healthy(component, message string)
	Degraded(component, message string, err error)
	Disabled(component, message string)
	Stopped(component, message string)
}

type Component struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

type Snapshot struct {
	GeneratedAtUnix int64       `json:"generated_at_unix"`
	Overall         string      `json:"overall"`
	Components      []Component `json:"components"`
}

type Registry struct {
	mu         sync.RWMutex
	now        func() time.Time
	components map[string]Component
}

func NewRegistry() *Registry {
	return &Registry{
		now:        func() time.Time { return time.Now().UTC() },
		components: map[string]Component{},
	}
}

func (r *Registry) Starting(component, message string) {
	r.set(component, StateStarting, message, nil)
}

func (r *Registry) Healthy(component, message string) {
	r.set(component, StateHealthy, message, nil)
}

func (r *Registry) Degraded(component, message string, err error) {
	r.set(component, StateDegraded, message, err)
}

func (r *Registry) Disabled(component, message string) {
	r.set(component, StateDisabled, message, nil)
}

func (r *Registry) Stopped(component, message string) {
	r.set(component, StateStopped, message, nil)
}

func (r *Registry) set(component, state, message string, err error) {
	name := strings.ToLower(strings.TrimSpace(component))
	if name == "" {
		return
	}
	entry := Component{
		Name:    name,
		State:   state,
		Message: strings.TrimSpace(message),
	}
	if err != nil {
		entry.Error = strings.TrimSpace(err.Error())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.UpdatedAtUnix = r.now().Unix()
	r.components[name] = entry
}

// State returns the last reported state of a component, or "" when unknown.
func (r *Registry) State(component string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.components[strings.ToLower(strings.TrimSpace(component))].State
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	items := make([]Component, 0, len(r.components))
	for _, entry := range r.components {
		items = append(items, entry)
	}
	generated := r.now().Unix()
	r.mu.RUnlock()

	sort.Slice(items, func(left, right int) bool {
		return items[left].Name < items[right].Name
	})
	return Snapshot{
		GeneratedAtUnix: generated,
		Overall:         overall(items),
		Components:      items,
	}
}

// overall is degraded if anything is degraded, starting while anything
// starts, idle when every component is disabled or stopped.
func overall(items []Component) string {
	if len(items) == 0 {
		return "unknown"
	}
	active := false
	starting := false
	for _, item := range items {
		switch item.State {
		case StateDegraded:
			return StateDegraded
		case StateStarting:
			starting = true
			active = true
		case StateHealthy:
			active = true
		}
	}
	switch {
	case starting:
		return StateStarting
	case active:
		return StateHealthy
	default:
		return "idle"
	}
}

// Nop discards every report.
type Nop struct{}

func (Nop) Starting(string, string) {}
func (Nop) Healthy(string, string) {}
func (Nop) Degraded(string, string, error) {}
func (Nop) Disabled(string, string) {}
func (Nop) Stopped(string, string) {}
