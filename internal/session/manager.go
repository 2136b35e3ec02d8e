package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/store"
	"github.com/google/uuid"
)

const DefaultIdleTimeout = 30 * time.Minute

// Recorder persists transcript rows. The sqlite store satisfies it.
type Recorder interface {
	AppendTranscript(ctx context.Context, entry store.TranscriptEntry) error
}

// Factory builds the resolver that owns one session's history.
type Factory func(sessionID string) *resolver.Resolver

type Config struct {
	IdleTimeout time.Duration
}

type session struct {
	resolver   *resolver.Resolver
	lastActive time.Time
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  Factory
	recorder Recorder
	idle     time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewManager(cfg Config, factory Factory, recorder Recorder, logger *slog.Logger) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: map[string]*session{},
		factory:  factory,
		recorder: recorder,
		idle:     cfg.IdleTimeout,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With("component", "sessions"),
	}
}

// Submit resolves text in the named session, creating it when the id is
// blank or unknown. The returned id is the one the caller should reuse.
func (m *Manager) Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome) {
	sessionID, current := m.acquire(sessionID)
	outcome := current.Resolve(ctx, text)
	if outcome.Source != resolver.SourceBusy {
		m.record(ctx, sessionID, text, outcome)
	}
	return sessionID, outcome
}

func (m *Manager) acquire(sessionID string) (string, *resolver.Resolver) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[sessionID]
	if !ok {
		current = &session{resolver: m.factory(sessionID)}
		m.sessions[sessionID] = current
		m.logger.Debug("session opened", "session_id", sessionID)
	}
	current.lastActive = m.now()
	return sessionID, current.resolver
}

func (m *Manager) record(ctx context.Context, sessionID, text string, outcome resolver.Outcome) {
	if m.recorder == nil {
		return
	}
	// The visitor may have disconnected; the transcript is still written.
	ctx = context.WithoutCancel(ctx)
	now := m.now()
	entries := []store.TranscriptEntry{
		{SessionID: sessionID, Role: "user", Content: text, Source: string(outcome.Source), CreatedAt: now},
		{SessionID: sessionID, Role: "assistant", Content: outcome.Reply, Source: string(outcome.Source), CreatedAt: now},
	}
	for _, entry := range entries {
		if err := m.recorder.AppendTranscript(ctx, entry); err != nil {
			m.logger.Error("failed to record transcript", "session_id", sessionID, "error", err)
			return
		}
	}
}

// Sweep drops sessions idle for longer than the idle timeout and returns
// how many were removed. Sessions with a resolution in flight are kept.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, current := range m.sessions {
		if now.Sub(current.lastActive) <= m.idle || current.resolver.Busy() {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	if removed > 0 {
		m.logger.Info("expired idle sessions", "count", removed, "remaining", len(m.sessions))
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
