package httpapi

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/store"
)

type fakeSessions struct {
	mu       sync.Mutex
	calls    int
	lastID   string
	lastText string
	outcome  resolver.Outcome
}

func (f *fakeSessions) Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastID = sessionID
	f.lastText = text
	if sessionID == "" {
		sessionID = "generated-session"
	}
	return sessionID, f.outcome
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouterTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "router.sqlite")
	sqlStore, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	return sqlStore
}
