package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/dwizi/concierge/internal/config"
	"github.com/dwizi/concierge/internal/health"
	"github.com/dwizi/concierge/internal/resolver"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Environment:        "test",
		HTTPAddr:           "127.0.0.1:0",
		DataDir:            dir,
		DBPath:             filepath.Join(dir, "nested", "concierge.sqlite"),
		LLMProvider:        "none",
		MaxRetries:         3,
		RetryDelayMS:       1000,
		ContextTurns:       4,
		HistoryLimit:       10,
		SessionIdleMinutes: 30,
		SessionSweepSpec:   "@every 1m",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freeAddr(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()
	return addr
}

func TestNewWithoutProviderDisablesRemoteTier(t *testing.T) {
	runtime, err := New(testConfig(t), "test", discardLogger())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer runtime.Close()

	if runtime.RemoteEnabled() {
		t.Fatal("expected remote tier disabled")
	}
	if got := runtime.Health().State(health.RemoteTier); got != health.StateDisabled {
		t.Fatalf("expected remote tier disabled, got %q", got)
	}
	if got := runtime.Health().State(health.Store); got != health.StateHealthy {
		t.Fatalf("expected store healthy, got %q", got)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "mystery"
	if _, err := New(cfg, "test", discardLogger()); err == nil {
		t.Fatal("expected unknown provider to fail")
	}
}

func TestSessionsResolveAndRecord(t *testing.T) {
	runtime, err := New(testConfig(t), "test", discardLogger())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer runtime.Close()

	sessionID, outcome := runtime.Sessions().Submit(context.Background(), "", "What services do you offer?")
	if outcome.Source != resolver.SourceLocal {
		t.Fatalf("expected local answer, got %+v", outcome)
	}
	_, outcome = runtime.Sessions().Submit(context.Background(), sessionID, "tell me about quantum tunnels")
	if outcome.Source != resolver.SourceFallback || outcome.Reply != resolver.FallbackText {
		t.Fatalf("expected fallback without a provider, got %+v", outcome)
	}

	entries, err := runtime.Store().ListTranscript(context.Background(), sessionID, 10)
	if err != nil {
		t.Fatalf("list transcript: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 transcript rows, got %d", len(entries))
	}
}

func TestResolverConfigTreatsZeroRetriesAsNone(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxRetries = 0
	if got := resolverConfig(cfg).MaxRetries; got >= 0 {
		t.Fatalf("expected retries disabled, got %d", got)
	}
	cfg.MaxRetries = 2
	got := resolverConfig(cfg)
	if got.MaxRetries != 2 || got.RetryDelay != time.Second {
		t.Fatalf("unexpected resolver config: %+v", got)
	}
}

func TestRunServesUntilCanceled(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = freeAddr(t)
	runtime, err := New(cfg, "test", discardLogger())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer runtime.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runtime.Run(ctx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get("http://" + cfg.HTTPAddr + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not stop")
	}
	if got := runtime.Health().State(health.API); got != health.StateStopped {
		t.Fatalf("expected api stopped, got %q", got)
	}
}

func TestRunMonitoredReportsFailure(t *testing.T) {
	registry := health.NewRegistry()
	boom := errors.New("boom")
	err := runMonitored(context.Background(), registry, "worker", func(context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := registry.State("worker"); got != health.StateDegraded {
		t.Fatalf("expected degraded, got %q", got)
	}
}
