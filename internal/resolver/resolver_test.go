package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dwizi/concierge/internal/health"
	"github.com/dwizi/concierge/internal/history"
	"github.com/dwizi/concierge/internal/llm"
)

type fakeReply struct {
	text string
	err  error
}

type fakeGenerator struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   int
	inputs  []llm.MessageInput
}

func (f *fakeGenerator) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	index := f.calls
	f.calls++
	if index >= len(f.replies) {
		return "", errors.New("no scripted reply")
	}
	return f.replies[index].text, f.replies[index].err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingGenerator) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.started)
	<-b.release
	return "finally done", nil
}

type panicGenerator struct{}

func (panicGenerator) Reply(context.Context, llm.MessageInput) (string, error) {
	panic("boom")
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func newTestResolver(generator llm.Responder, sleeper *sleepRecorder, reporter health.Reporter) *Resolver {
	opts := Options{
		Config:    DefaultConfig(),
		Generator: generator,
		Persona:   func() string { return "Persona line." },
		SessionID: "session-1",
		Health:    reporter,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if sleeper != nil {
		opts.Sleep = sleeper.sleep
	}
	return New(opts)
}

func TestLocalMatchSkipsRemoteTier(t *testing.T) {
	generator := &fakeGenerator{}
	resolver := newTestResolver(generator, &sleepRecorder{}, nil)

	outcome := resolver.Resolve(context.Background(), "What are your prices?")
	if outcome.Source != SourceLocal {
		t.Fatalf("expected local source, got %s", outcome.Source)
	}
	if !strings.Contains(outcome.Reply, "pricing") {
		t.Fatalf("expected pricing reply, got %q", outcome.Reply)
	}
	if generator.callCount() != 0 {
		t.Fatalf("expected no remote calls, got %d", generator.callCount())
	}
	if len(resolver.History()) != 0 {
		t.Fatalf("expected history untouched, got %+v", resolver.History())
	}
}

func TestRemoteSucceedsOnThirdAttempt(t *testing.T) {
	generator := &fakeGenerator{replies: []fakeReply{
		{err: errors.New("timeout")},
		{err: errors.New("status 503")},
		{text: "Quantum answers."},
	}}
	sleeper := &sleepRecorder{}
	registry := health.NewRegistry()
	resolver := newTestResolver(generator, sleeper, registry)

	outcome := resolver.Resolve(context.Background(), "quantum tunnels")
	if outcome.Source != SourceRemote || outcome.Reply != "Quantum answers." {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Attempts != 3 || generator.callCount() != 3 {
		t.Fatalf("expected 3 attempts, got outcome=%d calls=%d", outcome.Attempts, generator.callCount())
	}
	if len(sleeper.delays) != 2 || sleeper.delays[0] != time.Second || sleeper.delays[1] != 2*time.Second {
		t.Fatalf("expected linear backoff 1s,2s, got %v", sleeper.delays)
	}

	turns := resolver.History()
	if len(turns) != 2 {
		t.Fatalf("expected one user and one assistant turn, got %+v", turns)
	}
	if turns[0] != (history.Turn{Role: history.RoleUser, Content: "quantum tunnels"}) {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1] != (history.Turn{Role: history.RoleAssistant, Content: "Quantum answers."}) {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}
	if registry.State(health.RemoteTier) != health.StateHealthy {
		t.Fatalf("expected remote tier healthy, got %s", registry.State(health.RemoteTier))
	}
}

func TestRetriesExhaustedReturnsFallback(t *testing.T) {
	failure := fakeReply{err: errors.New("unreachable")}
	generator := &fakeGenerator{replies: []fakeReply{failure, failure, failure, failure, {text: "too late"}}}
	sleeper := &sleepRecorder{}
	registry := health.NewRegistry()
	resolver := newTestResolver(generator, sleeper, registry)

	outcome := resolver.Resolve(context.Background(), "quantum tunnels")
	if outcome.Source != SourceFallback || outcome.Reply != FallbackText {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if generator.callCount() != 4 || outcome.Attempts != 4 {
		t.Fatalf("expected 4 remote calls, got %d", generator.callCount())
	}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("expected delays %v, got %v", want, sleeper.delays)
		}
	}
	if len(resolver.History()) != 1 {
		t.Fatalf("expected only the user turn in history, got %+v", resolver.History())
	}
	if registry.State(health.RemoteTier) != health.StateDegraded {
		t.Fatalf("expected remote tier degraded, got %s", registry.State(health.RemoteTier))
	}
	if !strings.Contains(outcome.Reply, "contact@azayd.com") {
		t.Fatalf("expected contact email in fallback: %q", outcome.Reply)
	}
}

func TestNoRemoteTierReturnsFallback(t *testing.T) {
	resolver := newTestResolver(nil, &sleepRecorder{}, nil)
	if got := resolver.Submit(context.Background(), "xyzzy nonsense"); got != FallbackText {
		t.Fatalf("expected fallback, got %q", got)
	}
	if len(resolver.History()) != 0 {
		t.Fatalf("expected empty history, got %+v", resolver.History())
	}
}

func TestEmptyReplyIsRetried(t *testing.T) {
	generator := &fakeGenerator{replies: []fakeReply{{text: "   "}, {text: "assistant: real answer"}}}
	sleeper := &sleepRecorder{}
	resolver := newTestResolver(generator, sleeper, nil)

	outcome := resolver.Resolve(context.Background(), "quantum tunnels")
	if outcome.Reply != "real answer" || outcome.Attempts != 2 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(sleeper.delays) != 1 {
		t.Fatalf("expected one backoff wait, got %v", sleeper.delays)
	}
}

func TestPanickingGeneratorFallsBackAndReleases(t *testing.T) {
	resolver := newTestResolver(panicGenerator{}, &sleepRecorder{}, nil)
	outcome := resolver.Resolve(context.Background(), "quantum tunnels")
	if outcome.Source != SourceFallback || outcome.Attempts != 4 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if resolver.Busy() {
		t.Fatal("expected resolver to return to idle")
	}
}

func TestConcurrentSubmitGetsBusyNotice(t *testing.T) {
	generator := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	resolver := newTestResolver(generator, &sleepRecorder{}, nil)

	done := make(chan string, 1)
	go func() {
		done <- resolver.Submit(context.Background(), "quantum tunnels")
	}()
	<-generator.started

	before := resolver.History()
	if got := resolver.Submit(context.Background(), "hello there"); got != BusyNotice {
		t.Fatalf("expected busy notice, got %q", got)
	}
	after := resolver.History()
	if len(before) != len(after) {
		t.Fatalf("busy submission changed history: %+v -> %+v", before, after)
	}

	close(generator.release)
	if got := <-done; got != "finally done" {
		t.Fatalf("unexpected first reply: %q", got)
	}
	generator.mu.Lock()
	calls := generator.calls
	generator.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one remote call, got %d", calls)
	}
	if resolver.Busy() {
		t.Fatal("expected idle after completion")
	}
	if got := resolver.Submit(context.Background(), "hello there"); got == BusyNotice {
		t.Fatal("expected idle resolver to accept submissions")
	}
}

func TestPromptCarriesPersonaAndRecentContext(t *testing.T) {
	generator := &fakeGenerator{replies: []fakeReply{
		{text: "one"}, {text: "two"}, {text: "three"},
	}}
	resolver := newTestResolver(generator, &sleepRecorder{}, nil)
	ctx := context.Background()
	resolver.Submit(ctx, "alpha quantum")
	resolver.Submit(ctx, "beta quantum")
	resolver.Submit(ctx, "gamma quantum")

	last := generator.inputs[2]
	if last.SessionID != "session-1" {
		t.Fatalf("expected session id on input, got %q", last.SessionID)
	}
	want := "Persona line.\n\nPrevious conversation:\n" +
		"assistant: one\nuser: beta quantum\nassistant: two\nuser: gamma quantum\n\n" +
		"Current question: gamma quantum"
	if last.Text != want {
		t.Fatalf("unexpected prompt:\n%s\nwant:\n%s", last.Text, want)
	}
}

func TestHistoryStaysBounded(t *testing.T) {
	replies := make([]fakeReply, 20)
	for i := range replies {
		replies[i] = fakeReply{text: "ok"}
	}
	resolver := newTestResolver(&fakeGenerator{replies: replies}, &sleepRecorder{}, nil)
	for i := 0; i < 20; i++ {
		resolver.Submit(context.Background(), "quantum tunnels")
		if n := len(resolver.History()); n > history.DefaultLimit {
			t.Fatalf("history exceeded bound: %d", n)
		}
	}
	if n := len(resolver.History()); n != history.DefaultLimit {
		t.Fatalf("expected full history, got %d", n)
	}
}

func TestCallerCancellationDoesNotAbortResolution(t *testing.T) {
	generator := &fakeGenerator{replies: []fakeReply{{text: "still answered"}}}
	resolver := newTestResolver(generator, &sleepRecorder{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := resolver.Submit(ctx, "quantum tunnels"); got != "still answered" {
		t.Fatalf("expected reply despite cancelled context, got %q", got)
	}
}

func TestCleanReply(t *testing.T) {
	cases := map[string]string{
		"  Assistant: hi there ": "hi there",
		"BOT:answer":             "answer",
		"plain":                  "plain",
		"bot":                    "bot",
		"":                       "",
	}
	for input, want := range cases {
		if got := CleanReply(input); got != want {
			t.Fatalf("CleanReply(%q) = %q, want %q", input, got, want)
		}
	}
}
