package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dwizi/concierge/internal/resolver"
)

func testEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONCIERGE_DB_PATH", filepath.Join(dir, "concierge.sqlite"))
	t.Setenv("CONCIERGE_LLM_PROVIDER", "none")
	t.Setenv("CONCIERGE_PERSONA_FILE", "")
}

func execute(t *testing.T, input string, args ...string) string {
	t.Helper()
	root := NewRoot(nil)
	var output bytes.Buffer
	root.SetOut(&output)
	root.SetErr(&output)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v\noutput: %s", args, err, output.String())
	}
	return output.String()
}

func TestNewRootIncludesExpectedSubcommands(t *testing.T) {
	root := NewRoot(nil)
	for _, name := range []string{"serve", "chat", "widget", "mcp", "knowledge", "tasks", "version"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Fatalf("expected subcommand %q to exist: %v", name, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "", "version")
	if strings.TrimSpace(out) != version {
		t.Fatalf("expected %q, got %q", version, out)
	}
}

func TestKnowledgeCommandListsEntries(t *testing.T) {
	out := execute(t, "", "knowledge")
	for _, want := range []string{"KEYWORDS", "hello, hi, hey, greetings", "services, offer, provide"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestChatOneShotUsesLocalAnswer(t *testing.T) {
	testEnv(t)
	out := execute(t, "", "chat", "-v", "what", "services", "do", "you", "offer?")
	if !strings.Contains(out, "assistant> ") || !strings.Contains(out, "source: local") {
		t.Fatalf("unexpected chat output:\n%s", out)
	}
}

func TestChatInteractiveFallsBackWithoutProvider(t *testing.T) {
	testEnv(t)
	out := execute(t, "tell me about quantum tunnels\n\n/exit\n", "chat")
	if !strings.Contains(out, resolver.FallbackText) {
		t.Fatalf("expected fallback text in output:\n%s", out)
	}
	if strings.Count(out, "you> ") != 3 {
		t.Fatalf("expected three prompts, got output:\n%s", out)
	}
}

type recordingSessions struct {
	ids   []string
	texts []string
}

func (r *recordingSessions) Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome) {
	r.ids = append(r.ids, sessionID)
	r.texts = append(r.texts, text)
	return "s-1", resolver.Outcome{Reply: "ok", Source: resolver.SourceLocal}
}

func TestInteractiveChatReusesSessionAndSanitizes(t *testing.T) {
	sessions := &recordingSessions{}
	cmd := &cobra.Command{}
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetIn(strings.NewReader("<i>first</i>\nsecond\n"))

	if err := runInteractiveChat(cmd, sessions, "", false); err != nil {
		t.Fatalf("interactive chat: %v", err)
	}
	if len(sessions.ids) != 2 || sessions.ids[0] != "" || sessions.ids[1] != "s-1" {
		t.Fatalf("unexpected session ids: %v", sessions.ids)
	}
	if sessions.texts[0] != "first" {
		t.Fatalf("expected sanitized text, got %q", sessions.texts[0])
	}
}

func TestInteractiveLoggerWritesToGivenStream(t *testing.T) {
	var stdout, stderr bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger := interactiveLogger(&stderr, base)
	logger.Info("hidden")
	logger.Warn("remote attempt failed")

	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "remote attempt failed") || strings.Contains(stderr.String(), "hidden") {
		t.Fatalf("unexpected stderr output: %q", stderr.String())
	}

	strict := interactiveLogger(&stderr, slog.New(slog.NewJSONHandler(&stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	if strict.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected error level to be kept")
	}
}
