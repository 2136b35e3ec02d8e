package history

import (
	"fmt"
	"testing"
)

func TestAppendEvictsOldestTurn(t *testing.T) {
	h := New(DefaultLimit)
	for i := 1; i <= 11; i++ {
		h.Append(Turn{Role: RoleUser, Content: fmt.Sprintf("message %d", i)})
	}
	if h.Len() != 10 {
		t.Fatalf("expected 10 turns, got %d", h.Len())
	}
	turns := h.Turns()
	if turns[0].Content != "message 2" {
		t.Fatalf("expected oldest retained turn to be message 2, got %q", turns[0].Content)
	}
	for i, turn := range turns {
		want := fmt.Sprintf("message %d", i+2)
		if turn.Content != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, turn.Content)
		}
	}
}

func TestRecentContextReturnsLastFourInOrder(t *testing.T) {
	h := New(DefaultLimit)
	for i := 1; i <= 10; i++ {
		role := RoleUser
		if i%2 == 0 {
			role = RoleAssistant
		}
		h.Append(Turn{Role: role, Content: fmt.Sprintf("m%d", i)})
	}
	got := h.RecentContext(4)
	want := "user: m7\nassistant: m8\nuser: m9\nassistant: m10"
	if got != want {
		t.Fatalf("unexpected context:\n%s\nwant:\n%s", got, want)
	}
}

func TestRecentOnShortHistory(t *testing.T) {
	h := New(DefaultLimit)
	h.Append(Turn{Role: RoleUser, Content: "only"})
	if got := h.Recent(4); len(got) != 1 || got[0].Content != "only" {
		t.Fatalf("unexpected recent turns: %+v", got)
	}
	if got := h.Recent(0); got != nil {
		t.Fatalf("expected nil for n=0, got %+v", got)
	}
	if got := New(3).RecentContext(4); got != "" {
		t.Fatalf("expected empty context for empty history, got %q", got)
	}
}

func TestTurnsReturnsCopy(t *testing.T) {
	h := New(2)
	h.Append(Turn{Role: RoleUser, Content: "a"})
	turns := h.Turns()
	turns[0].Content = "mutated"
	if h.Turns()[0].Content != "a" {
		t.Fatal("expected history to be unaffected by caller mutation")
	}
}

func TestNewClampsLimit(t *testing.T) {
	if New(0).Limit() != DefaultLimit {
		t.Fatalf("expected default limit %d", DefaultLimit)
	}
}
