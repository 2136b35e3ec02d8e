package provider

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dwizi/concierge/internal/llm/anthropic"
	"github.com/dwizi/concierge/internal/llm/gemini"
	"github.com/dwizi/concierge/internal/llm/openai"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSelectsProvider(t *testing.T) {
	responder, err := New(Config{APIKey: "key"}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := responder.(*gemini.Client); !ok {
		t.Fatalf("expected gemini default, got %T", responder)
	}

	responder, err = New(Config{Provider: "OpenAI", APIKey: "key"}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := responder.(*openai.Client); !ok {
		t.Fatalf("expected openai client, got %T", responder)
	}

	responder, err = New(Config{Provider: "anthropic", APIKey: "key"}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := responder.(*anthropic.Client); !ok {
		t.Fatalf("expected anthropic client, got %T", responder)
	}
}

func TestNewWithoutCredentialsDisablesRemoteTier(t *testing.T) {
	for _, name := range []string{"gemini", "anthropic", "openai", "none"} {
		responder, err := New(Config{Provider: name}, discardLogger())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if responder != nil {
			t.Fatalf("%s: expected nil responder, got %T", name, responder)
		}
	}
}

func TestNewLocalOpenAICompatibleNeedsNoKey(t *testing.T) {
	responder, err := New(Config{Provider: "openai", BaseURL: "http://localhost:11434/v1"}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if responder == nil {
		t.Fatal("expected local endpoint to be enabled")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "mystery"}, discardLogger()); err == nil {
		t.Fatal("expected error")
	}
}
