package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var ErrUnavailable = errors.New("llm unavailable")

type MessageInput struct {
	SessionID    string
	Text         string
	SystemPrompt string
}

type Responder interface {
	Reply(ctx context.Context, input MessageInput) (string, error)
}

// Configurable is implemented by provider clients that can report whether
// they hold enough credentials to be called at all.
type Configurable interface {
	Configured() bool
}

var (
	thinkBlockPattern = regexp.MustCompile(`(?is)<think\b[^>]*>.*?</think>`)
	thinkFencePattern = regexp.MustCompile("(?is)```think\\s*.*?```")
)

// SanitizeReply drops reasoning blocks some models emit ahead of the answer.
func SanitizeReply(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	trimmed = thinkBlockPattern.ReplaceAllString(trimmed, "")
	trimmed = thinkFencePattern.ReplaceAllString(trimmed, "")
	trimmed = strings.ReplaceAll(trimmed, "<think>", "")
	trimmed = strings.ReplaceAll(trimmed, "</think>", "")
	return strings.TrimSpace(trimmed)
}

func joinSystemPrompt(base, extra string) string {
	base = strings.TrimSpace(base)
	extra = strings.TrimSpace(extra)
	switch {
	case base == "":
		return extra
	case extra == "":
		return base
	default:
		return base + "\n\n" + extra
	}
}

// SystemPrompt merges a client-level prompt with a per-call override.
func SystemPrompt(base string, input MessageInput) string {
	return joinSystemPrompt(base, input.SystemPrompt)
}

// Conversation splits a call into its system prompt and message list. The
// concierge prompt already folds persona, recent turns and the question into
// input.Text, so it travels as a single user message and earlier turns are
// never replayed as separate messages.
func Conversation(base string, input MessageInput) (string, []ChatMessage) {
	system := SystemPrompt(base, input)
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return system, nil
	}
	return system, []ChatMessage{{Role: "user", Content: text}}
}
