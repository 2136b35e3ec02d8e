package llm

import "testing"

func TestSanitizeReplyStripsThinkBlocks(t *testing.T) {
	got := SanitizeReply("<think>\ninternal reasoning\n</think>\n\nHey there! What's up?")
	if got != "Hey there! What's up?" {
		t.Fatalf("unexpected sanitized reply: %q", got)
	}
	got = SanitizeReply("```think\nplan\n```\nAnswer")
	if got != "Answer" {
		t.Fatalf("unexpected sanitized fenced reply: %q", got)
	}
	if SanitizeReply("   ") != "" {
		t.Fatal("expected blank input to stay empty")
	}
}

func TestSystemPromptMerge(t *testing.T) {
	if got := SystemPrompt("base", MessageInput{SystemPrompt: "extra"}); got != "base\n\nextra" {
		t.Fatalf("unexpected merge: %q", got)
	}
	if got := SystemPrompt("", MessageInput{SystemPrompt: " extra "}); got != "extra" {
		t.Fatalf("unexpected merge: %q", got)
	}
	if got := SystemPrompt(" base ", MessageInput{}); got != "base" {
		t.Fatalf("unexpected merge: %q", got)
	}
}

func TestConversationCarriesPromptAsOneUserMessage(t *testing.T) {
	prompt := "Persona\n\nPrevious conversation:\nuser: hi\n\nCurrent question: hi"
	system, messages := Conversation("base", MessageInput{Text: " " + prompt + " "})
	if system != "base" {
		t.Fatalf("unexpected system prompt: %q", system)
	}
	if len(messages) != 1 || messages[0].Role != "user" || messages[0].Content != prompt {
		t.Fatalf("unexpected messages: %+v", messages)
	}
	if _, messages := Conversation("", MessageInput{Text: "  "}); messages != nil {
		t.Fatalf("expected no messages for blank text, got %+v", messages)
	}
}
