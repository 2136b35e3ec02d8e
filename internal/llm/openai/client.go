// Package openai calls a chat completions endpoint. Local OpenAI-compatible
// servers such as ollama work without a key.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dwizi/concierge/internal/llm"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	SystemPrompt string
}

type Client struct {
	cfg       Config
	transport *llm.Transport
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	return &Client{
		cfg:       cfg,
		transport: llm.NewTransport("openai", cfg.Timeout, logger),
	}
}

func (c *Client) Configured() bool {
	return isLocalEndpoint(c.cfg.BaseURL) || strings.TrimSpace(c.cfg.APIKey) != ""
}

func (c *Client) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: missing API key for %s", llm.ErrUnavailable, c.cfg.BaseURL)
	}
	system, messages := llm.Conversation(c.cfg.SystemPrompt, input)
	if len(messages) == 0 {
		return "", nil
	}
	if system != "" {
		messages = append([]llm.ChatMessage{{Role: "system", Content: system}}, messages...)
	}

	request := completionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		// The session id lets the provider group a visitor's requests.
		User: strings.TrimSpace(input.SessionID),
	}
	header := http.Header{}
	if apiKey := strings.TrimSpace(c.cfg.APIKey); apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	var response completionResponse
	if err := c.transport.PostJSON(ctx, endpoint, header, request, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errNoChoices
	}
	return llm.SanitizeReply(response.Choices[0].Message.Content), nil
}

var errNoChoices = errors.New("openai response returned no choices")

type completionRequest struct {
	Model    string            `json:"model"`
	Messages []llm.ChatMessage `json:"messages"`
	User     string            `json:"user,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message llm.ChatMessage `json:"message"`
	} `json:"choices"`
}

func isLocalEndpoint(baseURL string) bool {
	lower := strings.ToLower(baseURL)
	for _, marker := range []string{"localhost", "127.0.0.1", "ollama"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
