// Package anthropic calls the Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dwizi/concierge/internal/llm"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	SystemPrompt string
	MaxTokens    int
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
	if cfg.MaxTokens < 1 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Client{
		cfg:       cfg,
		transport: llm.NewTransport("anthropic", cfg.Timeout, logger),
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Reply returns the first text block. An empty content list is an empty
// reply, which the resolver treats as a failed attempt.
func (c *Client) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: missing CONCIERGE_LLM_API_KEY", llm.ErrUnavailable)
	}
	system, messages := llm.Conversation(c.cfg.SystemPrompt, input)
	if len(messages) == 0 {
		return "", nil
	}

	request := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    system,
		Messages:  messages,
	}
	header := http.Header{}
	header.Set("x-api-key", strings.TrimSpace(c.cfg.APIKey))
	header.Set("anthropic-version", apiVersion)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"

	var response messagesResponse
	if err := c.transport.PostJSON(ctx, endpoint, header, request, &response); err != nil {
		return "", err
	}
	return response.firstText()
}

type messagesRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
	Messages  []llm.ChatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r messagesResponse) firstText() (string, error) {
	if len(r.Content) == 0 {
		return "", nil
	}
	for _, block := range r.Content {
		if block.Type == "text" {
			return llm.SanitizeReply(block.Text), nil
		}
	}
	return "", fmt.Errorf("anthropic response has no text block")
}
