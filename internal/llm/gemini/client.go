// Package gemini calls the Generative Language API generateContent method.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dwizi/concierge/internal/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-pro"
	apiKeyHeader   = "x-goog-api-key"
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
		transport: llm.NewTransport("gemini", cfg.Timeout, logger),
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Reply sends the assembled concierge prompt as one user part. The persona
// and recent turns are already inside input.Text.
func (c *Client) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: missing CONCIERGE_LLM_API_KEY", llm.ErrUnavailable)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", nil
	}

	request := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
	}
	if systemPrompt := llm.SystemPrompt(c.cfg.SystemPrompt, input); systemPrompt != "" {
		request.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}

	header := http.Header{}
	header.Set(apiKeyHeader, strings.TrimSpace(c.cfg.APIKey))
	var response generateResponse
	if err := c.transport.PostJSON(ctx, c.endpoint(), header, request, &response); err != nil {
		return "", err
	}
	return response.text()
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(strings.TrimSpace(c.cfg.Model)),
	)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

var errNoCandidates = errors.New("gemini response returned no candidates")

func (r generateResponse) text() (string, error) {
	if r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", errNoCandidates
	}
	var builder strings.Builder
	for _, item := range r.Candidates[0].Content.Parts {
		builder.WriteString(item.Text)
	}
	return llm.SanitizeReply(builder.String()), nil
}
