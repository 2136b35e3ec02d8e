package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
}

// ChatMessage is one role-tagged message in a chat-style provider payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transport posts JSON to a provider. Credentials belong in headers so they
// never appear in a request URL or in the errors that quote it.
type Transport struct {
	provider   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewTransport(provider string, timeout time.Duration, logger *slog.Logger) *Transport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// PostJSON sends payload to endpoint and decodes a successful body into out.
func (t *Transport) PostJSON(ctx context.Context, endpoint string, header http.Header, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", t.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", t.provider, err)
	}
	for name, values := range header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", t.provider, err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", t.provider, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		t.logger.Error("provider request failed", "provider", t.provider, "status", res.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return &StatusError{Provider: t.provider, StatusCode: res.StatusCode}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", t.provider, err)
	}
	return nil
}
