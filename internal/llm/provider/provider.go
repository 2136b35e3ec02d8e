// Package provider selects the remote generation client from configuration.
package provider

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/concierge/internal/llm"
	"github.com/dwizi/concierge/internal/llm/anthropic"
	"github.com/dwizi/concierge/internal/llm/gemini"
	"github.com/dwizi/concierge/internal/llm/openai"
)

type Config struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New returns the configured client, or nil when the provider is "none" or
// lacks credentials. A nil responder disables the remote tier.
func New(cfg Config, logger *slog.Logger) (llm.Responder, error) {
	var client interface {
		llm.Responder
		llm.Configurable
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		client = gemini.New(gemini.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	case "openai":
		client = openai.New(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	case "anthropic":
		client = anthropic.New(anthropic.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	case "none", "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if !client.Configured() {
		return nil, nil
	}
	return client, nil
}
