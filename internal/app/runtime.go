package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dwizi/concierge/internal/config"
	"github.com/dwizi/concierge/internal/health"
	"github.com/dwizi/concierge/internal/httpapi"
	"github.com/dwizi/concierge/internal/knowledge"
	"github.com/dwizi/concierge/internal/llm"
	"github.com/dwizi/concierge/internal/llm/provider"
	"github.com/dwizi/concierge/internal/persona"
	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/session"
	"github.com/dwizi/concierge/internal/store"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	version    string
	store      *store.Store
	knowledge  *knowledge.Base
	persona    *persona.Persona
	generator  llm.Responder
	sessions   *session.Manager
	sweeper    *session.Sweeper
	health     *health.Registry
	httpServer *http.Server
}

func New(cfg config.Config, version string, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	registry := health.NewRegistry()
	registry.Starting(health.Store, "opening")
	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}
	registry.Healthy(health.Store, "migrated")

	personaText, err := persona.New(cfg.PersonaFile, logger.With("component", "persona"))
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	generator, err := provider.New(provider.Config{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Timeout:  time.Duration(cfg.LLMTimeoutSec) * time.Second,
	}, logger.With("component", "llm-"+cfg.LLMProvider))
	if err != nil {
		sqlStore.Close()
		return nil, err
	}
	if generator == nil {
		registry.Disabled(health.RemoteTier, "no remote provider configured")
	} else {
		registry.Healthy(health.RemoteTier, "provider "+cfg.LLMProvider)
	}

	base := knowledge.Default()
	resolverCfg := resolverConfig(cfg)
	factory := func(sessionID string) *resolver.Resolver {
		return resolver.New(resolver.Options{
			Config:    resolverCfg,
			Knowledge: base,
			Generator: generator,
			Persona:   personaText.Text,
			SessionID: sessionID,
			Health:    registry,
			Logger:    logger,
		})
	}
	sessions := session.NewManager(session.Config{
		IdleTimeout: time.Duration(cfg.SessionIdleMinutes) * time.Minute,
	}, factory, sqlStore, logger)
	sweeper := session.NewSweeper(sessions, cfg.SessionSweepSpec, logger)
	sweeper.SetHealthReporter(registry)

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config:   cfg,
		Store:    sqlStore,
		Sessions: sessions,
		Health:   registry,
		Logger:   logger.With("component", "api"),
		Version:  version,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		version:    version,
		store:      sqlStore,
		knowledge:  base,
		persona:    personaText,
		generator:  generator,
		sessions:   sessions,
		sweeper:    sweeper,
		health:     registry,
		httpServer: httpServer,
	}, nil
}

// resolverConfig maps environment settings onto resolver settings. A
// configured retry count of zero means no retries.
func resolverConfig(cfg config.Config) resolver.Config {
	out := resolver.Config{
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		ContextTurns: cfg.ContextTurns,
		HistoryLimit: cfg.HistoryLimit,
	}
	if out.MaxRetries == 0 {
		out.MaxRetries = -1
	}
	return out
}

func (r *Runtime) Sessions() *session.Manager {
	return r.sessions
}

func (r *Runtime) Knowledge() *knowledge.Base {
	return r.knowledge
}

func (r *Runtime) Store() *store.Store {
	return r.store
}

func (r *Runtime) Health() *health.Registry {
	return r.health
}

// RemoteEnabled reports whether a remote provider is wired into resolvers.
func (r *Runtime) RemoteEnabled() bool {
	return r.generator != nil
}

func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	r.health.Stopped(health.Store, "closed")
	return r.store.Close()
}
