package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/concierge/internal/health"
	"github.com/robfig/cron/v3"
)

const DefaultSweepSpec = "@every 1m"

// Sweeper runs Manager.Sweep on a cron schedule.
type Sweeper struct {
	manager  *Manager
	spec     string
	logger   *slog.Logger
	reporter health.Reporter
}

func NewSweeper(manager *Manager, spec string, logger *slog.Logger) *Sweeper {
	if strings.TrimSpace(spec) == "" {
		spec = DefaultSweepSpec
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		manager:  manager,
		spec:     strings.TrimSpace(spec),
		logger:   logger.With("component", "session-sweeper"),
		reporter: health.Nop{},
	}
}

func (s *Sweeper) SetHealthReporter(reporter health.Reporter) {
	if reporter != nil {
		s.reporter = reporter
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(s.spec, s.run); err != nil {
		s.reporter.Degraded(health.Sweeper, "invalid schedule", err)
		return fmt.Errorf("schedule session sweep %q: %w", s.spec, err)
	}
	scheduler.Start()
	s.reporter.Healthy(health.Sweeper, "scheduled "+s.spec)
	s.logger.Info("session sweeper started", "spec", s.spec)

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	s.reporter.Stopped(health.Sweeper, "stopped")
	s.logger.Info("session sweeper stopped")
	return nil
}

func (s *Sweeper) run() {
	removed := s.manager.Sweep(time.Now().UTC())
	s.reporter.Healthy(health.Sweeper, fmt.Sprintf("swept %d sessions, %d active", removed, s.manager.Len()))
}
