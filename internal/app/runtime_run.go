package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwizi/concierge/internal/health"
)

// Run serves HTTP and runs the background services until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("concierge runtime starting", "addr", r.cfg.HTTPAddr, "provider", r.cfg.LLMProvider, "remote", r.RemoteEnabled())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.sweeper.Start(groupCtx)
	})
	group.Go(func() error {
		return runMonitored(groupCtx, r.health, health.Persona, func(runCtx context.Context) error {
			return r.persona.Watch(runCtx)
		})
	})
	group.Go(func() error {
		return runMonitored(groupCtx, r.health, health.API, func(runCtx context.Context) error {
			err := r.httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// RunBackground runs the services that in-process clients need without
// serving HTTP.
func (r *Runtime) RunBackground(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.sweeper.Start(groupCtx)
	})
	group.Go(func() error {
		return runMonitored(groupCtx, r.health, health.Persona, func(runCtx context.Context) error {
			return r.persona.Watch(runCtx)
		})
	})
	return group.Wait()
}

func runMonitored(
	ctx context.Context,
	reporter health.Reporter,
	component string,
	run func(context.Context) error,
) error {
	if run == nil {
		return nil
	}
	if reporter == nil {
		reporter = health.Nop{}
	}
	reporter.Starting(component, "starting")
	reporter.Healthy(component, "running")

	err := run(ctx)
	if err != nil && ctx.Err() == nil {
		reporter.Degraded(component, "component failed", err)
		return err
	}
	reporter.Stopped(component, "stopped")
	return err
}
