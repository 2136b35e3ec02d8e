package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dwizi/concierge/internal/health"
	"github.com/dwizi/concierge/internal/history"
	"github.com/dwizi/concierge/internal/knowledge"
	"github.com/dwizi/concierge/internal/llm"
)

const (
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = time.Second
	DefaultContextTurns = 4

	BusyNotice   = "I'm still processing your previous message. Please wait a moment."
	FallbackText = "I apologize, but I'm currently experiencing connectivity issues. " +
		"Please email us at contact@azayd.com or call us at +91 XXXXXXXXXX " +
		"for immediate assistance. Alternatively, you can try rephrasing your question."
)

type Source string

const (
	SourceLocal    Source = "local"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
	SourceBusy     Source = "busy"
)

// Outcome describes how a single submission was answered. Attempts counts
// remote invocations, zero when the remote tier was not reached.
type Outcome struct {
	Reply    string
	Source   Source
	Attempts int
}

var (
	errEmptyReply     = errors.New("remote reply was empty")
	errGeneratorPanic = errors.New("remote generator panicked")
)

type Config struct {
	// MaxRetries is the number of extra attempts after the first remote
	// call. Zero means the default; negative disables retries.
	MaxRetries   int
	RetryDelay   time.Duration
	ContextTurns int
	HistoryLimit int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:   DefaultMaxRetries,
		RetryDelay:   DefaultRetryDelay,
		ContextTurns: DefaultContextTurns,
		HistoryLimit: history.DefaultLimit,
	}
}

type Options struct {
	Config    Config
	Knowledge *knowledge.Base
	// Generator is the remote tier. Nil disables it.
	Generator llm.Responder
	Persona   func() string
	SessionID string
	Health    health.Reporter
	Logger    *slog.Logger
	Sleep     func(context.Context, time.Duration)
}

const (
	stateIdle int32 = iota
	stateResolving
)

type Resolver struct {
	cfg       Config
	knowledge *knowledge.Base
	generator llm.Responder
	persona   func() string
	sessionID string
	history   *history.History
	health    health.Reporter
	logger    *slog.Logger
	sleep     func(context.Context, time.Duration)
	state     atomic.Int32
}

func New(opts Options) *Resolver {
	cfg := opts.Config
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.ContextTurns < 1 {
		cfg.ContextTurns = DefaultContextTurns
	}
	base := opts.Knowledge
	if base == nil {
		base = knowledge.Default()
	}
	persona := opts.Persona
	if persona == nil {
		persona = func() string { return "" }
	}
	reporter := opts.Health
	if reporter == nil {
		reporter = health.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger = logger.With("component", "resolver")
	if opts.SessionID != "" {
		logger = logger.With("session_id", opts.SessionID)
	}
	return &Resolver{
		cfg:       cfg,
		knowledge: base,
		generator: opts.Generator,
		persona:   persona,
		sessionID: opts.SessionID,
		history:   history.New(cfg.HistoryLimit),
		health:    reporter,
		logger:    logger,
		sleep:     sleep,
	}
}

// Submit answers message and never fails. A call made while another one is
// still resolving gets BusyNotice.
func (r *Resolver) Submit(ctx context.Context, message string) string {
	return r.Resolve(ctx, message).Reply
}

func (r *Resolver) Resolve(ctx context.Context, message string) Outcome {
	if !r.state.CompareAndSwap(stateIdle, stateResolving) {
		r.logger.Info("submission rejected while resolving", "source", SourceBusy)
		return Outcome{Reply: BusyNotice, Source: SourceBusy}
	}
	defer r.state.Store(stateIdle)

	// Resolution runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if reply, ok := r.knowledge.Match(message); ok {
		r.logger.Debug("answered from knowledge base", "source", SourceLocal)
		return Outcome{Reply: reply, Source: SourceLocal}
	}
	if r.generator == nil {
		r.logger.Debug("remote tier not configured", "source", SourceFallback)
		return Outcome{Reply: FallbackText, Source: SourceFallback}
	}

	r.history.Append(history.Turn{Role: history.RoleUser, Content: message})

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		attempts++
		reply, err := r.generate(ctx, message)
		if err == nil && reply == "" {
			err = errEmptyReply
		}
		if err == nil {
			r.history.Append(history.Turn{Role: history.RoleAssistant, Content: reply})
			r.health.Healthy(health.RemoteTier, "reply received")
			r.logger.Debug("answered by remote tier", "source", SourceRemote, "attempt", attempt)
			return Outcome{Reply: reply, Source: SourceRemote, Attempts: attempts}
		}
		lastErr = err
		r.logger.Warn("remote attempt failed", "attempt", attempt, "error", err)
		if attempt < r.cfg.MaxRetries {
			r.sleep(ctx, r.cfg.RetryDelay*time.Duration(attempt+1))
		}
	}

	r.health.Degraded(health.RemoteTier, "retries exhausted", lastErr)
	r.logger.Error("remote tier exhausted", "attempts", attempts, "source", SourceFallback, "error", lastErr)
	return Outcome{Reply: FallbackText, Source: SourceFallback, Attempts: attempts}
}

func (r *Resolver) generate(ctx context.Context, message string) (reply string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			reply = ""
			err = fmt.Errorf("%w: %v", errGeneratorPanic, recovered)
		}
	}()
	prompt := BuildPrompt(r.persona(), r.history.RecentContext(r.cfg.ContextTurns), message)
	raw, err := r.generator.Reply(ctx, llm.MessageInput{
		SessionID: r.sessionID,
		Text:      prompt,
	})
	if err != nil {
		return "", err
	}
	return CleanReply(raw), nil
}

// Busy reports whether a resolution is in flight.
func (r *Resolver) Busy() bool {
	return r.state.Load() == stateResolving
}

func (r *Resolver) History() []history.Turn {
	return r.history.Turns()
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// CleanReply trims a remote reply and drops a leading speaker label.
func CleanReply(raw string) string {
	text := strings.TrimSpace(raw)
	for _, label := range []string{"assistant:", "bot:"} {
		if len(text) >= len(label) && strings.EqualFold(text[:len(label)], label) {
			text = strings.TrimSpace(text[len(label):])
			break
		}
	}
	return text
}
