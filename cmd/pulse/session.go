package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"citypulse/internal/analyst"
	"citypulse/internal/config"
	"citypulse/internal/history"
	"citypulse/internal/logging"
	"citypulse/internal/toast"
	"citypulse/internal/usage"

	"go.uber.org/zap"
)

// newAnalyst builds the model-backed analyst. Tests replace it.
var newAnalyst = func(ctx context.Context, c *config.Config, logger *zap.Logger, usage analyst.UsageRecorder) (analyst.Analyst, error) {
	g, err := analyst.NewGemini(ctx, c.LLM.APIKey,
		analyst.WithModel(c.LLM.Model),
		analyst.WithCity(c.City),
		analyst.WithTimeout(c.GetLLMTimeout()),
		analyst.WithLogger(logger),
		analyst.WithUsage(usage),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("Analyst ready", zap.String("analyst", g.Name()))
	return analyst.Deduplicate(g), nil
}

// session holds the services one command runs against.
type session struct {
	workspace string
	loggers   *logging.Loggers
	store     *toast.Store
	toaster   *toast.Toaster
	lifecycle *toast.Lifecycle
	analyst   analyst.Analyst
	history   *history.Store
	usage     *usage.Tracker

	stopNotify func()
}

type sessionOptions struct {
	analyst bool
	history bool
	// notify prints toasts as lines; nil for the interactive interface
	notify io.Writer
}

func openSession(ctx context.Context, opts sessionOptions) (s *session, err error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s = &session{
		workspace: ws,
		loggers:   logging.New(cfg.Logging, ws),
	}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()
	s.loggers.Get(logging.CategoryBoot).Info("Opening session",
		zap.String("workspace", ws),
		zap.Bool("analyst", opts.analyst),
		zap.Bool("history", opts.history))

	s.store = toast.NewStore(
		toast.WithLimit(cfg.Toast.Limit),
		toast.WithLogger(s.loggers.Get(logging.CategoryToast)),
	)
	s.toaster = toast.NewToaster(s.store, toast.WithIDGenerator(toastIDs(cfg.Toast.IDs)))
	s.lifecycle = toast.NewLifecycle(s.store,
		toast.WithDefaultDuration(cfg.GetToastDuration()),
		toast.WithRemoveDelay(cfg.GetToastRemoveDelay()),
		toast.WithLifecycleLogger(s.loggers.Get(logging.CategoryToast)),
	)
	s.lifecycle.Start()

	if opts.notify != nil {
		s.stopNotify = s.store.Subscribe(newLineNotifier(opts.notify).observe)
	}

	if opts.analyst {
		if err := cfg.Validate(); err != nil {
			if errors.Is(err, config.ErrMissingAPIKey) {
				return nil, fmt.Errorf("%w; pass --api-key or add it to .env", err)
			}
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		s.usage, err = usage.NewTracker(ws, usage.WithLogger(s.loggers.Get(logging.CategoryAnalyst)))
		if err != nil {
			return nil, err
		}
		s.analyst, err = newAnalyst(ctx, cfg, s.loggers.Get(logging.CategoryAnalyst), s.usage)
		if err != nil {
			return nil, fmt.Errorf("failed to create analyst: %w", err)
		}
	}

	if opts.history {
		s.history, err = history.Open(cfg.DatabasePath(ws),
			history.WithLogger(s.loggers.Get(logging.CategoryHistory)))
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Close stops timers and releases every resource. Safe on a partial session.
func (s *session) Close() {
	if s.lifecycle != nil {
		s.lifecycle.Stop()
	}
	if s.stopNotify != nil {
		s.stopNotify()
	}
	if s.store != nil {
		s.store.Close()
	}
	if s.usage != nil {
		if err := s.usage.Flush(); err != nil {
			s.loggers.Get(logging.CategoryAnalyst).Warn("Failed to save usage", zap.Error(err))
		}
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.loggers.Get(logging.CategoryHistory).Warn("Failed to close history", zap.Error(err))
		}
	}
	s.loggers.Close()
}

func toastIDs(kind string) toast.IDGenerator {
	if kind == "uuid" {
		return toast.UUIDIDs{}
	}
	return toast.NewCounterIDs()
}
