package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"citypulse/cmd/pulse/ui"
	"citypulse/internal/config"
	"citypulse/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{analyst: true, history: true})
	if err != nil {
		return err
	}
	defer s.Close()

	uiLogger := s.loggers.Get(logging.CategoryUI)
	changes := watchConfig(ctx, resolveConfigPath(s.workspace), s.loggers.Get(logging.CategoryConfig))

	model := ui.New(ui.Deps{
		Context:       ctx,
		Analyst:       s.analyst,
		History:       s.history,
		Toaster:       s.toaster,
		Lifecycle:     s.lifecycle,
		Logger:        uiLogger,
		ConfigChanges: changes,
		HistoryLimit:  cfg.History.ListLimit,
	})
	defer model.Close()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interface failed: %w", err)
	}
	return nil
}

// watchConfig streams reloaded configuration until ctx is done. It returns
// nil when the config directory does not exist.
func watchConfig(ctx context.Context, path string, log *zap.Logger) <-chan *config.Config {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil
	}
	w, err := config.NewWatcher(path)
	if err != nil {
		log.Warn("Config watching disabled", zap.Error(err))
		return nil
	}

	changes := make(chan *config.Config, 1)
	go func() {
		defer close(changes)
		w.Run(ctx, func(c *config.Config, err error) {
			if err != nil {
				log.Warn("Config reload failed", zap.Error(err))
				return
			}
			log.Info("Config reloaded", zap.String("path", path))
			select {
			case changes <- c:
			case <-ctx.Done():
			}
		})
	}()
	return changes
}
