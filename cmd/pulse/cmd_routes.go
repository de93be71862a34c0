package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"citypulse/cmd/pulse/ui"
	"citypulse/internal/pulse"
	"citypulse/internal/toast"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliWidth is the card width for one-shot command output.
const cliWidth = 80

var (
	routesJSON   bool
	routesNoSave bool
)

// routesCmd compares routes between two places
var routesCmd = &cobra.Command{
	Use:   "routes <from> <to>",
	Short: "Compare routes between two places",
	Long: `Asks the model for three to four routes between two places, with
live traffic, incidents and a recommendation score for each. The best
route is highlighted and the search is saved to history.

Example:
  pulse routes Koramangala Whitefield
  pulse routes "MG Road" "Electronic City" --json`,
	Args: cobra.ExactArgs(2),
	RunE: runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) error {
	from, to := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	if from == "" || to == "" {
		return fmt.Errorf("both places are required")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{
		analyst: true,
		history: !routesNoSave,
		notify:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	p := toast.Promise(ctx, s.toaster, func(ctx context.Context) (*pulse.RouteAnalysis, error) {
		return s.analyst.AnalyzeRoutes(ctx, from, to)
	}, ui.RouteToastOptions(from, to))
	analysis, err := p.Await()
	if err != nil {
		return fmt.Errorf("route analysis failed: %w", err)
	}
	logger.Debug("Routes analyzed", zap.String("search", pulse.SearchKey(from, to)), zap.Int("routes", len(analysis.Routes)))

	out := cmd.OutOrStdout()
	if routesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
	} else {
		styles := ui.DefaultStyles()
		fmt.Fprintln(out, ui.RenderAnalysis(styles, analysis, cliWidth))
		fmt.Fprintln(out, ui.RenderStats(styles, pulse.DefaultStats().Apply(analysis)))
	}

	if s.history != nil {
		entry, _, err := s.history.Add(ctx, from, to, analysis)
		if err != nil {
			// The analysis itself succeeded
			logger.Warn("Failed to save search", zap.Error(err))
			s.toaster.Warning("Could not save search to history")
			return nil
		}
		s.toaster.Success("Search saved to history", toast.WithDescription(entry.Key()))
	}
	return nil
}
