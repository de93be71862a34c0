package main

import (
	"context"
	"fmt"
	"strings"

	"citypulse/cmd/pulse/ui"
	"citypulse/internal/pulse"
	"citypulse/internal/toast"

	"github.com/spf13/cobra"
)

// incidentCmd classifies a photographed incident
var incidentCmd = &cobra.Command{
	Use:   "incident <photo> [description...]",
	Short: "Report a road hazard or civic issue from a photo",
	Long: `Classifies a photo of an incident (traffic jam, road hazard, civic
issue, public event) with a one-line summary and the city department
that should handle it.

Example:
  pulse incident pothole.jpg "deep pothole near the bus stop"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIncident,
}

func runIncident(cmd *cobra.Command, args []string) error {
	image, err := pulse.LoadImage(args[0])
	if err != nil {
		return err
	}
	description := strings.TrimSpace(strings.Join(args[1:], " "))

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{analyst: true, notify: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer s.Close()

	p := toast.Promise(ctx, s.toaster, func(ctx context.Context) (*pulse.IncidentReport, error) {
		return s.analyst.AnalyzeIncident(ctx, image, description)
	}, ui.IncidentToastOptions())
	report, err := p.Await()
	if err != nil {
		return fmt.Errorf("incident analysis failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderReport(ui.DefaultStyles(), report))
	return nil
}
