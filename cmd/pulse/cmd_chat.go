package main

import (
	"fmt"
	"strings"

	"citypulse/cmd/pulse/ui"
	"citypulse/internal/pulse"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chatFrom  string
	chatTo    string
	chatPhoto string
)

// chatCmd asks the traffic assistant one question
var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Ask the traffic assistant",
	Long: `Asks the assistant one question about traffic in your city. Pass
--from and --to to ask about a specific route, and --photo to attach
a picture.

Example:
  pulse chat --from Koramangala --to Whitefield "is it better to leave now?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return fmt.Errorf("message is required")
	}

	var route *pulse.RouteContext
	switch {
	case chatFrom != "" && chatTo != "":
		route = &pulse.RouteContext{From: chatFrom, To: chatTo}
	case chatFrom != "" || chatTo != "":
		return fmt.Errorf("--from and --to must be given together")
	}

	var image *pulse.Image
	if chatPhoto != "" {
		img, err := pulse.LoadImage(chatPhoto)
		if err != nil {
			return err
		}
		image = img
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{analyst: true, notify: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer s.Close()

	reply, err := s.analyst.Chat(ctx, message, route, image)
	if err != nil {
		logger.Warn("Assistant failed", zap.Error(err))
		s.toaster.Error(ui.ChatFailureToast)
		return fmt.Errorf("%s: %w", pulse.ChatFailure, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(reply))
	return nil
}

func renderMarkdown(text string) string {
	style := "light"
	if ui.DefaultStyles().Theme.IsDark {
		style = "dark"
	}
	out, err := glamour.Render(text, style)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
