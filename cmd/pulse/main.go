// Package main implements the pulse CLI: AI route analysis, civic incident
// reports and a traffic assistant, with toast notifications in both the
// interactive interface and one-shot commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"citypulse/internal/config"
	"citypulse/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	workspace  string
	configPath string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "City Pulse - AI traffic routes and civic incident reports",
	Long: `City Pulse asks a generative model about traffic in your city.

It compares routes between two places, classifies photos of road hazards
and civic issues for the right department, and answers questions about
your trip. Progress and outcomes are shown as toast notifications.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		config.LoadDotEnv(filepath.Join(ws, ".env"))

		cfg, err = config.Load(resolveConfigPath(ws))
		if err != nil {
			return err
		}
		if apiKey != "" {
			cfg.LLM.APIKey = apiKey
		}
		if timeout > 0 {
			cfg.LLM.Timeout = timeout.String()
		}

		// The interactive interface owns the terminal; it logs to category files only
		if !cmd.HasParent() {
			logger = zap.NewNop()
			return nil
		}
		logger, err = logging.NewBase(cfg.Logging, ws, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.pulse/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Model call timeout (default: from config)")

	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "Print the analysis as JSON")
	routesCmd.Flags().BoolVar(&routesNoSave, "no-save", false, "Do not save the search to history")

	chatCmd.Flags().StringVar(&chatFrom, "from", "", "Route origin to ask about")
	chatCmd.Flags().StringVar(&chatTo, "to", "", "Route destination to ask about")
	chatCmd.Flags().StringVar(&chatPhoto, "photo", "", "Photo to attach")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of searches to show (default: from config)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every saved search")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "Delete one saved search by id")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(incidentCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(usageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return workspace, nil
	}
	ws, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	return ws, nil
}

func resolveConfigPath(ws string) string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath(ws)
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
