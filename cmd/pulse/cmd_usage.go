package main

import (
	"fmt"
	"sort"

	"citypulse/internal/usage"

	"github.com/spf13/cobra"
)

// usageCmd shows model token usage
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show model token usage",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	tracker, err := usage.NewTracker(ws)
	if err != nil {
		return err
	}
	stats := tracker.Stats()

	out := cmd.OutOrStdout()
	if stats.Total.Calls == 0 {
		fmt.Fprintln(out, "No model calls recorded yet.")
		return nil
	}
	fmt.Fprintf(out, "Total: %d calls, %d tokens (%d in, %d out)\n",
		stats.Total.Calls, stats.Total.Total, stats.Total.Input, stats.Total.Output)
	printCounts(cmd, "By operation", stats.ByOperation)
	printCounts(cmd, "By model", stats.ByModel)
	printCounts(cmd, "By day", stats.ByDay)
	return nil
}

func printCounts(cmd *cobra.Command, title string, counts map[string]usage.TokenCounts) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", title)
	for _, k := range keys {
		c := counts[k]
		fmt.Fprintf(out, "  %-20s %6d calls %10d tokens\n", k, c.Calls, c.Total)
	}
}
