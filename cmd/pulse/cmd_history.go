package main

import (
	"fmt"
	"strings"

	"citypulse/internal/toast"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyClear  bool
	historyDelete string
)

// historyCmd lists and manages saved route searches
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved route searches",
	Long: `Lists past route searches, most recent first. Searching the same
pair of places again refreshes its routes instead of adding a duplicate.

Example:
  pulse history -n 5
  pulse history --delete <id>
  pulse history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{history: true, notify: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	switch {
	case historyClear:
		n, err := s.history.Clear(ctx)
		if err != nil {
			return err
		}
		s.toaster.Success(fmt.Sprintf("Cleared %d saved searches", n))
		return nil

	case historyDelete != "":
		entry, err := s.history.Get(ctx, historyDelete)
		if err != nil {
			return err
		}
		if err := s.history.Delete(ctx, entry.ID); err != nil {
			return err
		}
		s.toaster.Success("Search removed from history", toast.WithDescription(entry.Key()))
		return nil
	}

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.History.ListLimit
	}
	entries, err := s.history.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved searches yet. Try: pulse routes <from> <to>")
		return nil
	}

	fmt.Fprintln(out, "Travel History")
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for i, e := range entries {
		best := "-"
		if r, ok := e.Analysis.BestRoute(); ok {
			best = r.RouteName
		}
		fmt.Fprintf(out, "%2d. %-40s %s\n", i+1, e.Key(), e.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "    best: %s  id: %s\n", best, e.ID)
	}
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "Total: %d searches\n", len(entries))
	return nil
}
