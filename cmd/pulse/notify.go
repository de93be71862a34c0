package main

import (
	"fmt"
	"io"

	"citypulse/cmd/pulse/ui"
	"citypulse/internal/toast"

	"github.com/charmbracelet/lipgloss"
)

// lineNotifier prints toasts as they appear or change, one line each,
// oldest first. Closing and removal print nothing.
type lineNotifier struct {
	w    io.Writer
	seen map[toast.ID]string
}

func newLineNotifier(w io.Writer) *lineNotifier {
	return &lineNotifier{w: w, seen: make(map[toast.ID]string)}
}

// observe is a store listener. The store never runs it concurrently.
func (n *lineNotifier) observe(state toast.State) {
	resident := make(map[toast.ID]bool, state.Len())
	for i := len(state.Toasts) - 1; i >= 0; i-- {
		t := state.Toasts[i]
		resident[t.ID] = true
		if !t.Open {
			continue
		}
		line := n.format(t)
		if n.seen[t.ID] == line {
			continue
		}
		n.seen[t.ID] = line
		fmt.Fprintln(n.w, line)
	}
	for id := range n.seen {
		if !resident[id] {
			delete(n.seen, id)
		}
	}
}

func (n *lineNotifier) format(t toast.Toast) string {
	icon := t.Icon
	if icon == "" {
		icon = ui.ToastIcon(t.Type)
	}
	line := lipgloss.NewStyle().Foreground(ui.ToastColor(t.Type)).Render(icon) + " " + t.Title
	if t.Description != "" {
		line += ": " + t.Description
	}
	if t.Action != nil {
		line += " [" + t.Action.Label + "]"
	}
	return line
}
