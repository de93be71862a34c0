package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"citypulse/internal/toast"
)

// ToastsMsg carries a new store state into the program.
type ToastsMsg toast.State

// ToasterModel renders the resident toasts, newest on top. It holds no
// state of its own beyond the last snapshot it was given.
type ToasterModel struct {
	state  toast.State
	styles Styles
	width  int
}

// NewToasterModel creates an empty toaster view.
func NewToasterModel(styles Styles) ToasterModel {
	return ToasterModel{styles: styles, width: 48}
}

// SetWidth sets the toast width.
func (m *ToasterModel) SetWidth(w int) {
	if w > 0 {
		m.width = w
	}
}

// Update consumes ToastsMsg and ignores everything else.
func (m ToasterModel) Update(msg tea.Msg) ToasterModel {
	if s, ok := msg.(ToastsMsg); ok {
		m.state = toast.State(s)
	}
	return m
}

// State returns the snapshot being rendered.
func (m ToasterModel) State() toast.State {
	return m.state
}

// Newest returns the newest open toast.
func (m ToasterModel) Newest() (toast.Toast, bool) {
	for _, t := range m.state.Toasts {
		if t.Open {
			return t, true
		}
	}
	return toast.Toast{}, false
}

// View stacks the toasts vertically. Closed toasts still waiting for removal
// render faded.
func (m ToasterModel) View() string {
	if m.state.Len() == 0 {
		return ""
	}
	views := make([]string, 0, m.state.Len())
	for _, t := range m.state.Toasts {
		views = append(views, m.renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

func (m ToasterModel) renderToast(t toast.Toast) string {
	s := m.styles
	icon := t.Icon
	if icon == "" {
		icon = ToastIcon(t.Type)
	}
	color := ToastColor(t.Type)

	iconStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := s.ToastTitle
	if named, ok := s.Named[t.Classes.Title]; ok {
		titleStyle = titleStyle.Inherit(named)
	}
	if named, ok := s.Named[t.Classes.Icon]; ok {
		iconStyle = iconStyle.Inherit(named)
	}

	lines := []string{iconStyle.Render(icon) + " " + titleStyle.Render(t.Title)}
	if t.Description != "" {
		desc := s.ToastDesc
		if named, ok := s.Named[t.Classes.Description]; ok {
			desc = desc.Inherit(named)
		}
		lines = append(lines, "  "+desc.Render(t.Description))
	}

	var buttons []string
	if t.Action != nil {
		buttons = append(buttons, s.ActionButton.Render(t.Action.Label+" ^Y"))
	}
	if t.Cancel != nil {
		buttons = append(buttons, s.CancelButton.Render(t.Cancel.Label))
	}
	if len(buttons) > 0 {
		lines = append(lines, "  "+strings.Join(buttons, " "))
	}

	body := strings.Join(lines, "\n")
	if !t.Open {
		return s.ToastClosing.Width(m.width).Render(body)
	}

	box := s.Toast.BorderForeground(color).Width(m.width)
	if t.Important {
		box = box.BorderStyle(lipgloss.ThickBorder())
	}
	if named, ok := s.Named[t.Classes.Toast]; ok {
		box = box.Inherit(named)
	}
	return box.Render(body)
}
