// Package ui provides the terminal interface for pulse: the route dashboard,
// the assistant pane and the toast overlay, with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"citypulse/internal/pulse"
	"citypulse/internal/toast"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f5f6f8")
	LightForeground = lipgloss.Color("#111827") // Gray 900
	LightPrimary    = lipgloss.Color("#4f46e5") // Indigo 600
	LightMuted      = lipgloss.Color("#6b7280") // Gray 500
	LightBorder     = lipgloss.Color("#d1d5db")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#111827")
	DarkForeground = lipgloss.Color("#f3f4f6")
	DarkPrimary    = lipgloss.Color("#818cf8") // Indigo 400
	DarkMuted      = lipgloss.Color("#9ca3af")
	DarkBorder     = lipgloss.Color("#374151")
	DarkCard       = lipgloss.Color("#1f2937")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#ef4444")
	Success     = lipgloss.Color("#22c55e")
	Warning     = lipgloss.Color("#eab308")
	Info        = lipgloss.Color("#3b82f6")
	Loading     = lipgloss.Color("#a78bfa")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG or PULSE_DARK_MODE=1, light
// otherwise.
func DetectTheme() Theme {
	// Format is usually "foreground;background"
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return DarkTheme()
		}
	}
	if os.Getenv("PULSE_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Sidebar lipgloss.Style
	Pane    lipgloss.Style
	Focused lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Chat
	UserMessage lipgloss.Style
	AIMessage   lipgloss.Style

	// Cards
	Card     lipgloss.Style
	StatCard lipgloss.Style
	Badge    lipgloss.Style

	// Toasts
	Toast        lipgloss.Style
	ToastClosing lipgloss.Style
	ToastTitle   lipgloss.Style
	ToastDesc    lipgloss.Style
	ActionButton lipgloss.Style
	CancelButton lipgloss.Style

	// Named styles selected by toast class names
	Named map[string]lipgloss.Style

	Spinner lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		AIMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Primary),

		Card: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		StatCard: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Toast: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()),

		ToastClosing: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1).
			Border(lipgloss.HiddenBorder()).
			Faint(true),

		ToastTitle: lipgloss.NewStyle().
			Bold(true),

		ToastDesc: lipgloss.NewStyle().
			Foreground(theme.Muted),

		ActionButton: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),

		CancelButton: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Named: map[string]lipgloss.Style{
			"accent": lipgloss.NewStyle().Foreground(theme.Primary),
			"muted":  lipgloss.NewStyle().Foreground(theme.Muted),
			"strong": lipgloss.NewStyle().Bold(true),
		},

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// ToastColor returns the accent color for a toast type.
func ToastColor(t toast.Type) lipgloss.Color {
	switch t {
	case toast.TypeSuccess:
		return Success
	case toast.TypeInfo:
		return Info
	case toast.TypeWarning:
		return Warning
	case toast.TypeError:
		return Destructive
	case toast.TypeLoading:
		return Loading
	case toast.TypeAction:
		return LightPrimary
	case toast.TypeNormal:
		return LightMuted
	}
	return LightMuted
}

// ToastIcon returns the glyph shown before a toast title.
func ToastIcon(t toast.Type) string {
	switch t {
	case toast.TypeSuccess:
		return "✓"
	case toast.TypeInfo:
		return "ℹ"
	case toast.TypeWarning:
		return "⚠"
	case toast.TypeError:
		return "✗"
	case toast.TypeLoading:
		return "◌"
	case toast.TypeAction:
		return "➜"
	case toast.TypeNormal:
		return "•"
	}
	return "•"
}

// TrafficColor maps a traffic condition to a status color.
func TrafficColor(c pulse.TrafficCondition) lipgloss.Color {
	switch c {
	case pulse.TrafficLight:
		return Success
	case pulse.TrafficModerate:
		return Warning
	case pulse.TrafficHeavy:
		return Destructive
	}
	return LightMuted
}

// SeverityColor maps an incident severity to a status color.
func SeverityColor(s pulse.Severity) lipgloss.Color {
	switch s {
	case pulse.SeverityLow:
		return Info
	case pulse.SeverityMedium:
		return Warning
	case pulse.SeverityHigh:
		return Destructive
	}
	return LightMuted
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
