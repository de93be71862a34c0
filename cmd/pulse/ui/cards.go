package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"citypulse/internal/history"
	"citypulse/internal/pulse"
)

// RenderStats renders the dashboard strip.
func RenderStats(s Styles, stats pulse.Stats) string {
	cells := []struct{ title, value, unit string }{
		{"Time Saved", fmt.Sprintf("%.1f", stats.TimeSavedHours), "hours"},
		{"Distance", fmt.Sprintf("%.0f", stats.DistanceKm), "km"},
		{"Fuel Saved", fmt.Sprintf("%.0f", stats.FuelSavedLitres), "litres"},
		{"Money Saved", fmt.Sprintf("%.0f", stats.MoneySaved), "INR"},
		{"Incidents Avoided", fmt.Sprintf("%d", stats.IncidentsAvoided), "total"},
	}
	views := make([]string, len(cells))
	for i, c := range cells {
		views[i] = s.StatCard.Render(
			s.Muted.Render(c.title) + "\n" + s.Bold.Render(c.value) + " " + s.Muted.Render(c.unit))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// RenderRoute renders one route card. best marks the recommended route.
func RenderRoute(s Styles, r pulse.Route, best bool, width int) string {
	var b strings.Builder

	name := s.Title.Render(r.RouteName)
	if best {
		name += " " + s.Badge.Background(Success).Render("BEST")
	}
	b.WriteString(name + "\n")

	traffic := s.Badge.Background(TrafficColor(r.TrafficCondition)).Render(string(r.TrafficCondition))
	fmt.Fprintf(&b, "%s  %s · %s · score %.1f/10\n", traffic, r.TravelTime, r.Distance, r.RecommendationScore)
	if r.CongestionLength != "" || r.VehicleCount > 0 {
		b.WriteString(s.Muted.Render(fmt.Sprintf("congestion %s, ~%d vehicles", r.CongestionLength, r.VehicleCount)) + "\n")
	}
	if r.Summary != "" {
		b.WriteString(s.Body.Render(r.Summary) + "\n")
	}
	if r.Prediction != "" {
		b.WriteString(s.Subtitle.Render(r.Prediction) + "\n")
	}
	for _, inc := range r.Incidents {
		dot := lipgloss.NewStyle().Foreground(SeverityColor(inc.Severity)).Render("●")
		fmt.Fprintf(&b, "%s %s: %s\n", dot, inc.Type, inc.Description)
	}

	card := s.Card
	if best {
		card = card.BorderForeground(Success)
	}
	if width > 4 {
		card = card.Width(width - 2)
	}
	return card.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderAnalysis renders every route card, highlighting the best one.
func RenderAnalysis(s Styles, a *pulse.RouteAnalysis, width int) string {
	if a.Empty() {
		return s.Muted.Render("Enter where you are travelling from and to, then press enter.")
	}
	best, _ := a.BestRoute()
	cards := make([]string, len(a.Routes))
	for i, r := range a.Routes {
		cards[i] = RenderRoute(s, r, r.RouteName == best.RouteName, width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// RenderHistory renders the search history sidebar.
func RenderHistory(s Styles, entries []history.Entry, selected int, focused bool) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Travel History") + "\n")
	if len(entries) == 0 {
		b.WriteString(s.Muted.Render("Your past route searches\nwill appear here."))
		return b.String()
	}
	for i, e := range entries {
		line := "  " + e.Key()
		if focused && i == selected {
			line = s.Title.Render("▸ " + e.Key())
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderReport renders an incident classification.
func RenderReport(s Styles, r *pulse.IncidentReport) string {
	return s.Card.Render(strings.Join([]string{
		s.Title.Render(string(r.Category)),
		s.Body.Render(r.Summary),
		s.Muted.Render("Suggested department: ") + s.Bold.Render(r.SuggestedDepartment),
	}, "\n"))
}
