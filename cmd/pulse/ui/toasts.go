package ui

import (
	"errors"
	"fmt"

	"citypulse/internal/analyst"
	"citypulse/internal/pulse"
	"citypulse/internal/toast"
)

// RouteToastOptions describes the toasts raised around a route analysis.
func RouteToastOptions(from, to string) toast.PromiseOptions[*pulse.RouteAnalysis] {
	return toast.PromiseOptions[*pulse.RouteAnalysis]{
		Loading: fmt.Sprintf("Analyzing routes from %s to %s…", from, to),
		Success: func(a *pulse.RouteAnalysis) string {
			return fmt.Sprintf("Found %d routes", len(a.Routes))
		},
		Error: RouteFailure,
	}
}

// RouteFailure turns a route analysis error into a toast title.
func RouteFailure(err error) string {
	if errors.Is(err, analyst.ErrEmptyResponse) {
		return "AI could not generate routes. The response might be blocked or empty."
	}
	return "Failed to analyze routes. Please check your API key and network connection."
}

// IncidentToastOptions describes the toasts raised around incident analysis.
func IncidentToastOptions() toast.PromiseOptions[*pulse.IncidentReport] {
	return toast.PromiseOptions[*pulse.IncidentReport]{
		Loading: "Analyzing incident photo…",
		Success: func(r *pulse.IncidentReport) string {
			return fmt.Sprintf("Reported to %s", r.SuggestedDepartment)
		},
		Error: func(err error) string {
			if errors.Is(err, analyst.ErrIncompleteReport) {
				return "AI returned an incomplete incident report."
			}
			return "Failed to analyze the incident. Please try again."
		},
	}
}

// ChatFailureToast is raised when the assistant cannot answer.
const ChatFailureToast = "Failed to get response from assistant."
