package analyst

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"citypulse/internal/pulse"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n\\s*```")

// extractJSON returns the body of the first fenced code block in text, or
// the trimmed text itself when there is none.
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func decode(text string, v any) error {
	body := extractJSON(text)
	if body == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// parseRoutes accepts either {"routes": [...]} or a bare array of routes.
func parseRoutes(text string) (*pulse.RouteAnalysis, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	var analysis pulse.RouteAnalysis
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &analysis.Routes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	} else if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if analysis.Empty() {
		return nil, ErrEmptyResponse
	}
	return &analysis, nil
}

func parseReport(text string) (*pulse.IncidentReport, error) {
	var report pulse.IncidentReport
	if err := decode(text, &report); err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}
