package pulse

import (
	"errors"
	"fmt"
)

// ReportCategory classifies a citizen's incident report.
type ReportCategory string

const (
	ReportTrafficJam  ReportCategory = "Traffic Jam"
	ReportRoadHazard  ReportCategory = "Road Hazard"
	ReportCivicIssue  ReportCategory = "Civic Issue"
	ReportPublicEvent ReportCategory = "Public Event"
	ReportOther       ReportCategory = "Other"
)

// ErrIncompleteReport is returned by Validate when a field is missing.
var ErrIncompleteReport = errors.New("incomplete incident report")

// IncidentReport is the classification of a photographed incident.
type IncidentReport struct {
	Category            ReportCategory `json:"category"`
	Summary             string         `json:"summary"`
	SuggestedDepartment string         `json:"suggestedDepartment"`
}

// Validate checks that every field is present.
func (r *IncidentReport) Validate() error {
	switch {
	case r.Category == "":
		return fmt.Errorf("%w: missing category", ErrIncompleteReport)
	case r.Summary == "":
		return fmt.Errorf("%w: missing summary", ErrIncompleteReport)
	case r.SuggestedDepartment == "":
		return fmt.Errorf("%w: missing department", ErrIncompleteReport)
	}
	return nil
}
