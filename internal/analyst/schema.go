package analyst

import (
	"google.golang.org/genai"

	"citypulse/internal/pulse"
)

func enum[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func stringField(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

// routeSchema constrains route analyses to pulse.RouteAnalysis.
var routeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"routes": {
			Type:        genai.TypeArray,
			Description: "Candidate routes from the origin to the destination.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"routeName":        stringField("Name of the route, e.g. 'Via Outer Ring Road'."),
					"travelTime":       stringField("Estimated travel time, e.g. '45 minutes'."),
					"distance":         stringField("Total distance, e.g. '15 km'."),
					"trafficCondition": {Type: genai.TypeString, Enum: enum(pulse.TrafficConditions)},
					"congestionLength": stringField("Length of congestion, e.g. '2 km'."),
					"vehicleCount": {
						Type:        genai.TypeInteger,
						Description: "Estimated vehicles on the congested stretch.",
					},
					"recommendationScore": {
						Type:        genai.TypeNumber,
						Description: "From 1 (worst) to 10 (best).",
					},
					"summary":    stringField("One sentence on why the route is or is not recommended."),
					"prediction": stringField("How conditions are expected to change."),
					"incidents": {
						Type:        genai.TypeArray,
						Description: "Incidents currently on the route.",
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"type":        {Type: genai.TypeString, Enum: enum(pulse.IncidentTypes)},
								"description": stringField("Short description of the incident."),
								"severity":    {Type: genai.TypeString, Enum: enum(pulse.Severities)},
							},
							Required: []string{"type", "description", "severity"},
						},
					},
				},
				Required: []string{
					"routeName", "travelTime", "distance", "trafficCondition", "congestionLength",
					"vehicleCount", "incidents", "recommendationScore", "summary",
				},
			},
		},
	},
	Required: []string{"routes"},
}

var reportCategories = []pulse.ReportCategory{
	pulse.ReportTrafficJam, pulse.ReportRoadHazard, pulse.ReportCivicIssue,
	pulse.ReportPublicEvent, pulse.ReportOther,
}

// incidentSchema constrains incident classification to pulse.IncidentReport.
var incidentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category":            {Type: genai.TypeString, Enum: enum(reportCategories)},
		"summary":             stringField("One sentence describing the situation."),
		"suggestedDepartment": stringField("Department that should handle the issue."),
	},
	Required: []string{"category", "summary", "suggestedDepartment"},
}
