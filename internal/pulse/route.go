// Package pulse holds the city traffic domain: routes, incidents, civic
// reports, assistant chat messages and the running dashboard totals.
package pulse

import "fmt"

// TrafficCondition is the congestion level reported for a route.
type TrafficCondition string

const (
	TrafficLight    TrafficCondition = "Light"
	TrafficModerate TrafficCondition = "Moderate"
	TrafficHeavy    TrafficCondition = "Heavy"
)

// TrafficConditions lists every condition, lightest first.
var TrafficConditions = []TrafficCondition{TrafficLight, TrafficModerate, TrafficHeavy}

// IncidentType classifies an incident on a route.
type IncidentType string

const (
	IncidentAccident     IncidentType = "Accident"
	IncidentTrafficJam   IncidentType = "Traffic Jam"
	IncidentWaterLogging IncidentType = "Water Logging"
	IncidentRoadWork     IncidentType = "Road Work"
	IncidentEvent        IncidentType = "Event"
	IncidentOther        IncidentType = "Other"
)

// IncidentTypes lists every incident type.
var IncidentTypes = []IncidentType{
	IncidentAccident, IncidentTrafficJam, IncidentWaterLogging,
	IncidentRoadWork, IncidentEvent, IncidentOther,
}

// Severity of an incident.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Severities lists every severity, lowest first.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// Incident is a known disruption on a route.
type Incident struct {
	Type        IncidentType `json:"type"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity"`
}

// Route is one candidate journey between two places. TravelTime, Distance
// and CongestionLength are free text such as "45 minutes" or "15 km".
type Route struct {
	RouteName           string           `json:"routeName"`
	TravelTime          string           `json:"travelTime"`
	Distance            string           `json:"distance"`
	TrafficCondition    TrafficCondition `json:"trafficCondition"`
	CongestionLength    string           `json:"congestionLength"`
	VehicleCount        int              `json:"vehicleCount"`
	Incidents           []Incident       `json:"incidents"`
	RecommendationScore float64          `json:"recommendationScore"` // 1 (worst) to 10 (best)
	Summary             string           `json:"summary"`
	Prediction          string           `json:"prediction,omitempty"`
}

// RouteAnalysis is the set of routes returned for one search.
type RouteAnalysis struct {
	Routes []Route `json:"routes"`
}

// Empty reports whether the analysis has no routes.
func (a *RouteAnalysis) Empty() bool {
	return a == nil || len(a.Routes) == 0
}

// BestRoute returns the route with the highest recommendation score. On a
// tie the later route wins.
func (a *RouteAnalysis) BestRoute() (Route, bool) {
	if a.Empty() {
		return Route{}, false
	}
	best := a.Routes[0]
	for _, r := range a.Routes[1:] {
		if !(best.RecommendationScore > r.RecommendationScore) {
			best = r
		}
	}
	return best, true
}

// RouteContext is the journey the user last analyzed. The assistant uses it
// to answer follow-up questions.
type RouteContext struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (c RouteContext) String() string {
	return fmt.Sprintf("%s to %s", c.From, c.To)
}
