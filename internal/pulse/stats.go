package pulse

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	// MileageKmPerLitre is the assumed fuel economy.
	MileageKmPerLitre = 15.0
	// FuelPricePerLitre is the assumed fuel price in rupees.
	FuelPricePerLitre = 105.0
)

// Stats is the running monthly dashboard.
type Stats struct {
	TimeSavedHours   float64
	DistanceKm       float64
	FuelSavedLitres  float64
	MoneySaved       float64
	IncidentsAvoided int
}

// DefaultStats seeds the dashboard before any search.
func DefaultStats() Stats {
	return Stats{
		TimeSavedHours:   7.2,
		DistanceKm:       1240,
		FuelSavedLitres:  95,
		MoneySaved:       9800,
		IncidentsAvoided: 58,
	}
}

// Apply folds a completed analysis into the totals, assuming the user takes
// the best route. Incidents on every other route count as avoided.
func (s Stats) Apply(a *RouteAnalysis) Stats {
	best, ok := a.BestRoute()
	if !ok {
		return s
	}

	distance := leadingNumber(best.Distance)
	minutes := leadingNumber(best.TravelTime)
	fuel := distance / MileageKmPerLitre
	money := fuel * FuelPricePerLitre

	avoided := 0
	for _, r := range a.Routes {
		if r.RouteName != best.RouteName {
			avoided += len(r.Incidents)
		}
	}

	s.DistanceKm += distance
	s.TimeSavedHours += minutes / 60 / 10
	s.FuelSavedLitres += fuel / 2
	s.MoneySaved += money / 2
	s.IncidentsAvoided += avoided
	return s
}

// leadingNumber parses the decimal number at the start of s ("15.5 km"),
// returning 0 when there is none.
func leadingNumber(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	seenDot, seenDigit := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
