// Package analyst asks a generative model about city traffic: it ranks
// routes between two places, classifies photographed incidents, and answers
// assistant chat turns.
package analyst

import (
	"context"
	"errors"

	"citypulse/internal/pulse"
)

var (
	// ErrEmptyResponse is returned when the model answers with nothing usable.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrIncompleteReport is returned when an incident report lacks a field.
	ErrIncompleteReport = pulse.ErrIncompleteReport
	// ErrInvalidJSON is returned when a structured answer cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON response from model")
)

// Analyst is the model-backed service behind every pulse command.
type Analyst interface {
	// AnalyzeRoutes ranks candidate routes from one place to another.
	AnalyzeRoutes(ctx context.Context, from, to string) (*pulse.RouteAnalysis, error)
	// AnalyzeIncident classifies a photographed incident.
	AnalyzeIncident(ctx context.Context, image *pulse.Image, description string) (*pulse.IncidentReport, error)
	// Chat answers one assistant turn. route and image may be nil.
	Chat(ctx context.Context, message string, route *pulse.RouteContext, image *pulse.Image) (string, error)
}
