package analyst

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"citypulse/internal/pulse"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// generator is the slice of the genai client the analyst needs.
// *genai.Models satisfies it.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// UsageRecorder receives the token counts of each model call.
type UsageRecorder interface {
	Track(model, operation string, input, output int)
}

// Gemini implements Analyst on the Gemini API.
type Gemini struct {
	models  generator
	model   string
	city    string
	timeout time.Duration
	logger  *zap.Logger
	usage   UsageRecorder
}

// Option configures a Gemini analyst.
type Option func(*Gemini)

// WithModel selects the model.
func WithModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithCity names the city prompts reason about.
func WithCity(city string) Option {
	return func(g *Gemini) {
		if city != "" {
			g.city = city
		}
	}
}

// WithTimeout bounds each model call. Zero leaves the caller's deadline.
func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) { g.timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gemini) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithUsage records token usage of every call.
func WithUsage(r UsageRecorder) Option {
	return func(g *Gemini) { g.usage = r }
}

// NewGemini creates a Gemini analyst.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGemini(client.Models, opts...), nil
}

func newGemini(models generator, opts ...Option) *Gemini {
	g := &Gemini{
		models: models,
		model:  DefaultModel,
		city:   "Bengaluru, India",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the analyst name.
func (g *Gemini) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}

// AnalyzeRoutes asks for 3-4 ranked routes, constrained by a response schema.
func (g *Gemini) AnalyzeRoutes(ctx context.Context, from, to string) (*pulse.RouteAnalysis, error) {
	text, err := g.generate(ctx, "routes",
		[]*genai.Content{genai.NewContentFromText(routePrompt(g.city, from, to), genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   routeSchema,
		})
	if err != nil {
		return nil, fmt.Errorf("route analysis failed: %w", err)
	}

	analysis, err := parseRoutes(text)
	if err != nil {
		g.logger.Warn("Unusable route analysis", zap.Error(err), zap.Int("bytes", len(text)))
		return nil, fmt.Errorf("route analysis failed: %w", err)
	}

	g.logger.Info("Routes analyzed",
		zap.String("search", pulse.SearchKey(from, to)),
		zap.Int("routes", len(analysis.Routes)))
	return analysis, nil
}

// AnalyzeIncident classifies a photo and its description.
func (g *Gemini) AnalyzeIncident(ctx context.Context, image *pulse.Image, description string) (*pulse.IncidentReport, error) {
	if image == nil {
		return nil, fmt.Errorf("incident analysis needs a photo")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(incidentPrompt(g.city, description)),
		genai.NewPartFromBytes(image.Data, image.MIMEType),
	}
	text, err := g.generate(ctx, "incident",
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   incidentSchema,
		})
	if err != nil {
		return nil, fmt.Errorf("incident analysis failed: %w", err)
	}

	report, err := parseReport(text)
	if err != nil {
		return nil, fmt.Errorf("incident analysis failed: %w", err)
	}
	return report, nil
}

// Chat answers one assistant turn, primed with the last analyzed route.
func (g *Gemini) Chat(ctx context.Context, message string, route *pulse.RouteContext, image *pulse.Image) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(message)}
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}

	text, err := g.generate(ctx, "chat",
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(chatInstruction(g.city, route), genai.RoleUser),
		})
	if err != nil {
		return "", fmt.Errorf("assistant chat failed: %w", err)
	}

	reply := strings.TrimSpace(text)
	if reply == "" {
		return "", fmt.Errorf("assistant chat failed: %w", ErrEmptyResponse)
	}
	return reply, nil
}

func (g *Gemini) generate(ctx context.Context, kind string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Warn("Model call failed", zap.String("kind", kind), zap.Error(err))
		return "", err
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if g.usage != nil && resp.UsageMetadata != nil {
		g.usage.Track(g.model, kind,
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount))
	}

	text := resp.Text()
	g.logger.Debug("Model call finished",
		zap.String("kind", kind),
		zap.String("model", g.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(text)))
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
