package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"citypulse/internal/analyst"
	"citypulse/internal/config"
	"citypulse/internal/history"
	"citypulse/internal/pulse"
	"citypulse/internal/toast"
	"citypulse/internal/usage"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyst struct {
	routes   *pulse.RouteAnalysis
	report   *pulse.IncidentReport
	reply    string
	err      error
	lastChat *pulse.RouteContext
}

func (s *stubAnalyst) AnalyzeRoutes(ctx context.Context, from, to string) (*pulse.RouteAnalysis, error) {
	return s.routes, s.err
}

func (s *stubAnalyst) AnalyzeIncident(ctx context.Context, image *pulse.Image, description string) (*pulse.IncidentReport, error) {
	return s.report, s.err
}

func (s *stubAnalyst) Chat(ctx context.Context, message string, route *pulse.RouteContext, image *pulse.Image) (string, error) {
	s.lastChat = route
	return s.reply, s.err
}

// setup points the globals at a temp workspace and a stub analyst.
func setup(t *testing.T) *stubAnalyst {
	t.Helper()
	logger = zap.NewNop()
	workspace = t.TempDir()
	cfg = config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"

	stub := &stubAnalyst{
		routes: &pulse.RouteAnalysis{Routes: []pulse.Route{
			{RouteName: "Outer Ring Road", TravelTime: "45 mins", Distance: "18 km", TrafficCondition: pulse.TrafficHeavy, RecommendationScore: 6},
			{RouteName: "Old Airport Road", TravelTime: "35 mins", Distance: "16 km", TrafficCondition: pulse.TrafficModerate, RecommendationScore: 8.5},
		}},
		report: &pulse.IncidentReport{Category: pulse.ReportRoadHazard, Summary: "Deep pothole", SuggestedDepartment: "BBMP Roads"},
		reply:  "Leave after 8pm.",
	}
	prev := newAnalyst
	newAnalyst = func(context.Context, *config.Config, *zap.Logger, analyst.UsageRecorder) (analyst.Analyst, error) {
		return stub, nil
	}

	t.Cleanup(func() {
		newAnalyst = prev
		workspace = ""
		cfg = nil
		routesJSON, routesNoSave = false, false
		chatFrom, chatTo, chatPhoto = "", "", ""
		historyLimit, historyClear, historyDelete = 0, false, ""
	})
	return stub
}

func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func TestRoutesCmd(t *testing.T) {
	setup(t)
	cmd, out, notes := newTestCmd()

	require.NoError(t, runRoutes(cmd, []string{"Koramangala", "Whitefield"}))

	assert.Contains(t, out.String(), "Old Airport Road")
	assert.Contains(t, out.String(), "Outer Ring Road")
	assert.Contains(t, notes.String(), "Analyzing routes from Koramangala to Whitefield")
	assert.Contains(t, notes.String(), "Found 2 routes")
	assert.Contains(t, notes.String(), "Search saved to history")

	store, err := history.Open(cfg.DatabasePath(workspace))
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Koramangala to Whitefield", entries[0].Key())
}

func TestRoutesCmd_JSONNoSave(t *testing.T) {
	setup(t)
	routesJSON, routesNoSave = true, true
	cmd, out, notes := newTestCmd()

	require.NoError(t, runRoutes(cmd, []string{"A", "B"}))
	assert.Contains(t, out.String(), `"routeName": "Old Airport Road"`)
	assert.NotContains(t, notes.String(), "saved")

	_, err := os.Stat(cfg.DatabasePath(workspace))
	assert.True(t, os.IsNotExist(err))
}

func TestRoutesCmd_Failure(t *testing.T) {
	stub := setup(t)
	stub.err = analyst.ErrEmptyResponse
	cmd, _, notes := newTestCmd()

	err := runRoutes(cmd, []string{"A", "B"})
	require.ErrorIs(t, err, analyst.ErrEmptyResponse)
	assert.Contains(t, notes.String(), "AI could not generate routes")
}

func TestRoutesCmd_MissingKey(t *testing.T) {
	setup(t)
	cfg.LLM.APIKey = ""
	cmd, _, _ := newTestCmd()

	err := runRoutes(cmd, []string{"A", "B"})
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestIncidentCmd(t *testing.T) {
	setup(t)
	photo := filepath.Join(workspace, "pothole.png")
	require.NoError(t, os.WriteFile(photo, pngHeader(), 0o644))
	cmd, out, notes := newTestCmd()

	require.NoError(t, runIncident(cmd, []string{photo, "deep", "pothole"}))
	assert.Contains(t, out.String(), "Deep pothole")
	assert.Contains(t, notes.String(), "Reported to BBMP Roads")
}

func TestIncidentCmd_NotAnImage(t *testing.T) {
	setup(t)
	path := filepath.Join(workspace, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	cmd, _, _ := newTestCmd()

	assert.Error(t, runIncident(cmd, []string{path}))
}

func TestChatCmd(t *testing.T) {
	stub := setup(t)
	chatFrom, chatTo = "A", "B"
	cmd, out, _ := newTestCmd()

	require.NoError(t, runChat(cmd, []string{"when", "should", "I", "leave?"}))
	assert.Contains(t, out.String(), "Leave after 8pm.")
	assert.Equal(t, &pulse.RouteContext{From: "A", To: "B"}, stub.lastChat)
}

func TestChatCmd_Errors(t *testing.T) {
	stub := setup(t)
	cmd, _, notes := newTestCmd()

	chatFrom = "A"
	assert.Error(t, runChat(cmd, []string{"hi"}))

	chatFrom = ""
	stub.err = errors.New("offline")
	err := runChat(cmd, []string{"hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), pulse.ChatFailure)
	assert.Contains(t, notes.String(), "Failed to get response from assistant.")
}

func TestHistoryCmd(t *testing.T) {
	setup(t)
	cmd, out, _ := newTestCmd()

	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "No saved searches yet")

	rcmd, _, _ := newTestCmd()
	require.NoError(t, runRoutes(rcmd, []string{"A", "B"}))
	require.NoError(t, runRoutes(rcmd, []string{"C", "D"}))
	require.NoError(t, runRoutes(rcmd, []string{"A", "B"}))

	out.Reset()
	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "Total: 2 searches")
	// a repeated search keeps its place
	assert.Less(t, bytes.Index(out.Bytes(), []byte("C to D")), bytes.Index(out.Bytes(), []byte("A to B")))

	historyClear = true
	ccmd, _, notes := newTestCmd()
	require.NoError(t, runHistory(ccmd, nil))
	assert.Contains(t, notes.String(), "Cleared 2 saved searches")
}

func TestHistoryCmd_DeleteUnknown(t *testing.T) {
	setup(t)
	historyDelete = "missing"
	cmd, _, _ := newTestCmd()

	assert.ErrorIs(t, runHistory(cmd, nil), history.ErrNotFound)
}

func TestConfigCmds(t *testing.T) {
	setup(t)
	cmd, out, _ := newTestCmd()

	require.NoError(t, runConfigInit(cmd, nil))
	assert.FileExists(t, config.DefaultPath(workspace))
	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, out.String(), "Config already exists")

	out.Reset()
	require.NoError(t, runConfigShow(cmd, nil))
	assert.Contains(t, out.String(), "city: Bengaluru, India")
	assert.NotContains(t, out.String(), "test-key")
}

func TestLineNotifier(t *testing.T) {
	var buf bytes.Buffer
	store := toast.NewStore()
	store.Subscribe(newLineNotifier(&buf).observe)
	toaster := toast.NewToaster(store)

	id := toaster.Loading("Working")
	toaster.Update(toast.Patch{ID: id, Title: toast.Ptr("Working")})
	toaster.Info("Heads up", toast.WithDescription("details"))
	toaster.Update(toast.Patch{ID: id, Type: toast.Ptr(toast.TypeSuccess), Title: toast.Ptr("Done")})
	toaster.Dismiss(id)
	toaster.Action("Saved", toast.Button{Label: "Undo"})

	assert.Equal(t, "◌ Working\nℹ Heads up: details\n✓ Done\n➜ Saved [Undo]\n", buf.String())
}

func pngHeader() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
}

func TestUsageCmd(t *testing.T) {
	setup(t)
	cmd, out, _ := newTestCmd()

	require.NoError(t, runUsage(cmd, nil))
	assert.Contains(t, out.String(), "No model calls recorded yet.")

	tracker, err := usage.NewTracker(workspace)
	require.NoError(t, err)
	tracker.Track("gemini-2.5-flash", "routes", 100, 50)
	tracker.Track("gemini-2.5-flash", "chat", 10, 5)
	require.NoError(t, tracker.Flush())

	out.Reset()
	require.NoError(t, runUsage(cmd, nil))
	assert.Contains(t, out.String(), "Total: 2 calls, 165 tokens (110 in, 55 out)")
	assert.Contains(t, out.String(), "routes")
	assert.Contains(t, out.String(), "gemini-2.5-flash")
}
