package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citypulse/internal/analyst"
	"citypulse/internal/config"
	"citypulse/internal/history"
	"citypulse/internal/pulse"
	"citypulse/internal/toast"
)

type fakeAnalyst struct {
	mu       sync.Mutex
	routes   *pulse.RouteAnalysis
	routeErr error
	report   *pulse.IncidentReport
	reply    string
	chatErr  error

	lastRoute   *pulse.RouteContext
	lastImage   *pulse.Image
	lastMessage string
}

func (f *fakeAnalyst) AnalyzeRoutes(ctx context.Context, from, to string) (*pulse.RouteAnalysis, error) {
	return f.routes, f.routeErr
}

func (f *fakeAnalyst) AnalyzeIncident(ctx context.Context, image *pulse.Image, description string) (*pulse.IncidentReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastImage = image
	f.lastMessage = description
	if f.report == nil {
		return nil, analyst.ErrIncompleteReport
	}
	return f.report, nil
}

func (f *fakeAnalyst) Chat(ctx context.Context, message string, route *pulse.RouteContext, image *pulse.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMessage = message
	f.lastRoute = route
	f.lastImage = image
	return f.reply, f.chatErr
}

func sampleRoutes() *pulse.RouteAnalysis {
	return &pulse.RouteAnalysis{Routes: []pulse.Route{
		{RouteName: "Outer Ring Road", TravelTime: "45 mins", Distance: "18 km", TrafficCondition: pulse.TrafficHeavy, RecommendationScore: 6,
			Incidents: []pulse.Incident{{Type: pulse.IncidentAccident, Description: "Two cars", Severity: pulse.SeverityHigh}}},
		{RouteName: "Old Airport Road", TravelTime: "35 mins", Distance: "16 km", TrafficCondition: pulse.TrafficModerate, RecommendationScore: 8.5},
	}}
}

type fixture struct {
	store   *toast.Store
	toaster *toast.Toaster
	analyst *fakeAnalyst
	history *history.Store
	model   Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	store := toast.NewStore()
	f := &fixture{
		store:   store,
		toaster: toast.NewToaster(store),
		analyst: &fakeAnalyst{routes: sampleRoutes(), reply: "Take the **metro**."},
		history: hist,
	}
	f.model = New(Deps{
		Context: context.Background(),
		Analyst: f.analyst,
		History: hist,
		Toaster: f.toaster,
	})
	t.Cleanup(f.model.Close)
	return f
}

func (f *fixture) update(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func typeText(f *fixture, s string) {
	for _, r := range s {
		f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestRouteAnalysis_PromiseToasts(t *testing.T) {
	f := newFixture(t)

	msg := f.model.analyzeRoutes("Koramangala", "Whitefield")()
	routes, ok := msg.(routesMsg)
	require.True(t, ok)
	require.NoError(t, routes.err)

	state := f.store.State()
	require.Equal(t, 1, state.Len())
	assert.Equal(t, toast.TypeSuccess, state.Toasts[0].Type)
	assert.Equal(t, "Found 2 routes", state.Toasts[0].Title)
}

func TestRouteAnalysis_FailureToast(t *testing.T) {
	f := newFixture(t)
	f.analyst.routeErr = analyst.ErrEmptyResponse

	msg := f.model.analyzeRoutes("A", "B")().(routesMsg)
	require.ErrorIs(t, msg.err, analyst.ErrEmptyResponse)

	state := f.store.State()
	require.Equal(t, 1, state.Len())
	assert.Equal(t, toast.TypeError, state.Toasts[0].Type)
	assert.Equal(t, RouteFailure(analyst.ErrEmptyResponse), state.Toasts[0].Title)

	f.update(msg)
	assert.Nil(t, f.model.analysis)
	assert.Equal(t, pulse.DefaultStats(), f.model.stats)
}

func TestRouteResult_UpdatesStatsAndSavesHistory(t *testing.T) {
	f := newFixture(t)

	cmd := f.update(routesMsg{from: "Koramangala", to: "Whitefield", analysis: sampleRoutes()})
	require.NotNil(t, cmd)
	assert.Equal(t, 59, f.model.stats.IncidentsAvoided)

	hist := cmd().(historyMsg)
	require.NoError(t, hist.err)
	require.Len(t, hist.entries, 1)
	assert.Equal(t, "Koramangala to Whitefield", hist.entries[0].Key())

	f.update(hist)
	assert.Len(t, f.model.entries, 1)

	newest := f.store.State().Toasts[0]
	assert.Equal(t, toast.TypeAction, newest.Type)
	require.NotNil(t, newest.Action)
	assert.Equal(t, "Undo", newest.Action.Label)
}

func TestActionKey_UndoesSavedSearch(t *testing.T) {
	f := newFixture(t)

	hist := f.update(routesMsg{from: "A", to: "B", analysis: sampleRoutes()})().(historyMsg)
	f.update(hist)
	f.update(ToastsMsg(f.store.State()))

	cmd := f.update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	reloaded := cmd().(historyMsg)
	require.NoError(t, reloaded.err)
	assert.Empty(t, reloaded.entries)
	assert.False(t, f.store.State().Toasts[0].Open)
}

func TestActionKey_RepeatedSearchKeepsEarlierEntry(t *testing.T) {
	f := newFixture(t)
	earlier, created, err := f.history.Add(context.Background(), "A", "B", sampleRoutes())
	require.NoError(t, err)
	require.True(t, created)

	hist := f.update(routesMsg{from: "A", to: "B", analysis: sampleRoutes()})().(historyMsg)
	require.NoError(t, hist.err)
	f.update(hist)
	f.update(ToastsMsg(f.store.State()))

	newest := f.store.State().Toasts[0]
	assert.Equal(t, toast.TypeSuccess, newest.Type)
	assert.Nil(t, newest.Action)

	assert.Nil(t, f.update(tea.KeyMsg{Type: tea.KeyCtrlY}))
	got, err := f.history.Get(context.Background(), earlier.ID)
	require.NoError(t, err)
	assert.Equal(t, "A to B", got.Key())
}

func TestActionKey_UndoFailureRaisesError(t *testing.T) {
	f := newFixture(t)

	hist := f.update(routesMsg{from: "A", to: "B", analysis: sampleRoutes()})().(historyMsg)
	require.Len(t, hist.entries, 1)
	f.update(hist)
	require.NoError(t, f.history.Delete(context.Background(), hist.entries[0].ID))
	f.update(ToastsMsg(f.store.State()))

	require.NotNil(t, f.update(tea.KeyMsg{Type: tea.KeyCtrlY}))

	newest := f.store.State().Toasts[0]
	assert.Equal(t, toast.TypeError, newest.Type)
	assert.Equal(t, "Could not undo saved search", newest.Title)
	assert.Equal(t, history.ErrNotFound.Error(), newest.Description)
}

func TestSubmit_RequiresBothPlaces(t *testing.T) {
	f := newFixture(t)

	cmd := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, f.model.analyzing)

	typeText(f, "Koramangala")
	f.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusTo, f.model.focus)
	assert.False(t, f.model.analyzing)

	typeText(f, "Whitefield")
	cmd = f.update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, f.model.analyzing)
	assert.Equal(t, &pulse.RouteContext{From: "Koramangala", To: "Whitefield"}, f.model.route)
}

func TestDismissKeys(t *testing.T) {
	f := newFixture(t)
	f.toaster.Info("first")
	f.toaster.Info("second")
	f.update(ToastsMsg(f.store.State()))

	f.update(tea.KeyMsg{Type: tea.KeyCtrlD})
	state := f.store.State()
	assert.False(t, state.Toasts[0].Open)
	assert.True(t, state.Toasts[1].Open)

	f.update(tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Equal(t, 0, f.store.State().Len())
}

func TestChat_ReplyAndFailure(t *testing.T) {
	f := newFixture(t)
	f.model.route = &pulse.RouteContext{From: "A", To: "B"}
	f.update(tea.KeyMsg{Type: tea.KeyTab})
	f.update(tea.KeyMsg{Type: tea.KeyTab})
	f.update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusChat, f.model.focus)

	typeText(f, "Is it raining?")
	cmd := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, f.model.chatting)
	require.Len(t, f.model.messages, 2)
	assert.Equal(t, pulse.SenderUser, f.model.messages[1].Sender)

	f.update(chatReplyMsg{reply: "Take the **metro**."})
	assert.False(t, f.model.chatting)
	require.Len(t, f.model.messages, 3)
	assert.Equal(t, pulse.SenderAI, f.model.messages[2].Sender)

	f.update(chatReplyMsg{err: errors.New("offline")})
	assert.Equal(t, pulse.ChatFailure, f.model.messages[3].Text)
	assert.Equal(t, ChatFailureToast, f.store.State().Toasts[0].Title)
}

func TestSendChat_AttachesPhoto(t *testing.T) {
	f := newFixture(t)
	path := writePNG(t)
	f.model.setFocus(focusChat)
	f.model.chatInput.SetValue("@" + path + " what is this?")

	next, cmd := f.model.sendChat()
	f.model = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, path, f.model.messages[1].Image)
	assert.Equal(t, "what is this?", f.model.messages[1].Text)
}

func TestSendChat_ReportNeedsPhoto(t *testing.T) {
	f := newFixture(t)
	f.model.setFocus(focusChat)
	f.model.chatInput.SetValue("/report pothole on 5th main")

	next, cmd := f.model.sendChat()
	f.model = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, toast.TypeWarning, f.store.State().Toasts[0].Type)
}

func TestSendChat_Report(t *testing.T) {
	f := newFixture(t)
	f.analyst.report = &pulse.IncidentReport{
		Category:            pulse.ReportRoadHazard,
		Summary:             "Deep pothole",
		SuggestedDepartment: "BBMP Roads",
	}
	f.model.setFocus(focusChat)
	f.model.chatInput.SetValue("/report @" + writePNG(t) + " pothole")

	next, cmd := f.model.sendChat()
	f.model = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, f.model.chatting)

	image, err := pulse.LoadImage(f.model.messages[1].Image)
	require.NoError(t, err)
	msg := f.model.reportIncident("pothole", image)().(reportMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "Reported to BBMP Roads", f.store.State().Toasts[0].Title)
	assert.Equal(t, "pothole", f.analyst.lastMessage)
	assert.NotNil(t, f.analyst.lastImage)

	f.update(msg)
	assert.False(t, f.model.chatting)
	assert.Contains(t, f.model.messages[len(f.model.messages)-1].Text, "BBMP Roads")
}

func TestReportIncident_IncompleteReport(t *testing.T) {
	f := newFixture(t)

	msg := f.model.reportIncident("pothole", nil)().(reportMsg)
	require.ErrorIs(t, msg.err, analyst.ErrIncompleteReport)

	newest := f.store.State().Toasts[0]
	assert.Equal(t, toast.TypeError, newest.Type)
	assert.Equal(t, "AI returned an incomplete incident report.", newest.Title)
}

func TestAskAssistant_PassesRoute(t *testing.T) {
	f := newFixture(t)
	route := &pulse.RouteContext{From: "A", To: "B"}

	msg := f.model.askAssistant("any jams?", route, nil)().(chatReplyMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "Take the **metro**.", msg.reply)
	assert.Equal(t, route, f.analyst.lastRoute)
}

func TestSplitAttachment(t *testing.T) {
	tests := []struct {
		in, msg, path string
	}{
		{"hello", "hello", ""},
		{"@a.png", "", "a.png"},
		{"@a.png  look here", "look here", "a.png"},
	}
	for _, tt := range tests {
		msg, path := splitAttachment(tt.in)
		assert.Equal(t, tt.msg, msg, tt.in)
		assert.Equal(t, tt.path, path, tt.in)
	}
}

func TestView_RendersPanels(t *testing.T) {
	f := newFixture(t)
	f.toaster.Success("Found 2 routes")
	f.update(ToastsMsg(f.store.State()))
	f.update(tea.WindowSizeMsg{Width: 160, Height: 50})
	f.update(routesMsg{from: "A", to: "B", analysis: sampleRoutes()})

	view := f.model.View()
	for _, want := range []string{"City Pulse AI", "Travel History", "AI Assistant", "Found 2 routes", "Old Airport Road", "Monthly Dashboard"} {
		assert.Contains(t, view, want)
	}
}

func TestConfigReload(t *testing.T) {
	f := newFixture(t)
	ch := make(chan *config.Config, 1)
	f.model.deps.ConfigChanges = ch

	cfg := config.DefaultConfig()
	cfg.Toast.Duration = "2s"
	ch <- cfg
	msg := f.model.waitForConfig()()
	cmd := f.update(msg)
	assert.NotNil(t, cmd)

	newest := f.store.State().Toasts[0]
	assert.Equal(t, "Configuration reloaded", newest.Title)
	assert.True(t, strings.Contains(newest.Description, "2s"))

	close(ch)
	assert.Nil(t, f.model.waitForConfig()())
}

func writePNG(t *testing.T) string {
	t.Helper()
	// 1x1 transparent PNG
	data := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
