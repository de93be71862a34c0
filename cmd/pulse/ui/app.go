package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"citypulse/internal/analyst"
	"citypulse/internal/config"
	"citypulse/internal/history"
	"citypulse/internal/pulse"
	"citypulse/internal/toast"
)

const (
	sidebarWidth = 30
	chatWidth    = 44
	headerHeight = 1
	footerHeight = 1
)

type focus int

const (
	focusFrom focus = iota
	focusTo
	focusHistory
	focusChat
	focusCount
)

// Deps are the services the interface drives.
type Deps struct {
	Context   context.Context
	Analyst   analyst.Analyst
	History   *history.Store // optional
	Toaster   *toast.Toaster
	Lifecycle *toast.Lifecycle // optional, receives reloaded toast defaults
	Logger    *zap.Logger

	// ConfigChanges delivers reloaded configuration, if watching.
	ConfigChanges <-chan *config.Config
	HistoryLimit  int
	Styles        *Styles
}

type (
	routesMsg struct {
		from, to string
		analysis *pulse.RouteAnalysis
		err      error
	}
	chatReplyMsg struct {
		reply string
		err   error
	}
	reportMsg struct {
		report *pulse.IncidentReport
		err    error
	}
	historyMsg struct {
		entries []history.Entry
		err     error
	}
	configMsg struct {
		cfg *config.Config
	}
)

// Model is the full-screen pulse interface.
type Model struct {
	deps     Deps
	ctx      context.Context
	logger   *zap.Logger
	styles   Styles
	keys     keyMap
	renderer *glamour.TermRenderer

	from      textinput.Model
	to        textinput.Model
	chatInput textinput.Model
	spinner   spinner.Model
	chatView  viewport.Model
	toasts    ToasterModel
	bridge    *Bridge

	focus     focus
	analysis  *pulse.RouteAnalysis
	route     *pulse.RouteContext
	stats     pulse.Stats
	entries   []history.Entry
	selected  int
	messages  []pulse.ChatMessage
	analyzing bool
	chatting  bool
	width     int
	height    int
}

// New creates the interface. Call Close when the program exits.
func New(deps Deps) Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = 20
	}
	styles := DefaultStyles()
	if deps.Styles != nil {
		styles = *deps.Styles
	}

	from := textinput.New()
	from.Prompt = "From: "
	from.Placeholder = "e.g. Koramangala"
	from.CharLimit = 80
	from.Focus()

	to := textinput.New()
	to.Prompt = "To:   "
	to.Placeholder = "e.g. Whitefield"
	to.CharLimit = 80

	chatInput := textinput.New()
	chatInput.Prompt = "› "
	chatInput.Placeholder = "Ask, or report an issue (@photo.jpg to attach)"
	chatInput.CharLimit = 500

	m := Model{
		deps:      deps,
		ctx:       deps.Context,
		logger:    deps.Logger,
		styles:    styles,
		keys:      defaultKeyMap(),
		from:      from,
		to:        to,
		chatInput: chatInput,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner)),
		chatView:  viewport.New(chatWidth-4, 20),
		toasts:    NewToasterModel(styles),
		bridge:    NewBridge(deps.Toaster.Store()),
		stats:     pulse.DefaultStats(),
		messages:  pulse.NewConversation(),
		width:     120,
		height:    40,
	}
	m.toasts = m.toasts.Update(ToastsMsg(deps.Toaster.Store().State()))
	m.resize(m.width, m.height)
	return m
}

// Close releases the store subscription.
func (m Model) Close() {
	m.bridge.Close()
}

// Init starts the toast bridge and loads the history sidebar.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.bridge.Wait(),
		m.loadHistory(),
		m.waitForConfig(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ToastsMsg:
		m.toasts = m.toasts.Update(msg)
		return m, m.bridge.Wait()

	case routesMsg:
		m.analyzing = false
		if msg.err != nil {
			m.logger.Warn("Route analysis failed", zap.Error(msg.err))
			return m, nil
		}
		m.analysis = msg.analysis
		m.stats = m.stats.Apply(msg.analysis)
		return m, m.saveSearch(msg.from, msg.to, msg.analysis)

	case historyMsg:
		if msg.err != nil {
			m.logger.Warn("History unavailable", zap.Error(msg.err))
			m.deps.Toaster.Warning("Could not read travel history", toast.WithDescription(msg.err.Error()))
			return m, nil
		}
		m.entries = msg.entries
		if m.selected >= len(m.entries) {
			m.selected = max(0, len(m.entries)-1)
		}
		return m, nil

	case chatReplyMsg:
		m.chatting = false
		if msg.err != nil {
			m.logger.Warn("Assistant failed", zap.Error(msg.err))
			m.messages = append(m.messages, pulse.ChatMessage{Sender: pulse.SenderAI, Text: pulse.ChatFailure})
			m.deps.Toaster.Error(ChatFailureToast)
		} else {
			m.messages = append(m.messages, pulse.ChatMessage{Sender: pulse.SenderAI, Text: msg.reply})
		}
		m.refreshChat()
		return m, nil

	case reportMsg:
		m.chatting = false
		if msg.err != nil {
			m.logger.Warn("Incident analysis failed", zap.Error(msg.err))
			return m, nil
		}
		m.messages = append(m.messages, pulse.ChatMessage{Sender: pulse.SenderAI, Text: reportMarkdown(msg.report)})
		m.refreshChat()
		return m, nil

	case configMsg:
		m.applyConfig(msg.cfg)
		return m, m.waitForConfig()

	case spinner.TickMsg:
		if !m.analyzing && !m.chatting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		if t, ok := m.toasts.Newest(); ok {
			m.deps.Toaster.Dismiss(t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.DismissAll):
		m.deps.Toaster.DismissAll()
		return m, nil

	case key.Matches(msg, m.keys.Action):
		return m, m.fireAction()

	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	}

	switch m.focus {
	case focusFrom, focusTo:
		if key.Matches(msg, m.keys.Submit) {
			return m.submitRoute()
		}
	case focusHistory:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.selected = max(0, m.selected-1)
		case key.Matches(msg, m.keys.Down):
			m.selected = min(len(m.entries)-1, m.selected+1)
			m.selected = max(0, m.selected)
		case key.Matches(msg, m.keys.Submit):
			return m.rerunSelected()
		}
		return m, nil
	case focusChat:
		if key.Matches(msg, m.keys.Submit) {
			return m.sendChat()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusFrom:
		m.from, cmd = m.from.Update(msg)
	case focusTo:
		m.to, cmd = m.to.Update(msg)
	case focusChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.from.Blur()
	m.to.Blur()
	m.chatInput.Blur()
	switch f {
	case focusFrom:
		m.from.Focus()
	case focusTo:
		m.to.Focus()
	case focusChat:
		m.chatInput.Focus()
	}
}

func (m Model) submitRoute() (tea.Model, tea.Cmd) {
	from := strings.TrimSpace(m.from.Value())
	to := strings.TrimSpace(m.to.Value())
	switch {
	case from == "":
		m.setFocus(focusFrom)
		return m, nil
	case to == "":
		m.setFocus(focusTo)
		return m, nil
	}
	return m.startAnalysis(from, to)
}

func (m Model) rerunSelected() (tea.Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= len(m.entries) {
		return m, nil
	}
	route, err := pulse.ParseSearchKey(m.entries[m.selected].Key())
	if err != nil {
		return m, nil
	}
	m.from.SetValue(route.From)
	m.to.SetValue(route.To)
	return m.startAnalysis(route.From, route.To)
}

func (m Model) startAnalysis(from, to string) (tea.Model, tea.Cmd) {
	if m.analyzing {
		return m, nil
	}
	m.analyzing = true
	m.analysis = nil
	m.route = &pulse.RouteContext{From: from, To: to}
	return m, tea.Batch(m.spinner.Tick, m.analyzeRoutes(from, to))
}

func (m Model) analyzeRoutes(from, to string) tea.Cmd {
	ctx, a, toaster := m.ctx, m.deps.Analyst, m.deps.Toaster
	return func() tea.Msg {
		p := toast.Promise(ctx, toaster, func(ctx context.Context) (*pulse.RouteAnalysis, error) {
			return a.AnalyzeRoutes(ctx, from, to)
		}, RouteToastOptions(from, to))
		analysis, err := p.Await()
		return routesMsg{from: from, to: to, analysis: analysis, err: err}
	}
}

func (m Model) saveSearch(from, to string, analysis *pulse.RouteAnalysis) tea.Cmd {
	store, toaster, ctx, limit := m.deps.History, m.deps.Toaster, m.ctx, m.deps.HistoryLimit
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		entry, created, err := store.Add(ctx, from, to, analysis)
		if err != nil {
			return historyMsg{err: err}
		}
		// Undo only forgets searches this save introduced.
		if !created {
			toaster.Success("Search saved to history", toast.WithDescription(entry.Key()))
		} else {
			toaster.Action("Search saved to history", toast.Button{
				Label: "Undo",
				OnClick: func(close func()) {
					close()
					if err := store.Delete(ctx, entry.ID); err != nil {
						toaster.Error("Could not undo saved search", toast.WithDescription(err.Error()))
					}
				},
			}, toast.WithDescription(entry.Key()))
		}
		entries, err := store.List(ctx, limit)
		return historyMsg{entries: entries, err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	store, ctx, limit := m.deps.History, m.ctx, m.deps.HistoryLimit
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := store.List(ctx, limit)
		return historyMsg{entries: entries, err: err}
	}
}

// fireAction clicks the action button of the newest open toast that has one.
func (m Model) fireAction() tea.Cmd {
	for _, t := range m.toasts.State().Toasts {
		if !t.Open || t.Action == nil {
			continue
		}
		closeToast := m.deps.Toaster.Close(t.ID)
		if t.Action.OnClick == nil {
			closeToast()
		} else {
			t.Action.OnClick(closeToast)
		}
		return m.loadHistory()
	}
	return nil
}

func (m Model) sendChat() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.chatInput.Value())
	if text == "" || m.chatting {
		return m, nil
	}

	report := false
	if rest, ok := strings.CutPrefix(text, reportCommand); ok {
		report = true
		text = strings.TrimSpace(rest)
	}
	message, path := splitAttachment(text)
	if report && path == "" {
		m.deps.Toaster.Warning("Attach a photo to report an incident", toast.WithDescription(reportCommand+" @photo.jpg what happened"))
		return m, nil
	}
	var image *pulse.Image
	if path != "" {
		img, err := pulse.LoadImage(path)
		if err != nil {
			m.deps.Toaster.Error("Could not attach photo", toast.WithDescription(err.Error()))
			return m, nil
		}
		image = img
	}
	if message == "" && !report {
		message = "Please look at this photo."
	}

	m.chatInput.SetValue("")
	m.messages = append(m.messages, pulse.ChatMessage{Sender: pulse.SenderUser, Text: message, Image: path})
	m.chatting = true
	m.refreshChat()

	if report {
		return m, tea.Batch(m.spinner.Tick, m.reportIncident(message, image))
	}
	var route *pulse.RouteContext
	if m.route != nil {
		r := *m.route
		route = &r
	}
	return m, tea.Batch(m.spinner.Tick, m.askAssistant(message, route, image))
}

func (m Model) askAssistant(message string, route *pulse.RouteContext, image *pulse.Image) tea.Cmd {
	ctx, a := m.ctx, m.deps.Analyst
	return func() tea.Msg {
		reply, err := a.Chat(ctx, message, route, image)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (m Model) reportIncident(description string, image *pulse.Image) tea.Cmd {
	ctx, a, toaster := m.ctx, m.deps.Analyst, m.deps.Toaster
	return func() tea.Msg {
		p := toast.Promise(ctx, toaster, func(ctx context.Context) (*pulse.IncidentReport, error) {
			return a.AnalyzeIncident(ctx, image, description)
		}, IncidentToastOptions())
		r, err := p.Await()
		return reportMsg{report: r, err: err}
	}
}

const reportCommand = "/report"

func reportMarkdown(r *pulse.IncidentReport) string {
	return fmt.Sprintf("**%s**\n\n%s\n\n_Suggested department:_ %s", r.Category, r.Summary, r.SuggestedDepartment)
}

// splitAttachment extracts a leading "@path" token.
func splitAttachment(text string) (message, path string) {
	if !strings.HasPrefix(text, "@") {
		return text, ""
	}
	path, message, _ = strings.Cut(text[1:], " ")
	return strings.TrimSpace(message), path
}

func (m Model) waitForConfig() tea.Cmd {
	ch := m.deps.ConfigChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configMsg{cfg: cfg}
	}
}

func (m Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if m.deps.Lifecycle != nil {
		m.deps.Lifecycle.SetDefaultDuration(cfg.GetToastDuration())
	}
	m.deps.Toaster.Info("Configuration reloaded",
		toast.WithDescription(fmt.Sprintf("toasts stay %s", cfg.GetToastDuration())))
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	bodyHeight := max(1, height-headerHeight-footerHeight)

	m.chatView.Width = chatWidth - 4
	m.chatView.Height = max(1, bodyHeight-5)
	m.chatInput.Width = chatWidth - 8
	m.toasts.SetWidth(min(48, max(20, width/3)))

	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(chatWidth-8),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.refreshChat()
}

func (m *Model) refreshChat() {
	var b strings.Builder
	for _, msg := range m.messages {
		switch msg.Sender {
		case pulse.SenderUser:
			line := "You: " + msg.Text
			if msg.Image != "" {
				line += " [" + msg.Image + "]"
			}
			b.WriteString(m.styles.UserMessage.Render(line))
		case pulse.SenderAI:
			b.WriteString(m.styles.AIMessage.Render(m.renderMarkdown(msg.Text)))
		}
		b.WriteString("\n\n")
	}
	m.chatView.SetContent(strings.TrimRight(b.String(), "\n"))
	m.chatView.GotoBottom()
}

func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m Model) View() string {
	s := m.styles
	bodyHeight := max(1, m.height-headerHeight-footerHeight)
	mainWidth := max(20, m.width-sidebarWidth-chatWidth)

	header := s.Header.Width(m.width).Render("City Pulse AI")

	sidebar := s.Sidebar.Width(sidebarWidth - 1).Height(bodyHeight).
		Render(RenderHistory(s, m.entries, m.selected, m.focus == focusHistory))

	form := lipgloss.JoinVertical(lipgloss.Left,
		m.inputBox(m.from, m.focus == focusFrom, mainWidth),
		m.inputBox(m.to, m.focus == focusTo, mainWidth),
	)
	results := RenderAnalysis(s, m.analysis, mainWidth)
	if m.analyzing {
		results = m.spinner.View() + " " + s.Muted.Render("Analyzing routes…")
	}
	main := lipgloss.NewStyle().Width(mainWidth).Height(bodyHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Monthly Dashboard"),
			RenderStats(s, m.stats),
			"",
			form,
			"",
			results,
		))

	chatStatus := ""
	if m.chatting {
		chatStatus = m.spinner.View() + " thinking…"
	}
	chat := lipgloss.NewStyle().Width(chatWidth).Height(bodyHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("AI Assistant"),
			m.chatView.View(),
			s.Muted.Render(chatStatus),
			m.inputBox(m.chatInput, m.focus == focusChat, chatWidth),
		))

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main, chat)
	if toasts := m.toasts.View(); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, toasts),
			body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer())
}

func (m Model) inputBox(in textinput.Model, focused bool, width int) string {
	box := m.styles.Pane
	if focused {
		box = m.styles.Focused
	}
	return box.Width(max(10, width-2)).Render(in.View())
}

func (m Model) footer() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.Footer.Render(strings.Join(parts, " · "))
}
