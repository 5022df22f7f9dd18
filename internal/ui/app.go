package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/loglens/internal/formatter"
	"github.com/yildizm/loglens/internal/logfile"
	"github.com/yildizm/loglens/internal/logger"
	"github.com/yildizm/loglens/internal/session"
	"github.com/yildizm/loglens/internal/ui/components"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	sidebarWidth  = 32
	inputHeight   = 3
)

// App is the interactive front end. It owns no session state of its own:
// every action goes through the session machine and every frame is drawn
// from a fresh snapshot of it.
type App struct {
	machine *session.Machine
	log     *logger.Logger
	styles  *Styles

	path    string
	analyze bool
	preview *logfile.Preview
	notice  string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	showSources bool
	turns       int
	width       int
	height      int
	quitting    bool
}

// Option configures an App
type Option func(*App)

// WithFile loads path on start, and analyzes it right away when analyze is set
func WithFile(path string, analyze bool) Option {
	return func(a *App) {
		a.path = path
		a.analyze = analyze
	}
}

// WithLogger attaches a logger. In the TUI it must not write to the terminal.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// NewApp creates the TUI model around a session machine
func NewApp(m *session.Machine, opts ...Option) *App {
	a := &App{
		machine: m,
		styles:  GetStyles(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.input = textinput.New()
	a.input.Placeholder = formatter.ChatPlaceholder
	a.input.Prompt = "> "
	a.input.CharLimit = 2000

	a.spinner = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(a.styles.Progress),
	)

	a.viewport = viewport.New(0, 0)
	a.layout()
	return a
}

// Init starts the spinner and loads the initial file, if any
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.path != "" {
		cmds = append(cmds, loadFileCmd(a.path, a.analyze))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and key presses
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.machine.ChatStatus() == session.ChatAwaitingResponse {
			a.refreshTranscript()
		}
		return a, cmd

	case FileChangedMsg:
		a.log.Debug("file changed", logger.F("path", msg.Path))
		return a, loadFileCmd(msg.Path, true)

	case fileLoadedMsg:
		return a.handleFileLoaded(msg)

	case fileErrorMsg:
		a.notice = fmt.Sprintf("Could not load %s: %v", filepath.Base(msg.path), msg.err)
		a.log.Warn("file load failed", logger.F("path", msg.path), logger.Error(msg.err))
		return a, nil

	case session.UploadDoneMsg, session.SummaryDoneMsg, session.QueryDoneMsg, session.ProgressTickMsg:
		cmd := a.machine.Update(msg)
		a.syncFocus()
		a.refreshTranscript()
		return a, cmd
	}

	return a, nil
}

func (a *App) handleFileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	a.notice = ""
	a.preview = msg.preview
	a.machine.SelectFile(msg.file)
	a.syncFocus()
	a.refreshTranscript()

	if !msg.analyze {
		return a, nil
	}
	return a, a.startAnalysis()
}

func (a *App) startAnalysis() tea.Cmd {
	// a rejected start records its message on the session, which the sidebar shows
	cmd, _ := a.machine.StartAnalysis()
	a.refreshTranscript()
	return cmd
}

// handleKeyPress routes keys to the chat input while the chat panel is shown
// and to navigation otherwise.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return a.quit()
	case "tab":
		a.cycleView(1)
		return a, nil
	case "shift+tab":
		a.cycleView(-1)
		return a, nil
	}

	if a.machine.Snapshot().View() == session.ViewChat {
		return a.handleChatKey(msg)
	}

	switch key {
	case "q":
		return a.quit()
	case "a", "r":
		return a, a.startAnalysis()
	case "1", "2", "3":
		a.setView(session.Views[key[0]-'1'])
	case "c", "/":
		a.setView(session.ViewChat)
	}
	return a, nil
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := a.machine.SubmitInput()
		if cmd != nil {
			a.input.Reset()
			a.refreshTranscript()
		}
		return a, cmd
	case "esc":
		a.setView(session.ViewDashboard)
		return a, nil
	case "ctrl+e":
		a.showSources = !a.showSources
		a.refreshTranscript()
		return a, nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	if cmd, ok := a.pickSuggestion(msg); ok {
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.machine.SetInput(a.input.Value())
	return a, cmd
}

// pickSuggestion submits the numbered follow-up of the latest answer when a
// digit is typed into an empty input.
func (a *App) pickSuggestion(msg tea.KeyMsg) (tea.Cmd, bool) {
	if a.input.Value() != "" || msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return nil, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return nil, false
	}

	suggestions := components.LatestSuggestions(a.machine.Snapshot().History)
	i := int(r - '1')
	if i >= len(suggestions) {
		return nil, false
	}

	cmd := a.machine.PickSuggestion(suggestions[i])
	a.refreshTranscript()
	return cmd, true
}

func (a *App) setView(v session.View) {
	if !a.machine.SetView(v) {
		return
	}
	a.log.Debug("view changed", logger.F("view", string(v)))
	a.syncFocus()
	a.refreshTranscript()
}

// cycleView moves to the next enabled tab in direction dir
func (a *App) cycleView(dir int) {
	vm := a.machine.Snapshot()
	current := 0
	for i, v := range session.Views {
		if v == vm.View() {
			current = i
		}
	}
	n := len(session.Views)
	for step := 1; step < n; step++ {
		next := session.Views[((current+dir*step)%n+n)%n]
		if vm.Tabs.Enabled(next) {
			a.setView(next)
			return
		}
	}
}

// syncFocus focuses the chat input exactly when the chat panel is shown
func (a *App) syncFocus() {
	vm := a.machine.Snapshot()
	if vm.View() == session.ViewChat {
		a.input.Focus()
	} else {
		a.input.Blur()
	}
	if a.input.Value() != vm.Input {
		a.input.SetValue(vm.Input)
	}
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.quitting = true
	a.machine.Close()
	return a, tea.Quit
}

func (a *App) mainWidth() int {
	return max(a.width-sidebarWidth-4, 20)
}

// layout sizes the viewport and input after a resize
func (a *App) layout() {
	panelHeight := max(a.height-4, 6)
	a.viewport.Width = a.mainWidth() - 4
	a.viewport.Height = max(panelHeight-inputHeight-3, 3)
	a.input.Width = a.mainWidth() - 8
	a.refreshTranscript()
}

// refreshTranscript re-renders the chat history into the viewport and
// follows new turns.
func (a *App) refreshTranscript() {
	vm := a.machine.Snapshot()
	t := &components.Transcript{
		History:     vm.History,
		ShowSources: a.showSources,
		Pending:     vm.ChatStatus == session.ChatAwaitingResponse,
		Spinner:     a.spinner.View(),
		Width:       a.viewport.Width,
	}
	a.viewport.SetContent(t.Render())
	if len(vm.History) != a.turns || t.Pending {
		a.viewport.GotoBottom()
	}
	a.turns = len(vm.History)
}

// View renders the app
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	vm := a.machine.Snapshot()

	header := a.styles.Title.Render("loglens")
	if vm.FileName != "" {
		header += a.styles.Muted.Render(vm.FileName)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		a.renderSidebar(vm),
		lipgloss.JoinVertical(lipgloss.Left, a.renderTabs(vm), a.renderPanel(vm)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.renderHelp(vm))
}

func (a *App) renderSidebar(vm session.ViewModel) string {
	var lines []string

	lines = append(lines, a.styles.Header.Render("Log File"))
	if vm.FileName == "" {
		lines = append(lines, a.styles.Muted.Render("No file selected"))
	} else {
		lines = append(lines, vm.FileName)
		if p := a.preview; p != nil {
			lines = append(lines, a.styles.Muted.Render(fmt.Sprintf("%d lines", p.Lines)))
			for _, level := range p.LevelNames() {
				lines = append(lines, a.styles.Muted.Render(fmt.Sprintf("  %-8s %d", level, p.Levels[level])))
			}
		}
	}
	lines = append(lines, "", a.styles.Header.Render("Status"))

	switch vm.Status {
	case session.StatusIdle:
		if vm.FileName != "" {
			lines = append(lines, a.styles.Muted.Render("Ready. Press a to analyze."))
		} else {
			lines = append(lines, a.styles.Muted.Render("Waiting for a file"))
		}
	case session.StatusUploading:
		lines = append(lines, a.spinner.View()+" "+a.styles.Warning.Render("Analyzing..."))
		bar := components.NewProgressBar(sidebarWidth - 12)
		bar.SetProgress(len(vm.Progress), vm.StepCount)
		steps := &components.StepList{
			Completed: vm.CompletedSteps(),
			Current:   vm.CurrentStep(),
			Spinner:   a.spinner.View(),
			Width:     sidebarWidth - 4,
		}
		lines = append(lines, bar.Render(), steps.Render())
	case session.StatusAnalyzed:
		lines = append(lines, a.styles.Success.Render(
			fmt.Sprintf("Analysis complete. %d lines processed.", vm.Analysis.TotalLines)))
	case session.StatusFailed:
		lines = append(lines, a.styles.Error.Render("Analysis failed"))
	}

	if vm.Error != "" {
		lines = append(lines, "", a.styles.Error.Render(vm.Error))
	}
	if a.notice != "" {
		lines = append(lines, "", a.styles.Error.Render(a.notice))
	}

	return a.styles.Sidebar.
		Width(sidebarWidth).
		Height(max(a.height-4, 6)).
		Render(strings.Join(lines, "\n"))
}

func (a *App) renderTabs(vm session.ViewModel) string {
	tabs := vm.Tabs.Tabs()
	rendered := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		label := fmt.Sprintf("%d %s", i+1, tabTitle(tab.View))
		switch {
		case tab.Active && tab.Enabled:
			rendered = append(rendered, a.styles.ActiveTab.Render(label))
		case !tab.Enabled:
			rendered = append(rendered, a.styles.DisabledTab.Render(label))
		default:
			rendered = append(rendered, a.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func tabTitle(v session.View) string {
	switch v {
	case session.ViewDashboard:
		return "Dashboard"
	case session.ViewSummary:
		return "Summary"
	case session.ViewChat:
		return "Chat"
	}
	return string(v)
}

func (a *App) renderPanel(vm session.ViewModel) string {
	width := a.mainWidth()
	inner := width - 4

	var content string
	switch {
	case vm.View() == session.ViewChat && vm.Tabs.Chat:
		content = a.renderChat(vm)
	case vm.View() == session.ViewSummary && vm.Tabs.Summary:
		content = (&components.SummaryView{Report: vm.Summary, Width: inner}).Render()
	default:
		content = a.renderDashboard(vm, inner)
	}

	return a.styles.Panel.
		Width(width).
		Height(max(a.height-5, 5)).
		Render(content)
}

func (a *App) renderDashboard(vm session.ViewModel, width int) string {
	if vm.Analysis == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			a.styles.Header.Render(formatter.DashboardAwaiting),
			a.styles.Muted.Render(formatter.DashboardHint),
		)
	}

	half := max(width/2-1, 20)
	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		components.NewHealthChart(vm.Health(), vm.Analysis.TotalLines, half).Render(),
		components.NewErrorTypeChart(vm.Analysis.ErrorTypes, half).Render(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		components.AnalysisCards(vm.Analysis, width).Render(),
		charts,
		components.NewTimelineChart("Errors and Warnings over Time", vm.Analysis.TimeSeries, width, 12).Render(),
	)
}

func (a *App) renderChat(vm session.ViewModel) string {
	input := a.styles.Input.Width(a.mainWidth() - 6).Render(a.input.View())
	if vm.ChatStatus == session.ChatAwaitingResponse {
		input = a.styles.Input.Width(a.mainWidth() - 6).Render(a.styles.Muted.Render("Waiting for the answer..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.viewport.View(), input)
}

func (a *App) renderHelp(vm session.ViewModel) string {
	var keys []string
	if vm.View() == session.ViewChat && vm.Tabs.Chat {
		keys = []string{"enter send", "1-9 follow-up", "ctrl+e sources", "pgup/pgdn scroll", "tab switch", "esc back"}
	} else {
		keys = []string{"a analyze", "1-3 views", "tab switch", "c chat", "q quit"}
	}
	return a.styles.Help.Render(strings.Join(keys, " • "))
}
