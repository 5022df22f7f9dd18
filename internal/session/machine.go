package session

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/logger"
)

// Machine owns one analysis session: the selected file, the
// upload -> summary pipeline, the simulated progress trace and the chat
// transcript.
//
// Machine is not safe for concurrent use. Its methods are meant to be
// called from a single event loop (a bubbletea program or Drive); the
// tea.Cmd values it returns run elsewhere and only report back through
// Update.
type Machine struct {
	backend  Backend
	log      *logger.Logger
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	file     *api.LogFile
	status   Status
	analysis *api.AnalysisResult
	summary  *api.SummaryReport
	err      string
	view     View
	progress *Tracker

	// generation identifies the current file selection / analysis run
	generation uint64
	run        *run

	history        []Turn
	chatStatus     ChatStatus
	chatGeneration uint64
	chatCancel     context.CancelFunc
	input          string
}

// run is the in-flight state of one analysis
type run struct {
	id         string
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	started    time.Time
}

// Option configures a Machine
type Option func(*Machine)

// WithSteps replaces the simulated progress steps
func WithSteps(steps []string) Option {
	return func(m *Machine) {
		m.progress = NewTracker(steps)
	}
}

// WithInterval sets the progress cadence
func WithInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLogger attaches a logger
func WithLogger(l *logger.Logger) Option {
	return func(m *Machine) {
		m.log = l
	}
}

// WithContext derives the session lifetime from ctx
func WithContext(ctx context.Context) Option {
	return func(m *Machine) {
		m.ctx, m.cancel = context.WithCancel(ctx)
	}
}

// New creates an idle session bound to backend
func New(backend Backend, opts ...Option) *Machine {
	m := &Machine{
		backend:  backend,
		interval: DefaultInterval,
		progress: NewTracker(DefaultSteps),
		view:     ViewDashboard,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ctx == nil {
		m.ctx, m.cancel = context.WithCancel(context.Background())
	}
	return m
}

// Close tears the session down: the progress timer stops, in-flight calls
// are cancelled and every later message or command is ignored.
func (m *Machine) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.endRun()
	if m.chatCancel != nil {
		m.chatCancel()
		m.chatCancel = nil
	}
	m.cancel()
	m.log.Debug("session closed")
}

// Closed reports whether Close was called
func (m *Machine) Closed() bool {
	return m.closed
}

// Status returns the lifecycle state
func (m *Machine) Status() Status {
	return m.status
}

// ChatStatus returns the chat sub-state
func (m *Machine) ChatStatus() ChatStatus {
	return m.chatStatus
}

// Generation returns the current selection/run generation
func (m *Machine) Generation() uint64 {
	return m.generation
}

// SelectFile makes file the session's file and discards everything derived
// from the previous one, including work still in flight.
func (m *Machine) SelectFile(file api.LogFile) {
	if m.closed {
		return
	}
	m.endRun()
	m.generation++

	f := file
	m.file = &f
	m.status = StatusIdle
	m.analysis = nil
	m.summary = nil
	m.err = ""
	m.progress.Reset()
	m.resetChat()
	m.view = ViewDashboard

	m.log.Debug("file selected",
		logger.F("file", file.Name),
		logger.F("bytes", len(file.Data)),
		logger.F("generation", m.generation))
}

// StartAnalysis uploads the selected file. Without a file it records and
// returns a *ValidationError and leaves the status untouched. While an
// upload is already outstanding it does nothing.
func (m *Machine) StartAnalysis() (tea.Cmd, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if m.file == nil {
		verr := &ValidationError{Field: "file", Message: MsgFileRequired}
		m.err = verr.Message
		m.log.Debug("analysis rejected", logger.F("reason", verr.String()))
		return nil, verr
	}
	if m.status == StatusUploading {
		return nil, nil
	}

	m.endRun()
	m.generation++
	m.status = StatusUploading
	m.err = ""
	m.analysis = nil
	m.summary = nil
	m.progress.Reset()
	m.resetChat()

	r := m.beginRun()
	m.log.Info("analysis started",
		logger.F("run", r.id),
		logger.F("file", m.file.Name),
		logger.F("generation", r.generation))

	return tea.Batch(
		m.uploadCmd(r, *m.file),
		tickCmd(r.ctx, m.interval, r.generation),
	), nil
}

// SubmitQuery sends text to the backend as the next chat turn. Blank text,
// a session without a settled analysis, or a query already awaiting its
// answer make it a no-op.
func (m *Machine) SubmitQuery(text string) tea.Cmd {
	if m.closed || strings.TrimSpace(text) == "" || !m.chatReady() || m.chatStatus == ChatAwaitingResponse {
		return nil
	}

	m.history = append(m.history, UserTurn(text))
	m.input = ""
	m.chatStatus = ChatAwaitingResponse
	m.view = ViewChat

	ctx, cancel := context.WithCancel(m.ctx)
	m.chatCancel = cancel
	generation := m.chatGeneration
	backend := m.backend

	m.log.Debug("query submitted", logger.F("turns", len(m.history)))

	return func() tea.Msg {
		resp, err := backend.SubmitQuery(ctx, text)
		return QueryDoneMsg{Generation: generation, Response: resp, Err: err}
	}
}

// PickSuggestion submits a suggested follow-up exactly like typed input
func (m *Machine) PickSuggestion(text string) tea.Cmd {
	return m.SubmitQuery(text)
}

// SetInput stores the pending chat input
func (m *Machine) SetInput(text string) {
	if m.closed {
		return
	}
	m.input = text
}

// SubmitInput submits the pending chat input
func (m *Machine) SubmitInput() tea.Cmd {
	return m.SubmitQuery(m.input)
}

// SetView switches panels. Switching to a disabled tab is rejected.
func (m *Machine) SetView(v View) bool {
	if m.closed {
		return false
	}
	if !m.selection().Enabled(v) {
		return false
	}
	m.view = v
	return true
}

// chatReady reports whether an analysis has settled. The summary reply
// resets the chat, so turns sent before it arrives would be lost.
func (m *Machine) chatReady() bool {
	return m.analysis != nil && m.status != StatusUploading
}

func (m *Machine) selection() Selection {
	sel := SelectView(m.view, m.analysis, m.summary)
	sel.Chat = sel.Chat && m.chatReady()
	return sel
}

// Update applies a result message and returns any follow-up command.
// Messages the session does not own are ignored.
func (m *Machine) Update(msg tea.Msg) tea.Cmd {
	if m.closed {
		return nil
	}

	switch msg := msg.(type) {
	case ProgressTickMsg:
		return m.handleTick(msg)
	case UploadDoneMsg:
		return m.handleUploadDone(msg)
	case SummaryDoneMsg:
		return m.handleSummaryDone(msg)
	case QueryDoneMsg:
		return m.handleQueryDone(msg)
	}
	return nil
}

func (m *Machine) handleTick(msg ProgressTickMsg) tea.Cmd {
	if !m.current(msg.Generation) || m.status != StatusUploading {
		return nil
	}
	m.progress.Advance()
	if m.progress.Done() {
		return nil
	}
	return tickCmd(m.run.ctx, m.interval, m.run.generation)
}

func (m *Machine) handleUploadDone(msg UploadDoneMsg) tea.Cmd {
	if !m.current(msg.Generation) || m.status != StatusUploading {
		m.log.Debug("dropping stale upload result", logger.F("generation", msg.Generation))
		return nil
	}

	rlog := m.log.With(logger.F("run", m.run.id))
	if msg.Err != nil {
		m.endRun()
		m.status = StatusFailed
		m.analysis = nil
		m.summary = nil
		m.err = api.Message(msg.Err, api.OpUpload)
		rlog.Warn("upload failed", logger.Error(msg.Err))
		return nil
	}

	m.analysis = msg.Result
	if m.analysis == nil {
		m.analysis = &api.AnalysisResult{}
	}
	rlog.Debug("upload complete", logger.F("total_lines", m.analysis.TotalLines))

	return m.summaryCmd(m.run)
}

func (m *Machine) handleSummaryDone(msg SummaryDoneMsg) tea.Cmd {
	if !m.current(msg.Generation) || m.status != StatusUploading || m.analysis == nil {
		m.log.Debug("dropping stale summary result", logger.F("generation", msg.Generation))
		return nil
	}

	rlog := m.log.With(logger.F("run", m.run.id))
	elapsed := time.Since(m.run.started)
	m.endRun()

	m.status = StatusAnalyzed
	if msg.Err != nil {
		// the dashboard stays usable without a summary
		m.summary = nil
		rlog.Warn("summary unavailable", logger.Error(msg.Err))
	} else {
		m.summary = msg.Report
		if m.summary == nil {
			m.summary = &api.SummaryReport{}
		}
	}
	m.resetChat()
	m.view = ViewDashboard

	rlog.Info("analysis complete", logger.Duration(elapsed), logger.F("summary", m.summary != nil))
	return nil
}

func (m *Machine) handleQueryDone(msg QueryDoneMsg) tea.Cmd {
	if msg.Generation != m.chatGeneration || m.chatStatus != ChatAwaitingResponse {
		m.log.Debug("dropping stale query result", logger.F("generation", msg.Generation))
		return nil
	}

	if msg.Err != nil {
		m.history = append(m.history, errorTurn(api.Message(msg.Err, api.OpQuery)))
		m.log.Warn("query failed", logger.Error(msg.Err))
	} else {
		m.history = append(m.history, AssistantTurn(msg.Response))
	}
	m.chatStatus = ChatIdle
	if m.chatCancel != nil {
		m.chatCancel()
		m.chatCancel = nil
	}
	return nil
}

func (m *Machine) uploadCmd(r *run, file api.LogFile) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		result, err := backend.UploadLog(r.ctx, file)
		return UploadDoneMsg{Generation: r.generation, Result: result, Err: err}
	}
}

func (m *Machine) summaryCmd(r *run) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		report, err := backend.FetchSummary(r.ctx)
		return SummaryDoneMsg{Generation: r.generation, Report: report, Err: err}
	}
}

// current reports whether a result of generation g may still be applied
func (m *Machine) current(g uint64) bool {
	return m.run != nil && m.run.generation == g && g == m.generation
}

func (m *Machine) beginRun() *run {
	ctx, cancel := context.WithCancel(m.ctx)
	m.run = &run{
		id:         uuid.NewString(),
		generation: m.generation,
		ctx:        ctx,
		cancel:     cancel,
		started:    time.Now(),
	}
	return m.run
}

// endRun stops the progress timer and cancels in-flight calls of the
// current run.
func (m *Machine) endRun() {
	if m.run == nil {
		return
	}
	m.run.cancel()
	m.run = nil
}

func (m *Machine) resetChat() {
	m.history = nil
	m.chatStatus = ChatIdle
	m.chatGeneration++
	if m.chatCancel != nil {
		m.chatCancel()
		m.chatCancel = nil
	}
}
