package session

import "github.com/yildizm/loglens/internal/api"

// ViewModel is a read-only copy of everything the views render.
// Analysis and Summary point at the session's payloads and must not be
// modified.
type ViewModel struct {
	Status     Status
	FileName   string
	Analysis   *api.AnalysisResult
	Summary    *api.SummaryReport
	History    []Turn
	ChatStatus ChatStatus
	Progress   []string
	StepCount  int
	Error      string
	Tabs       Selection
	Input      string
	Generation uint64
}

// Snapshot captures the current view model
func (m *Machine) Snapshot() ViewModel {
	vm := ViewModel{
		Status:     m.status,
		Analysis:   m.analysis,
		Summary:    m.summary,
		History:    append([]Turn(nil), m.history...),
		ChatStatus: m.chatStatus,
		Progress:   m.progress.Trace(),
		StepCount:  m.progress.Total(),
		Error:      m.err,
		Tabs:       m.selection(),
		Input:      m.input,
		Generation: m.generation,
	}
	if m.file != nil {
		vm.FileName = m.file.Name
	}
	return vm
}

// View is the selected panel
func (vm ViewModel) View() View {
	return vm.Tabs.Current
}

// Uploading reports whether an analysis is outstanding
func (vm ViewModel) Uploading() bool {
	return vm.Status == StatusUploading
}

// CompletedSteps are the revealed steps shown as finished: all but the
// most recent one.
func (vm ViewModel) CompletedSteps() []string {
	if len(vm.Progress) == 0 {
		return nil
	}
	return vm.Progress[:len(vm.Progress)-1]
}

// CurrentStep is the most recently revealed step, shown as in progress
func (vm ViewModel) CurrentStep() string {
	if len(vm.Progress) == 0 {
		return ""
	}
	return vm.Progress[len(vm.Progress)-1]
}

// CanSubmit reports whether a chat submission of input would be accepted
func (vm ViewModel) CanSubmit() bool {
	return vm.Tabs.Chat && vm.ChatStatus == ChatIdle
}

// SeverityCount is one slice of the log health breakdown
type SeverityCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HealthSeverities are the plotted severities in display order
var HealthSeverities = []string{"ERROR", "WARNING", "INFO"}

// Health returns the plotted severities, leaving out those with no lines
func (vm ViewModel) Health() []SeverityCount {
	var out []SeverityCount
	for _, name := range HealthSeverities {
		if n := vm.Analysis.Severity(name); n > 0 {
			out = append(out, SeverityCount{Name: name, Count: n})
		}
	}
	return out
}
