package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/logfile"
	"github.com/yildizm/loglens/internal/session"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(doc *Document) ([]byte, error)
}

// Options control terminal rendering
type Options struct {
	Color bool
	Emoji bool
}

// Placeholder texts shown when a panel has nothing to render
const (
	DashboardAwaiting = "Dashboard Awaiting Data"
	DashboardHint     = "Upload a log file to generate the dashboard."
	SummaryMissing    = "No summary report available. Please upload and analyze a log file."
	SummaryEmpty      = "No incidents or recommended actions found in the summary report."
	ChatPlaceholder   = "Ask a question about the analyzed logs."
)

// Document is everything a report can show about one session
type Document struct {
	File     string                  `json:"file,omitempty"`
	Status   string                  `json:"status"`
	Analysis *api.AnalysisResult     `json:"analysis,omitempty"`
	Health   []session.SeverityCount `json:"health,omitempty"`
	Summary  *api.SummaryReport      `json:"summary,omitempty"`
	History  []session.Turn          `json:"-"`
	Preview  *logfile.Preview        `json:"preview,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// FromViewModel builds a document from a session snapshot. preview may be nil.
func FromViewModel(vm session.ViewModel, preview *logfile.Preview) *Document {
	return &Document{
		File:     vm.FileName,
		Status:   vm.Status.String(),
		Analysis: vm.Analysis,
		Health:   vm.Health(),
		Summary:  vm.Summary,
		History:  vm.History,
		Preview:  preview,
		Error:    vm.Error,
	}
}

// New returns the formatter for a format name
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text", "terminal":
		return NewTerminal(opts), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unknown output format %s. Available formats: text, json, markdown, csv", format)
	}
}
