package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/session"
)

func analyzedDoc() *Document {
	analysis := &api.AnalysisResult{
		TotalLines:        500,
		SeverityBreakdown: map[string]int{"ERROR": 10, "WARNING": 5, "INFO": 485},
		ErrorTypes:        []api.ErrorType{{Name: "Timeout", Count: 7}, {Name: "Generic Error", Count: 3}},
		TimeSeries:        []api.TimePoint{{Time: "2025-01-01 10:00", Errors: 4, Warnings: 1}},
	}
	return FromViewModel(session.ViewModel{
		Status:   session.StatusAnalyzed,
		FileName: "app.log",
		Analysis: analysis,
		Summary: &api.SummaryReport{
			TopIncidents:       []api.Incident{{Title: "Timeout (7 occurrences)", Timestamp: "2025-01-01 10:00:30", Severity: "ERROR"}},
			RecommendedActions: []string{"Review upstream timeouts"},
		},
		History: []session.Turn{
			session.UserTurn("what timed out?"),
			session.AssistantTurn(&api.QueryResponse{
				Answer:            "The upstream API.",
				SuggestedFollowup: []string{"When did it start?"},
				RelevantLogs:      []string{"ERROR connection timed out"},
			}),
		},
	}, nil)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "text", "json", "markdown", "md", "csv"} {
		if _, err := New(name, Options{}); err != nil {
			t.Errorf("New(%q) error = %v", name, err)
		}
	}
	if _, err := New("xml", Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFromViewModel(t *testing.T) {
	doc := analyzedDoc()
	if doc.Status != "analyzed" || doc.File != "app.log" {
		t.Errorf("unexpected document header %q %q", doc.Status, doc.File)
	}
	if len(doc.Health) != 3 || doc.Health[0].Name != "ERROR" {
		t.Errorf("unexpected health %v", doc.Health)
	}
}

func TestTerminalFormat(t *testing.T) {
	out, err := NewTerminal(Options{}).Format(analyzedDoc())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"Log Analysis: app.log",
		"Status: analyzed",
		"Analysis complete. 500 lines processed.",
		"Total Lines",
		"Timeout",
		"2025-01-01 10:00",
		"Top Incidents",
		"1. Review upstream timeouts",
		"You: what timed out?",
		"Assistant: The upstream API.",
		"Sources (1)",
		"ERROR connection timed out",
		"[1] When did it start?",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Error("color disabled output must not contain escape codes")
	}
}

func TestTerminalPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
		want []string
		skip []string
	}{
		{
			name: "idle",
			doc:  &Document{Status: "idle"},
			want: []string{DashboardAwaiting, DashboardHint},
		},
		{
			name: "failed",
			doc:  &Document{Status: "failed", Error: "Unsupported file type"},
			want: []string{"Status: failed", "Unsupported file type"},
			skip: []string{DashboardAwaiting},
		},
		{
			name: "summary missing",
			doc:  &Document{Status: "analyzed", Analysis: &api.AnalysisResult{TotalLines: 1}},
			want: []string{SummaryMissing},
		},
		{
			name: "summary empty",
			doc:  &Document{Status: "analyzed", Analysis: &api.AnalysisResult{}, Summary: &api.SummaryReport{}},
			want: []string{SummaryEmpty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewTerminal(Options{}).Format(tt.doc)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(string(out), want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
			for _, skip := range tt.skip {
				if strings.Contains(string(out), skip) {
					t.Errorf("output should not contain %q", skip)
				}
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := NewJSON().Format(analyzedDoc())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded struct {
		File     string `json:"file"`
		Status   string `json:"status"`
		Analysis struct {
			TotalLines int `json:"total_lines"`
		} `json:"analysis"`
		Conversation []TurnOutput `json:"conversation"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.File != "app.log" || decoded.Status != "analyzed" || decoded.Analysis.TotalLines != 500 {
		t.Errorf("unexpected document %+v", decoded)
	}
	if len(decoded.Conversation) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(decoded.Conversation))
	}
	if decoded.Conversation[0].Role != "user" || decoded.Conversation[1].Text != "The upstream API." {
		t.Errorf("unexpected conversation %+v", decoded.Conversation)
	}
}

func TestMarkdownFormat(t *testing.T) {
	f := &markdownFormatter{now: func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }}
	out, err := f.Format(analyzedDoc())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Log Analysis Report: app.log",
		"Generated: 2025-01-02 03:04:05",
		"| Total Lines | 500 | |",
		"| ERROR | 10 | 2.0% |",
		"| Timeout | 7 |",
		"- **Timeout (7 occurrences)** (Timestamp: 2025-01-01 10:00:30, Severity: ERROR)",
		"1. Review upstream timeouts",
		"<summary>Sources (1)</summary>",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	out, err := NewCSV().Format(analyzedDoc())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "Time,Errors,Warnings\n2025-01-01 10:00,4,1\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	out, err = NewCSV().Format(&Document{Status: "idle"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(out) != "Time,Errors,Warnings\n" {
		t.Errorf("expected header only, got %q", out)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}
