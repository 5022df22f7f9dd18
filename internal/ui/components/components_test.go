package components

import (
	"strings"
	"testing"

	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/formatter"
	"github.com/yildizm/loglens/internal/session"
)

func TestTimelineChart(t *testing.T) {
	points := []api.TimePoint{
		{Time: "2025-01-01 10:00", Errors: 3, Warnings: 1},
		{Time: "2025-01-01 10:05", Errors: 0, Warnings: 2},
	}
	out := NewTimelineChart("Timeline", points, 60, 12).Render()

	for _, want := range []string{"Timeline", "2025-01-01 10:00", "Buckets: 2 | Errors: 3 | Warnings: 3", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q\n%s", want, out)
		}
	}

	empty := NewTimelineChart("Timeline", nil, 60, 12).Render()
	if !strings.Contains(empty, "No timeline data available") {
		t.Errorf("expected empty placeholder, got\n%s", empty)
	}
}

func TestTimelineChartClipsColumns(t *testing.T) {
	points := make([]api.TimePoint, 100)
	for i := range points {
		points[i] = api.TimePoint{Time: "t", Errors: 1}
	}
	out := NewTimelineChart("Timeline", points, 60, 10).Render()
	if !strings.Contains(out, "50 not shown") {
		t.Errorf("expected clipped buckets to be reported\n%s", out)
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		v, maxV, rows, want int
	}{
		{0, 10, 5, 0},
		{10, 10, 5, 5},
		{1, 100, 5, 1},
		{5, 10, 4, 2},
		{3, 0, 4, 0},
	}
	for _, tt := range tests {
		if got := scale(tt.v, tt.maxV, tt.rows); got != tt.want {
			t.Errorf("scale(%d, %d, %d) = %d, want %d", tt.v, tt.maxV, tt.rows, got, tt.want)
		}
	}
}

func TestHealthChart(t *testing.T) {
	health := []session.SeverityCount{{Name: "ERROR", Count: 10}, {Name: "INFO", Count: 90}}
	out := NewHealthChart(health, 100, 60).Render()

	for _, want := range []string{"Overall Log Health", "ERROR", "(10.0%)", "INFO", "(90.0%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Error("severities without lines must not be plotted")
	}
}

func TestErrorTypeChart(t *testing.T) {
	out := NewErrorTypeChart([]api.ErrorType{{Name: "Timeout", Count: 1200}}, 60).Render()
	if !strings.Contains(out, "Timeout") || !strings.Contains(out, "1,200") {
		t.Errorf("unexpected chart\n%s", out)
	}

	empty := NewErrorTypeChart(nil, 60).Render()
	if !strings.Contains(empty, "No errors detected") {
		t.Errorf("expected empty placeholder\n%s", empty)
	}
}

func TestAnalysisCards(t *testing.T) {
	analysis := &api.AnalysisResult{
		TotalLines:        2500,
		SeverityBreakdown: map[string]int{"ERROR": 25},
		ErrorTypes:        []api.ErrorType{{Name: "Timeout", Count: 25}},
	}
	out := AnalysisCards(analysis, 100).Render()
	for _, want := range []string{"Total Lines", "2,500", "Errors", "25", "1.0%", "Error Types"} {
		if !strings.Contains(out, want) {
			t.Errorf("cards missing %q\n%s", want, out)
		}
	}
}

func TestStepList(t *testing.T) {
	out := (&StepList{Completed: []string{"Uploading"}, Current: "Parsing", Spinner: "*", Width: 30}).Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if !strings.Contains(lines[0], "✓") || !strings.Contains(lines[0], "Uploading") {
		t.Errorf("unexpected completed step %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "*") || !strings.Contains(lines[1], "Parsing") {
		t.Errorf("unexpected current step %q", lines[1])
	}

	if out := (&StepList{}).Render(); out != "" {
		t.Errorf("empty step list rendered %q", out)
	}
}

func TestProgressBar(t *testing.T) {
	bar := NewProgressBar(10)
	bar.SetProgress(3, 6)
	out := bar.Render()
	if !strings.Contains(out, "3/6") || strings.Count(out, "█") != 5 {
		t.Errorf("unexpected bar %q", out)
	}

	bar.SetProgress(9, 6)
	if strings.Count(bar.Render(), "█") != 10 {
		t.Error("bar must not overflow its width")
	}
}

func TestTranscript(t *testing.T) {
	history := []session.Turn{
		session.UserTurn("what broke?"),
		session.AssistantTurn(&api.QueryResponse{
			Answer:            "The database.",
			SuggestedFollowup: []string{"When?", "Why?"},
			RelevantLogs:      []string{"ERROR db down"},
		}),
	}

	collapsed := (&Transcript{History: history, Width: 60}).Render()
	for _, want := range []string{"You", "what broke?", "Assistant", "The database.", "▸ Sources (1)", "1. When?", "2. Why?"} {
		if !strings.Contains(collapsed, want) {
			t.Errorf("transcript missing %q\n%s", want, collapsed)
		}
	}
	if strings.Contains(collapsed, "ERROR db down") {
		t.Error("collapsed sources must hide snippets")
	}

	expanded := (&Transcript{History: history, ShowSources: true, Width: 60}).Render()
	if !strings.Contains(expanded, "▾ Sources (1)") || !strings.Contains(expanded, "ERROR db down") {
		t.Errorf("expanded sources missing snippets\n%s", expanded)
	}

	pending := (&Transcript{History: history[:1], Pending: true, Spinner: "*", Width: 60}).Render()
	if !strings.Contains(pending, "* ") || !strings.Contains(pending, "Thinking...") {
		t.Errorf("pending indicator missing\n%s", pending)
	}

	if out := (&Transcript{Width: 60}).Render(); !strings.Contains(out, formatter.ChatPlaceholder) {
		t.Errorf("expected placeholder, got %q", out)
	}
}

func TestTranscriptNumbersLatestSuggestionsOnly(t *testing.T) {
	history := []session.Turn{
		session.UserTurn("a"),
		session.AssistantTurn(&api.QueryResponse{Answer: "first", SuggestedFollowup: []string{"old"}}),
		session.UserTurn("b"),
		session.AssistantTurn(&api.QueryResponse{Answer: "second", SuggestedFollowup: []string{"new"}}),
	}
	out := (&Transcript{History: history, Width: 60}).Render()
	if strings.Contains(out, "old") || !strings.Contains(out, "1. new") {
		t.Errorf("unexpected suggestions\n%s", out)
	}
	if got := LatestSuggestions(history); len(got) != 1 || got[0] != "new" {
		t.Errorf("LatestSuggestions() = %v", got)
	}
	if got := LatestSuggestions(history[:1]); got != nil {
		t.Errorf("LatestSuggestions() without answers = %v", got)
	}
}

func TestSummaryView(t *testing.T) {
	tests := []struct {
		name   string
		report *api.SummaryReport
		want   []string
	}{
		{"missing", nil, []string{formatter.SummaryMissing}},
		{"empty", &api.SummaryReport{}, []string{formatter.SummaryEmpty}},
		{
			name: "full",
			report: &api.SummaryReport{
				TopIncidents:       []api.Incident{{Title: "Timeout (3 occurrences)", Timestamp: "2025-01-01 10:00:00", Severity: "ERROR"}},
				RecommendedActions: []string{"Check the upstream"},
			},
			want: []string{"Top Incidents", "Timeout (3 occurrences)", "Timestamp: 2025-01-01 10:00:00", "Severity: ERROR", "1. Check the upstream"},
		},
		{
			name:   "incident without metadata",
			report: &api.SummaryReport{TopIncidents: []api.Incident{{Title: "Odd"}}},
			want:   []string{"Odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := (&SummaryView{Report: tt.report, Width: 80}).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("summary missing %q\n%s", want, out)
				}
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{7: "7", 1000: "1,000", 987654: "987,654", -5: "-5"}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Payment Failed", 7); got != "Paymen…" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}
