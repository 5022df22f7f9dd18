package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/session"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	now func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{now: time.Now}
}

func (f *markdownFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder

	title := "Log Analysis Report"
	if doc.File != "" {
		title += ": " + doc.File
	}
	b.WriteString("# " + title + "\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	if doc.Error != "" {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", doc.Error)
	}
	if doc.Analysis == nil {
		if doc.Error == "" {
			b.WriteString("_" + DashboardHint + "_\n")
		}
		return []byte(b.String()), nil
	}

	f.writeSummaryTable(&b, doc)
	if len(doc.Analysis.ErrorTypes) > 0 {
		f.writeErrorTypes(&b, doc.Analysis.ErrorTypes)
	}
	if len(doc.Analysis.TimeSeries) > 0 {
		f.writeTimeline(&b, doc.Analysis.TimeSeries)
	}
	f.writeReport(&b, doc.Summary)
	if len(doc.History) > 0 {
		f.writeConversation(&b, doc.History)
	}

	return []byte(b.String()), nil
}

// writeSummaryTable writes the line counts per severity
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, doc *Document) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value | Share |\n")
	b.WriteString("|--------|------:|------:|\n")
	fmt.Fprintf(b, "| Total Lines | %s | |\n", formatNumber(doc.Analysis.TotalLines))
	for _, s := range doc.Health {
		fmt.Fprintf(b, "| %s | %s | %.1f%% |\n", s.Name, formatNumber(s.Count), percent(s.Count, doc.Analysis.TotalLines))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeErrorTypes(b *strings.Builder, types []api.ErrorType) {
	b.WriteString("## Error Types\n\n")
	b.WriteString("| Type | Count |\n")
	b.WriteString("|------|------:|\n")
	for _, et := range types {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(et.Name), formatNumber(et.Count))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeTimeline(b *strings.Builder, points []api.TimePoint) {
	b.WriteString("## Timeline\n\n")
	b.WriteString("| Time | Errors | Warnings |\n")
	b.WriteString("|------|-------:|---------:|\n")
	for _, p := range points {
		fmt.Fprintf(b, "| %s | %d | %d |\n", p.Time, p.Errors, p.Warnings)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeReport(b *strings.Builder, report *api.SummaryReport) {
	b.WriteString("## Log Summary Report\n\n")
	switch {
	case report == nil:
		b.WriteString("_" + SummaryMissing + "_\n\n")
		return
	case report.IsEmpty():
		b.WriteString("_" + SummaryEmpty + "_\n\n")
		return
	}

	if len(report.TopIncidents) > 0 {
		b.WriteString("### Top Incidents\n\n")
		for _, inc := range report.TopIncidents {
			fmt.Fprintf(b, "- **%s**", inc.Title)
			var meta []string
			if inc.Timestamp != "" {
				meta = append(meta, "Timestamp: "+inc.Timestamp)
			}
			if inc.Severity != "" {
				meta = append(meta, "Severity: "+inc.Severity)
			}
			if len(meta) > 0 {
				b.WriteString(" (" + strings.Join(meta, ", ") + ")")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(report.RecommendedActions) > 0 {
		b.WriteString("### Recommended Actions\n\n")
		for i, action := range report.RecommendedActions {
			fmt.Fprintf(b, "%d. %s\n", i+1, action)
		}
		b.WriteString("\n")
	}
}

func (f *markdownFormatter) writeConversation(b *strings.Builder, history []session.Turn) {
	b.WriteString("## Conversation\n\n")
	for _, turn := range history {
		if turn.Role == session.RoleUser {
			fmt.Fprintf(b, "**You:** %s\n\n", turn.Text)
			continue
		}
		fmt.Fprintf(b, "**Assistant:** %s\n\n", turn.Answer)
		if len(turn.RelevantLogs) > 0 {
			fmt.Fprintf(b, "<details><summary>Sources (%d)</summary>\n\n", len(turn.RelevantLogs))
			for _, snippet := range turn.RelevantLogs {
				b.WriteString("```\n" + snippet + "\n```\n\n")
			}
			b.WriteString("</details>\n\n")
		}
		for _, s := range turn.SuggestedFollowups {
			b.WriteString("- " + s + "\n")
		}
		if len(turn.SuggestedFollowups) > 0 {
			b.WriteString("\n")
		}
	}
}

// escapeCell keeps pipes from breaking table rows
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
