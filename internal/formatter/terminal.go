package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/yildizm/go-termfmt"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/session"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions

	red    *color.Color
	yellow *color.Color
	green  *color.Color
	cyan   *color.Color
	faint  *color.Color
}

// NewTerminal creates a new terminal formatter
func NewTerminal(o Options) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = o.Color
	opts.Emoji = o.Emoji

	f := &terminalFormatter{
		opts:   opts,
		red:    color.New(color.FgHiRed),
		yellow: color.New(color.FgHiYellow),
		green:  color.New(color.FgHiGreen),
		cyan:   color.New(color.FgHiCyan),
		faint:  color.New(color.Faint),
	}
	if !o.Color {
		for _, c := range []*color.Color{f.red, f.yellow, f.green, f.cyan, f.faint} {
			c.DisableColor()
		}
	}
	return f
}

func (f *terminalFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, doc)
	f.writeStatus(&b, doc)

	if doc.Analysis == nil {
		if doc.Status != session.StatusFailed.String() {
			b.WriteString(DashboardAwaiting + "\n" + DashboardHint + "\n")
		}
		return []byte(b.String()), nil
	}

	f.writeStatistics(&b, doc)
	f.writeHealth(&b, doc.Health, doc.Analysis.TotalLines)
	if len(doc.Analysis.ErrorTypes) > 0 {
		f.writeErrorTypes(&b, doc.Analysis.ErrorTypes)
	}
	if len(doc.Analysis.TimeSeries) > 0 {
		f.writeTimeline(&b, doc.Analysis.TimeSeries)
	}
	f.writeSummary(&b, doc.Summary)
	if len(doc.History) > 0 {
		f.writeConversation(&b, doc.History)
	}

	return []byte(b.String()), nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder, doc *Document) {
	header := "Log Analysis"
	if doc.File != "" {
		header += ": " + doc.File
	}
	width := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}

func (f *terminalFormatter) writeStatus(b *strings.Builder, doc *Document) {
	status := doc.Status
	switch status {
	case session.StatusAnalyzed.String():
		status = f.green.Sprint(status)
	case session.StatusFailed.String():
		status = f.red.Sprint(status)
	case session.StatusUploading.String():
		status = f.yellow.Sprint(status)
	}
	fmt.Fprintf(b, "Status: %s\n", status)

	if doc.Error != "" {
		fmt.Fprintf(b, "%s %s\n", termfmt.GetEmoji("error", f.opts), f.red.Sprint(doc.Error))
	}
	if doc.Analysis != nil {
		fmt.Fprintf(b, "%s Analysis complete. %s lines processed.\n",
			termfmt.GetEmoji("success", f.opts), formatNumber(doc.Analysis.TotalLines))
	}
	b.WriteString("\n")
}

// writeStatistics writes statistics with tree-style formatting using go-termfmt
func (f *terminalFormatter) writeStatistics(b *strings.Builder, doc *Document) {
	b.WriteString(termfmt.GetEmoji("statistics", f.opts) + " Statistics\n")

	a := doc.Analysis
	errs, warns := a.Severity("ERROR"), a.Severity("WARNING")
	items := []termfmt.TreeItem{
		{Label: "Total Lines", Value: formatNumber(a.TotalLines)},
		{Label: "Errors", Value: fmt.Sprintf("%d (%.1f%%)", errs, percent(errs, a.TotalLines))},
		{Label: "Warnings", Value: fmt.Sprintf("%d (%.1f%%)", warns, percent(warns, a.TotalLines))},
	}

	if p := doc.Preview; p != nil {
		items = append(items, termfmt.TreeItem{Label: "Parsed Entries", Value: formatNumber(p.Entries)})
		if span := p.Span(); span > 0 {
			items = append(items, termfmt.TreeItem{
				Label: "Time Range",
				Value: fmt.Sprintf("%s → %s (%s)", p.First.Format("2006-01-02 15:04:05"), p.Last.Format("2006-01-02 15:04:05"), span),
			})
		}
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeHealth writes the severity breakdown with proportional bars
func (f *terminalFormatter) writeHealth(b *strings.Builder, health []session.SeverityCount, total int) {
	if len(health) == 0 {
		return
	}
	b.WriteString(termfmt.GetEmoji("insights", f.opts) + " Overall Log Health\n")

	for _, s := range health {
		share := percent(s.Count, total)
		label := fmt.Sprintf("%-8s", s.Name)
		switch s.Name {
		case "ERROR":
			label = f.red.Sprint(label)
		case "WARNING":
			label = f.yellow.Sprint(label)
		default:
			label = f.cyan.Sprint(label)
		}
		fmt.Fprintf(b, "  %s %s %s (%.1f%%)\n",
			label, termfmt.CreateConfidenceBar(share/100, f.opts), formatNumber(s.Count), share)
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writeErrorTypes(b *strings.Builder, types []api.ErrorType) {
	b.WriteString(termfmt.GetEmoji("error", f.opts) + " Error Types\n")

	total := 0
	for _, et := range types {
		total += et.Count
	}

	table := f.table(b, []string{"TYPE", "COUNT", "SHARE"})
	for _, et := range types {
		_ = table.Append([]string{et.Name, formatNumber(et.Count), fmt.Sprintf("%.1f%%", percent(et.Count, total))})
	}
	_ = table.Render()
	b.WriteString("\n")
}

func (f *terminalFormatter) writeTimeline(b *strings.Builder, points []api.TimePoint) {
	b.WriteString(termfmt.GetEmoji("statistics", f.opts) + " Timeline\n")

	table := f.table(b, []string{"TIME", "ERRORS", "WARNINGS"})
	for _, p := range points {
		_ = table.Append([]string{p.Time, fmt.Sprintf("%d", p.Errors), fmt.Sprintf("%d", p.Warnings)})
	}
	_ = table.Render()
	b.WriteString("\n")
}

// writeSummary writes incidents and recommended actions
func (f *terminalFormatter) writeSummary(b *strings.Builder, report *api.SummaryReport) {
	b.WriteString(termfmt.GetEmoji("recommendations", f.opts) + " Log Summary Report\n")

	switch {
	case report == nil:
		b.WriteString(f.faint.Sprint(SummaryMissing) + "\n\n")
		return
	case report.IsEmpty():
		b.WriteString(f.faint.Sprint(SummaryEmpty) + "\n\n")
		return
	}

	if len(report.TopIncidents) > 0 {
		b.WriteString("Top Incidents\n")
		items := make([]termfmt.TreeItem, 0, len(report.TopIncidents))
		for i, inc := range report.TopIncidents {
			item := termfmt.TreeItem{
				Label: strings.TrimSpace(severityEmoji(inc.Severity, f.opts) + " " + inc.Title),
				Last:  i == len(report.TopIncidents)-1,
			}
			if inc.Timestamp != "" {
				item.Children = append(item.Children, termfmt.TreeItem{Label: "Timestamp", Value: inc.Timestamp})
			}
			if inc.Severity != "" {
				item.Children = append(item.Children, termfmt.TreeItem{Label: "Severity", Value: inc.Severity})
			}
			if n := len(item.Children); n > 0 {
				item.Children[n-1].Last = true
			}
			items = append(items, item)
		}
		b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
	}

	if len(report.RecommendedActions) > 0 {
		b.WriteString("Recommended Actions\n")
		for i, action := range report.RecommendedActions {
			fmt.Fprintf(b, "%d. %s\n", i+1, action)
		}
	}
	b.WriteString("\n")
}

// writeConversation writes the chat transcript with sources and follow-ups
func (f *terminalFormatter) writeConversation(b *strings.Builder, history []session.Turn) {
	b.WriteString(termfmt.GetEmoji("help", f.opts) + " Conversation\n")

	for _, turn := range history {
		if turn.Role == session.RoleUser {
			fmt.Fprintf(b, "%s %s\n", f.cyan.Sprint("You:"), turn.Text)
			continue
		}

		fmt.Fprintf(b, "%s %s\n", f.green.Sprint("Assistant:"), turn.Answer)
		if n := len(turn.RelevantLogs); n > 0 {
			fmt.Fprintf(b, "  Sources (%d)\n", n)
			for _, snippet := range turn.RelevantLogs {
				for _, line := range strings.Split(snippet, "\n") {
					b.WriteString("    " + f.faint.Sprint(line) + "\n")
				}
			}
		}
		for i, s := range turn.SuggestedFollowups {
			fmt.Fprintf(b, "  [%d] %s\n", i+1, s)
		}
	}
	b.WriteString("\n")
}

// table creates a new tablewriter configured with consistent styling
func (f *terminalFormatter) table(b *strings.Builder, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(b,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
