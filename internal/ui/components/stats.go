package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/session"
)

// StatsCard shows one headline number of the dashboard
type StatsCard struct {
	Title       string
	Value       string
	Description string
	Status      string // "success", "warning", "error", "info"
	Width       int
}

// NewStatsCard creates a new stats card
func NewStatsCard(title, value, description string) *StatsCard {
	return &StatsCard{
		Title:       title,
		Value:       value,
		Description: description,
		Status:      "info",
		Width:       20,
	}
}

// SetStatus sets the status color of the card
func (s *StatsCard) SetStatus(status string) *StatsCard {
	s.Status = status
	return s
}

// Render renders the stats card
func (s *StatsCard) Render() string {
	valueStyle := lipgloss.NewStyle().Foreground(statusColor(s.Status)).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render(s.Title),
		valueStyle.Render(s.Value),
		mutedStyle.Render(s.Description),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Align(lipgloss.Center).
		Width(s.Width).
		Render(content)
}

func statusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "success":
		return successColor
	case "warning":
		return warningColor
	case "error":
		return errorColor
	case "info":
		return infoColor
	default:
		return mutedColor
	}
}

// StatsRow lays cards out side by side
type StatsRow struct {
	cards     []*StatsCard
	cardWidth int
}

// NewStatsRow creates a row whose cards share the given width
func NewStatsRow(width int, cards ...*StatsCard) *StatsRow {
	r := &StatsRow{cards: cards}
	if len(cards) > 0 {
		// each card adds two border columns
		r.cardWidth = max(width/len(cards)-2, 8)
	}
	for _, c := range r.cards {
		c.Width = r.cardWidth
	}
	return r
}

// Render renders the row
func (r *StatsRow) Render() string {
	if len(r.cards) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(r.cards))
	for _, c := range r.cards {
		rendered = append(rendered, c.Render())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// AnalysisCards builds the headline cards for an analysis result
func AnalysisCards(analysis *api.AnalysisResult, width int) *StatsRow {
	errs := analysis.Severity("ERROR")
	warns := analysis.Severity("WARNING")

	errCard := NewStatsCard("Errors", formatNumber(errs), share(errs, analysis.TotalLines)).SetStatus("success")
	if errs > 0 {
		errCard.SetStatus("error")
	}
	warnCard := NewStatsCard("Warnings", formatNumber(warns), share(warns, analysis.TotalLines)).SetStatus("success")
	if warns > 0 {
		warnCard.SetStatus("warning")
	}

	return NewStatsRow(width,
		NewStatsCard("Total Lines", formatNumber(analysis.TotalLines), "processed"),
		errCard,
		warnCard,
		NewStatsCard("Error Types", strconv.Itoa(len(analysis.ErrorTypes)), "categories").SetStatus("muted"),
	)
}

// Bar is one row of a BarChart
type Bar struct {
	Label  string
	Value  int
	Detail string
	Color  lipgloss.AdaptiveColor
}

// BarChart draws labelled horizontal bars scaled to the largest value
type BarChart struct {
	Title string
	Bars  []Bar
	Width int
	Empty string
}

// Render renders the chart
func (c *BarChart) Render() string {
	title := lipgloss.NewStyle().Foreground(infoColor).Bold(true).Render(c.Title)
	muted := lipgloss.NewStyle().Foreground(mutedColor)

	content := []string{title, ""}
	if len(c.Bars) == 0 {
		content = append(content, muted.Render(c.Empty))
		return c.box(content)
	}

	labelWidth, maxValue := 0, 0
	for _, b := range c.Bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		maxValue = max(maxValue, b.Value)
	}
	labelWidth = min(labelWidth, 18)
	barWidth := max(c.Width-labelWidth-22, 4)

	for _, b := range c.Bars {
		label := truncate(b.Label, labelWidth)
		filled := 0
		if maxValue > 0 {
			filled = scale(b.Value, maxValue, barWidth)
		}
		bar := lipgloss.NewStyle().Foreground(b.Color).Render(strings.Repeat("█", filled)) +
			muted.Render(strings.Repeat("░", barWidth-filled))

		line := fmt.Sprintf("%-*s %s %s", labelWidth, label, bar, formatNumber(b.Value))
		if b.Detail != "" {
			line += " " + muted.Render(b.Detail)
		}
		content = append(content, line)
	}
	return c.box(content)
}

func (c *BarChart) box(content []string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(c.Width).
		Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

// NewErrorTypeChart charts error categories in the order the backend sent them
func NewErrorTypeChart(types []api.ErrorType, width int) *BarChart {
	chart := &BarChart{Title: "Error Types", Width: width, Empty: "No errors detected"}
	for _, et := range types {
		chart.Bars = append(chart.Bars, Bar{Label: et.Name, Value: et.Count, Color: errorColor})
	}
	return chart
}

// NewHealthChart charts the severity breakdown as shares of all lines
func NewHealthChart(health []session.SeverityCount, total, width int) *BarChart {
	chart := &BarChart{Title: "Overall Log Health", Width: width, Empty: "No severity data"}
	for _, s := range health {
		chart.Bars = append(chart.Bars, Bar{
			Label:  s.Name,
			Value:  s.Count,
			Detail: "(" + share(s.Count, total) + ")",
			Color:  SeverityColor(s.Name),
		})
	}
	return chart
}

// SeverityColor is the color used for a severity everywhere in the UI
func SeverityColor(severity string) lipgloss.AdaptiveColor {
	switch strings.ToUpper(severity) {
	case "ERROR", "CRITICAL", "FATAL":
		return errorColor
	case "WARNING", "WARN":
		return warningColor
	default:
		return infoColor
	}
}

func share(n, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

// formatNumber formats large numbers with commas
func formatNumber(n int) string {
	str := strconv.Itoa(n)
	if n < 0 || len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// truncate shortens s to at most width cells
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
