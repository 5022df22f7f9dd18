package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/loglens/internal/api"
)

var (
	errorColor   = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}
	warningColor = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	successColor = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// TimelineChart plots errors and warnings per time bucket as stacked columns
type TimelineChart struct {
	Title    string
	Points   []api.TimePoint
	Width    int
	Height   int
	ShowAxis bool
}

// NewTimelineChart creates a new timeline chart
func NewTimelineChart(title string, points []api.TimePoint, width, height int) *TimelineChart {
	return &TimelineChart{
		Title:    title,
		Points:   points,
		Width:    width,
		Height:   height,
		ShowAxis: true,
	}
}

// Render renders the timeline chart
func (t *TimelineChart) Render() string {
	title := lipgloss.NewStyle().Foreground(infoColor).Bold(true).Render(t.Title)
	muted := lipgloss.NewStyle().Foreground(mutedColor)

	content := []string{title, ""}
	if len(t.Points) == 0 {
		content = append(content, muted.Render("No timeline data available"))
	} else {
		content = append(content, t.renderChart())
		if t.ShowAxis {
			content = append(content, t.renderAxis())
		}
		content = append(content, "", muted.Render(t.renderSummary()))
	}

	joined := lipgloss.JoinVertical(lipgloss.Left, content...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(t.Width).
		Render(joined)
}

// columns is how many buckets fit next to the y-axis labels
func (t *TimelineChart) columns() int {
	n := t.Width - 10
	if n < 1 {
		n = 1
	}
	if n > len(t.Points) {
		n = len(t.Points)
	}
	return n
}

func (t *TimelineChart) renderChart() string {
	height := t.Height - 6
	if height < 3 {
		height = 3
	}

	maxTotal := 0
	for _, p := range t.Points {
		maxTotal = max(maxTotal, p.Errors+p.Warnings)
	}
	if maxTotal == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("No errors or warnings to plot")
	}

	axis := lipgloss.NewStyle().Foreground(mutedColor)
	errStyle := lipgloss.NewStyle().Foreground(errorColor)
	warnStyle := lipgloss.NewStyle().Foreground(warningColor)
	cols := t.columns()

	lines := make([]string, 0, height)
	for row := height; row >= 1; row-- {
		var line strings.Builder
		line.WriteString(axis.Render(fmt.Sprintf("%4d │", maxTotal*row/height)))

		for _, p := range t.Points[:cols] {
			total := scale(p.Errors+p.Warnings, maxTotal, height)
			errs := scale(p.Errors, maxTotal, height)
			switch {
			case row <= errs:
				line.WriteString(errStyle.Render("█"))
			case row <= total:
				line.WriteString(warnStyle.Render("█"))
			default:
				line.WriteString(" ")
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// scale maps v in [0, maxV] onto [0, rows], keeping non-zero values visible
func scale(v, maxV, rows int) int {
	if v <= 0 || maxV <= 0 {
		return 0
	}
	h := v * rows / maxV
	if h == 0 {
		h = 1
	}
	return h
}

func (t *TimelineChart) renderAxis() string {
	style := lipgloss.NewStyle().Foreground(mutedColor)
	cols := t.columns()

	first := t.Points[0].Time
	labels := "      " + first
	if cols > 1 {
		last := t.Points[cols-1].Time
		if gap := 6 + cols - len(labels) - len(last); gap > 0 {
			labels += strings.Repeat(" ", gap) + last
		} else {
			labels += " .. " + last
		}
	}
	return style.Render("     └"+strings.Repeat("─", cols)) + "\n" + style.Render(labels)
}

func (t *TimelineChart) renderSummary() string {
	errs, warns := 0, 0
	for _, p := range t.Points {
		errs += p.Errors
		warns += p.Warnings
	}
	summary := fmt.Sprintf("Buckets: %d | Errors: %d | Warnings: %d", len(t.Points), errs, warns)
	if hidden := len(t.Points) - t.columns(); hidden > 0 {
		summary += fmt.Sprintf(" | %d not shown", hidden)
	}
	return summary
}
