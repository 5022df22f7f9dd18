package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar shows how many of the simulated steps have been revealed
type ProgressBar struct {
	Width   int
	Current int
	Total   int
	Label   string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) *ProgressBar {
	return &ProgressBar{Width: width}
}

// SetProgress updates the progress
func (p *ProgressBar) SetProgress(current, total int) {
	p.Current = current
	p.Total = total
}

// Render renders the progress bar
func (p *ProgressBar) Render() string {
	progressStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	ratio := 0.0
	if p.Total > 0 {
		ratio = float64(p.Current) / float64(p.Total)
	}
	ratio = min(max(ratio, 0), 1)

	filled := int(float64(p.Width) * ratio)
	bar := progressStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", p.Width-filled))

	result := fmt.Sprintf("%s %d/%d", bar, p.Current, p.Total)
	if p.Label != "" {
		result = p.Label + "\n" + result
	}
	return result
}

// StepList renders the progress trace: finished steps with a check mark
// and the most recent one with the spinner frame.
type StepList struct {
	Completed []string
	Current   string
	Spinner   string
	Width     int
}

// Render renders the step list
func (s *StepList) Render() string {
	done := lipgloss.NewStyle().Foreground(successColor)
	muted := lipgloss.NewStyle().Foreground(mutedColor)
	active := lipgloss.NewStyle().Foreground(infoColor).Bold(true)

	textWidth := max(s.Width-2, 4)
	lines := make([]string, 0, len(s.Completed)+1)
	for _, step := range s.Completed {
		lines = append(lines, done.Render("✓")+" "+muted.Render(truncate(step, textWidth)))
	}
	if s.Current != "" {
		marker := s.Spinner
		if marker == "" {
			marker = "•"
		}
		lines = append(lines, marker+" "+active.Render(truncate(s.Current, textWidth)))
	}
	return strings.Join(lines, "\n")
}
