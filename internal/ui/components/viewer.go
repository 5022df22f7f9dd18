package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/formatter"
	"github.com/yildizm/loglens/internal/session"
)

// Transcript renders the chat history. Follow-up suggestions are numbered
// only under the latest assistant turn, since that is the list the number
// keys pick from.
type Transcript struct {
	History     []session.Turn
	ShowSources bool
	Pending     bool
	Spinner     string
	Width       int
}

// Render renders the transcript
func (t *Transcript) Render() string {
	muted := lipgloss.NewStyle().Foreground(mutedColor)
	if len(t.History) == 0 && !t.Pending {
		return muted.Italic(true).Render(formatter.ChatPlaceholder)
	}

	latest := LatestSuggestions(t.History)
	lastAssistant := -1
	for i, turn := range t.History {
		if turn.Role == session.RoleAssistant {
			lastAssistant = i
		}
	}

	blocks := make([]string, 0, len(t.History)+1)
	for i, turn := range t.History {
		if turn.Role == session.RoleUser {
			blocks = append(blocks, t.renderUser(turn))
			continue
		}
		var suggestions []string
		if i == lastAssistant {
			suggestions = latest
		}
		blocks = append(blocks, t.renderAssistant(turn, suggestions))
	}

	if t.Pending {
		marker := t.Spinner
		if marker == "" {
			marker = "…"
		}
		blocks = append(blocks, marker+" "+muted.Render("Thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (t *Transcript) textWidth() int {
	return max(t.Width-2, 10)
}

func (t *Transcript) renderUser(turn session.Turn) string {
	label := lipgloss.NewStyle().Foreground(infoColor).Bold(true).Render("You")
	body := lipgloss.NewStyle().Width(t.textWidth()).Render(turn.Text)
	return label + "\n" + body
}

func (t *Transcript) renderAssistant(turn session.Turn, suggestions []string) string {
	label := lipgloss.NewStyle().Foreground(successColor).Bold(true).Render("Assistant")
	body := lipgloss.NewStyle().Width(t.textWidth()).Render(turn.Answer)
	if strings.HasPrefix(turn.Answer, "Error: ") {
		body = lipgloss.NewStyle().Foreground(errorColor).Width(t.textWidth()).Render(turn.Answer)
	}
	parts := []string{label, body}

	if n := len(turn.RelevantLogs); n > 0 {
		muted := lipgloss.NewStyle().Foreground(mutedColor)
		if !t.ShowSources {
			parts = append(parts, muted.Render(fmt.Sprintf("▸ Sources (%d)", n)))
		} else {
			parts = append(parts, muted.Render(fmt.Sprintf("▾ Sources (%d)", n)))
			snippet := lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(mutedColor).
				Foreground(mutedColor).
				PaddingLeft(1).
				Width(max(t.textWidth()-2, 8))
			for _, log := range turn.RelevantLogs {
				parts = append(parts, snippet.Render(log))
			}
		}
	}

	if len(suggestions) > 0 {
		parts = append(parts, NewSuggestionList(suggestions, 0).Render())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// LatestSuggestions returns the follow-ups offered by the most recent
// assistant turn.
func LatestSuggestions(history []session.Turn) []string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == session.RoleAssistant {
			return history[i].SuggestedFollowups
		}
	}
	return nil
}

// SummaryView renders a summary report with placeholders for the missing
// and empty cases.
type SummaryView struct {
	Report *api.SummaryReport
	Width  int
}

// Render renders the summary view
func (s *SummaryView) Render() string {
	muted := lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	title := lipgloss.NewStyle().Foreground(infoColor).Bold(true).Render("Log Summary Report")

	switch {
	case s.Report == nil:
		return title + "\n\n" + muted.Render(formatter.SummaryMissing)
	case s.Report.IsEmpty():
		return title + "\n\n" + muted.Render(formatter.SummaryEmpty)
	}

	sections := []string{title}
	if len(s.Report.TopIncidents) > 0 {
		sections = append(sections, NewIncidentList(s.Report.TopIncidents, s.Width).Render())
	}
	if len(s.Report.RecommendedActions) > 0 {
		sections = append(sections, NewActionList(s.Report.RecommendedActions, s.Width).Render())
	}
	return strings.Join(sections, "\n\n")
}
