package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/loglens/internal/api"
)

// ListItem represents an item in a list
type ListItem struct {
	Title       string
	Description string
	Status      string
}

// List is a plain, optionally numbered list with a heading
type List struct {
	Title       string
	Items       []ListItem
	Width       int
	ShowNumbers bool
	// Selected highlights one item; -1 highlights none
	Selected int
}

// NewList creates a new list component
func NewList(title string, width int) *List {
	return &List{
		Title:       title,
		Width:       width,
		ShowNumbers: true,
		Selected:    -1,
	}
}

// AddItem adds an item to the list
func (l *List) AddItem(item ListItem) {
	l.Items = append(l.Items, item)
}

// Render renders the list
func (l *List) Render() string {
	header := lipgloss.NewStyle().Foreground(infoColor).Bold(true)

	content := make([]string, 0, len(l.Items)+1)
	if l.Title != "" {
		content = append(content, header.Render(l.Title))
	}
	for i, item := range l.Items {
		content = append(content, l.renderItem(item, i+1, i == l.Selected))
	}
	return lipgloss.JoinVertical(lipgloss.Left, content...)
}

func (l *List) renderItem(item ListItem, number int, selected bool) string {
	var parts []string
	if l.ShowNumbers {
		parts = append(parts, fmt.Sprintf("%d.", number))
	}
	parts = append(parts, item.Title)
	line := strings.Join(parts, " ")

	style := lipgloss.NewStyle()
	if selected {
		style = style.Background(lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"}).Foreground(infoColor)
	} else if item.Status != "" {
		style = style.Foreground(statusColor(item.Status))
	}

	out := style.Render(line)
	if item.Description != "" {
		desc := lipgloss.NewStyle().Foreground(mutedColor).PaddingLeft(3)
		out = lipgloss.JoinVertical(lipgloss.Left, out, desc.Render(item.Description))
	}
	if l.Width > 0 {
		return lipgloss.NewStyle().Width(l.Width).Render(out)
	}
	return out
}

// NewIncidentList lists the top incidents of a summary report. Timestamp
// and severity are shown when present.
func NewIncidentList(incidents []api.Incident, width int) *List {
	l := NewList("Top Incidents", width)
	l.ShowNumbers = false
	for _, inc := range incidents {
		var meta []string
		if inc.Timestamp != "" {
			meta = append(meta, "Timestamp: "+inc.Timestamp)
		}
		if inc.Severity != "" {
			meta = append(meta, "Severity: "+inc.Severity)
		}
		status := ""
		switch strings.ToUpper(inc.Severity) {
		case "ERROR", "CRITICAL", "FATAL":
			status = "error"
		case "WARNING", "WARN":
			status = "warning"
		}
		l.AddItem(ListItem{Title: "• " + inc.Title, Description: strings.Join(meta, "  "), Status: status})
	}
	return l
}

// NewActionList lists recommended actions in order
func NewActionList(actions []string, width int) *List {
	l := NewList("Recommended Actions", width)
	for _, a := range actions {
		l.AddItem(ListItem{Title: a})
	}
	return l
}

// NewSuggestionList lists follow-up questions numbered for keyboard selection
func NewSuggestionList(suggestions []string, width int) *List {
	l := NewList("", width)
	for _, s := range suggestions {
		l.AddItem(ListItem{Title: s, Status: "info"})
	}
	return l
}
