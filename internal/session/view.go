package session

import "github.com/yildizm/loglens/internal/api"

// Selection is the derived tab state for one render
type Selection struct {
	// Current is the selected view and the panel that renders
	Current View

	Dashboard bool
	Summary   bool
	Chat      bool
}

// SelectView decides which panel renders and which tabs are enabled.
// Dashboard and chat need an analysis result, summary needs a report.
func SelectView(current View, analysis *api.AnalysisResult, summary *api.SummaryReport) Selection {
	if _, err := ParseView(string(current)); err != nil {
		current = ViewDashboard
	}
	return Selection{
		Current:   current,
		Dashboard: analysis != nil,
		Summary:   summary != nil,
		Chat:      analysis != nil,
	}
}

// Enabled reports whether the tab for v can be selected
func (s Selection) Enabled(v View) bool {
	switch v {
	case ViewDashboard:
		return s.Dashboard
	case ViewSummary:
		return s.Summary
	case ViewChat:
		return s.Chat
	default:
		return false
	}
}

// Tab is one entry of the tab bar
type Tab struct {
	View    View
	Enabled bool
	Active  bool
}

// Tabs returns the tab bar in display order
func (s Selection) Tabs() []Tab {
	tabs := make([]Tab, 0, len(Views))
	for _, v := range Views {
		tabs = append(tabs, Tab{View: v, Enabled: s.Enabled(v), Active: v == s.Current})
	}
	return tabs
}
