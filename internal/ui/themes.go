package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI colors
	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
	Progress lipgloss.AdaptiveColor
}

// palette lists light/dark pairs in Theme field order
type palette struct {
	primary, secondary, success, warning, errorColor, info, border, muted, selected, progress [2]string
}

func buildTheme(name string, p palette) Theme {
	c := func(pair [2]string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: pair[0], Dark: pair[1]}
	}
	return Theme{
		Name:      name,
		Primary:   c(p.primary),
		Secondary: c(p.secondary),
		Success:   c(p.success),
		Warning:   c(p.warning),
		Error:     c(p.errorColor),
		Info:      c(p.info),
		Border:    c(p.border),
		Muted:     c(p.muted),
		Selected:  c(p.selected),
		Progress:  c(p.progress),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default", palette{
		primary: [2]string{"#1E40AF", "#3B82F6"}, secondary: [2]string{"#6B7280", "#9CA3AF"},
		success: [2]string{"#059669", "#10B981"}, warning: [2]string{"#D97706", "#F59E0B"},
		errorColor: [2]string{"#DC2626", "#EF4444"}, info: [2]string{"#0891B2", "#06B6D4"},
		border: [2]string{"#D1D5DB", "#374151"}, muted: [2]string{"#6B7280", "#9CA3AF"},
		selected: [2]string{"#DBEAFE", "#1E3A8A"}, progress: [2]string{"#059669", "#10B981"},
	})

	HighContrastTheme = buildTheme("high-contrast", palette{
		primary: [2]string{"#000000", "#FFFFFF"}, secondary: [2]string{"#666666", "#BBBBBB"},
		success: [2]string{"#006600", "#00FF00"}, warning: [2]string{"#CC6600", "#FFAA00"},
		errorColor: [2]string{"#CC0000", "#FF4444"}, info: [2]string{"#0066CC", "#4499FF"},
		border: [2]string{"#000000", "#FFFFFF"}, muted: [2]string{"#666666", "#BBBBBB"},
		selected: [2]string{"#CCCCCC", "#333333"}, progress: [2]string{"#006600", "#00FF00"},
	})

	MinimalTheme = buildTheme("minimal", palette{
		primary: [2]string{"#2D3748", "#E2E8F0"}, secondary: [2]string{"#718096", "#A0AEC0"},
		success: [2]string{"#2F855A", "#68D391"}, warning: [2]string{"#C05621", "#F6AD55"},
		errorColor: [2]string{"#C53030", "#FC8181"}, info: [2]string{"#2B6CB0", "#63B3ED"},
		border: [2]string{"#E2E8F0", "#2D3748"}, muted: [2]string{"#A0AEC0", "#718096"},
		selected: [2]string{"#EDF2F7", "#2D3748"}, progress: [2]string{"#2F855A", "#68D391"},
	})
)

var themes = map[string]Theme{
	DefaultTheme.Name:      DefaultTheme,
	HighContrastTheme.Name: HighContrastTheme,
	MinimalTheme.Name:      MinimalTheme,
}

// Current active theme
var currentTheme = DefaultTheme

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	t, ok := themes[name]
	if ok {
		currentTheme = t
	}
	return ok
}

// ApplyColorMode forces lipgloss output on or off. "auto" leaves terminal
// detection alone, except that NO_COLOR still disables colors.
func ApplyColorMode(mode string) {
	switch mode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		if os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}

// GetStyles builds the styles for the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Padding(0, 2),

		ActiveTab: lipgloss.NewStyle().
			Background(theme.Selected).
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 2),

		DisabledTab: lipgloss.NewStyle().
			Foreground(theme.Border).
			Strikethrough(true).
			Padding(0, 2),

		Progress: lipgloss.NewStyle().
			Foreground(theme.Progress).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
	}
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	Title  lipgloss.Style
	Header lipgloss.Style
	Muted  lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Sidebar lipgloss.Style
	Panel   lipgloss.Style
	Input   lipgloss.Style

	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	DisabledTab lipgloss.Style

	Progress lipgloss.Style
	Help     lipgloss.Style
}
