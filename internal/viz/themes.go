package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/driftfield/internal/field"
)

// Theme defines the color scheme of the panel around the canvas.
type Theme struct {
	Name      field.Theme
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:      field.Dark,
		Primary:   lipgloss.Color("#8B5CF6"), // violet
		Secondary: lipgloss.Color("#06B6D4"), // cyan
		Accent:    lipgloss.Color("#3B82F6"),
		Text:      lipgloss.Color("#E5E7EB"),
		Muted:     lipgloss.Color("#6B7280"),
		Border:    lipgloss.Color("#374151"),
		Success:   lipgloss.Color("#10B981"),
		Warning:   lipgloss.Color("#F59E0B"),
		Error:     lipgloss.Color("#EF4444"),
	}

	ThemeLight = Theme{
		Name:      field.Light,
		Primary:   lipgloss.Color("#7C3AED"),
		Secondary: lipgloss.Color("#0891B2"),
		Accent:    lipgloss.Color("#2563EB"),
		Text:      lipgloss.Color("#1F2937"),
		Muted:     lipgloss.Color("#9CA3AF"),
		Border:    lipgloss.Color("#D1D5DB"),
		Success:   lipgloss.Color("#059669"),
		Warning:   lipgloss.Color("#D97706"),
		Error:     lipgloss.Color("#DC2626"),
	}

	Themes = []Theme{ThemeDark, ThemeLight}
)

// GetTheme returns the panel theme matching a particle theme.
func GetTheme(t field.Theme) Theme {
	for _, th := range Themes {
		if th.Name == t {
			return th
		}
	}
	return ThemeDark
}
