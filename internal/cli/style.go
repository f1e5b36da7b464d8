package cli

import "github.com/charmbracelet/lipgloss"

// Palette is based on Vitesse Dark Soft.
var (
	colorPrimary = lipgloss.Color("#4d9375")
	colorYellow  = lipgloss.Color("#e6cc77")
	colorRed     = lipgloss.Color("#cb7676")
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#bfbaaa"}

	okStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Underline(true)
)
