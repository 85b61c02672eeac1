package ui

import "github.com/charmbracelet/lipgloss"

// Lip Gloss styles used by the TUI.
var (
	TitleStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	PendingStyle  lipgloss.Style
	AccentStyle   lipgloss.Style
	MutedStyle    lipgloss.Style
	ErrorStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
	DoneStyle     lipgloss.Style
	HelpStyle     lipgloss.Style
	FrameStyle    lipgloss.Style
	AlertStyle    lipgloss.Style
)

func init() { setStyles("classic") }

func setStyles(name string) {
	TitleStyle = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	AccentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	MutedStyle = lipgloss.NewStyle().Faint(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	DoneStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	HelpStyle = lipgloss.NewStyle().Faint(true)
	FrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	AlertStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(0, 1)

	switch name {
	case "neon":
		TitleStyle = TitleStyle.Foreground(lipgloss.Color("201"))
		AccentStyle = AccentStyle.Foreground(lipgloss.Color("51"))
		FrameStyle = FrameStyle.BorderForeground(lipgloss.Color("201"))
	case "mono":
		plain := lipgloss.NewStyle()
		SuccessStyle, PendingStyle, AccentStyle, ErrorStyle = plain, plain, plain, plain.Bold(true)
		FrameStyle = FrameStyle.Border(lipgloss.NormalBorder()).UnsetBorderForeground()
		AlertStyle = AlertStyle.Border(lipgloss.NormalBorder()).UnsetBorderForeground()
	}
}
