package widget

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header    lipgloss.Style
	bot       lipgloss.Style
	botLabel  lipgloss.Style
	user      lipgloss.Style
	userLabel lipgloss.Style
	typing    lipgloss.Style
	inputBox  lipgloss.Style
	help      lipgloss.Style
}

func newTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")).
			Padding(0, 1),
		bot:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		botLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		user:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		userLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		typing:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		inputBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("25")).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
