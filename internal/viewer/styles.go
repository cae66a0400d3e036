package viewer

import "github.com/charmbracelet/lipgloss"

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("244")).
			Align(lipgloss.Center, lipgloss.Center)
	placeholderFrameStyle = frameStyle.Copy().BorderForeground(lipgloss.Color("236"))
	frameErrorStyle       = frameStyle.Copy().BorderForeground(lipgloss.Color("160")).Foreground(lipgloss.Color("203"))
	errorPanelStyle       = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("160")).
				Padding(0, 1)
	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
