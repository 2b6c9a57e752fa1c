package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	muted  = lipgloss.AdaptiveColor{Light: "245", Dark: "241"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(accent).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().Foreground(muted).PaddingLeft(1)

	emptyStyle = lipgloss.NewStyle().Foreground(muted).Italic(true).MarginTop(1)

	docStyle = lipgloss.NewStyle().Margin(1, 2)
)
