package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var title, body, status string
	switch m.state {
	case StateLoading:
		title = "Scan history"
		body = "Loading..."
	case StateList:
		title = "Scan history"
		if m.list.Len() == 0 {
			body = emptyStyle.Render("No scans yet. Run 'detoxscan scan <image>' to analyze a label.")
		} else {
			body = m.list.View()
		}
	case StateDetail:
		title = "Scan result"
		if m.current != nil {
			status = fmt.Sprintf("%s · %s", m.current.Date.Local().Format("Mon Jan 2 15:04"), humanize.Time(m.current.Date))
			if m.current.ImageRef != "" {
				status += " · " + m.current.ImageRef
			}
		}
		body = m.detail.View()
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		statusBarStyle.Render(status),
		body,
		m.help.View(m.keys),
	)
	return docStyle.Render(ui)
}
