package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/detoxscan/internal/tui/components/historylist"
	"github.com/julianstephens/detoxscan/internal/tui/components/result"
)

// chromeHeight is the space taken by the title and help lines.
const chromeHeight = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.detail.Width = msg.Width - h
		m.detail.Height = msg.Height - v - chromeHeight
		m.help.Width = msg.Width
		if m.current != nil {
			m.detail.SetContent(result.Render(m.current.Result, m.detail.Width))
		}
		return m, nil

	case historyLoadedMsg:
		h, v := docStyle.GetFrameSize()
		m.list = historylist.New(msg.items, m.width-h, m.height-v-chromeHeight)
		m.state = StateList
		return m, nil

	case historylist.OpenItemMsg:
		item := msg.Item
		m.current = &item
		m.detail.SetContent(result.Render(item.Result, m.detail.Width))
		m.detail.GotoTop()
		m.state = StateDetail
		return m, nil

	case tea.KeyMsg:
		if m.state == StateList && m.list.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case m.state == StateList && key.Matches(msg, m.keys.Enter):
			return m, m.list.Open()
		case m.state == StateDetail && key.Matches(msg, m.keys.Back):
			m.state = StateList
			m.current = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateList:
		m.list, cmd = m.list.Update(msg)
	case StateDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}
