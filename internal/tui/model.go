// Package tui is the interactive scan history browser.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/detoxscan/internal/history"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/tui/components/historylist"
)

type SessionState int

const (
	StateLoading SessionState = iota
	StateList
	StateDetail
)

type historyLoadedMsg struct {
	items []models.HistoryItem
}

type Model struct {
	ctx      context.Context
	log      *history.Log
	state    SessionState
	keys     KeyMap
	help     help.Model
	list     historylist.Model
	detail   viewport.Model
	current  *models.HistoryItem
	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, log *history.Log) Model {
	return Model{
		ctx:    ctx,
		log:    log,
		state:  StateLoading,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		list:   historylist.New(nil, 0, 0),
		detail: viewport.New(0, 0),
	}
}

func (m Model) loadHistory() tea.Msg {
	return historyLoadedMsg{items: m.log.History(m.ctx)}
}

func (m Model) Init() tea.Cmd {
	return m.loadHistory
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(ctx context.Context, log *history.Log) error {
	p := tea.NewProgram(NewModel(ctx, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
