package historylist

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/detoxscan/internal/models"
)

// OpenItemMsg asks the parent to show the detail view for an item.
type OpenItemMsg struct {
	Item models.HistoryItem
}

type Item struct {
	Scan models.HistoryItem
}

func (i Item) Title() string {
	name := "scan"
	if i.Scan.ImageRef != "" {
		name = filepath.Base(i.Scan.ImageRef)
	}
	return fmt.Sprintf("%3d  %-8s  %s", i.Scan.Result.Score, i.Scan.Result.Status, name)
}

func (i Item) Description() string {
	_, _, toxic := i.Scan.Result.Counts()
	return fmt.Sprintf("%s · %d ingredients · %d flagged · %s",
		humanize.Time(i.Scan.Date), len(i.Scan.Result.Ingredients), toxic, shortID(i.Scan.ID))
}

func (i Item) FilterValue() string {
	return string(i.Scan.Result.Status) + " " + i.Scan.ImageRef
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type Model struct {
	list list.Model
}

func New(items []models.HistoryItem, width, height int) Model {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = Item{Scan: it}
	}

	l := list.New(listItems, list.NewDefaultDelegate(), width, height)
	l.Title = "Scan history"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("scan", "scans")

	return Model{list: l}
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the filter input has focus, in which case
// the parent must not interpret key presses.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Selected() (models.HistoryItem, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.HistoryItem{}, false
	}
	return item.Scan, true
}

// Open emits an OpenItemMsg for the selected item.
func (m Model) Open() tea.Cmd {
	item, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg { return OpenItemMsg{Item: item} }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}
