package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/detoxscan/internal/history"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/storage"
)

func newTestModel(t *testing.T, scores ...int) Model {
	t.Helper()
	ctx := context.Background()
	log := history.New(storage.NewMemoryStore())
	for _, s := range scores {
		log.SaveScan(ctx, models.AnalysisResult{Score: s, Status: models.StatusForScore(s)}, "")
	}
	m := NewModel(ctx, log)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	next, _ = next.Update(m.loadHistory())
	return next.(Model)
}

func TestModel_LoadsHistory(t *testing.T) {
	m := newTestModel(t, 90, 40)
	if m.state != StateList {
		t.Fatalf("state = %v, want StateList", m.state)
	}
	if m.list.Len() != 2 {
		t.Errorf("list has %d items, want 2", m.list.Len())
	}
}

func TestModel_EmptyHistoryView(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "No scans yet") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestModel_OpenAndBack(t *testing.T) {
	m := newTestModel(t, 55)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	next, _ = next.Update(cmd())
	m = next.(Model)
	if m.state != StateDetail || m.current == nil {
		t.Fatalf("state = %v, want StateDetail", m.state)
	}
	if !strings.Contains(m.View(), "Moderate") {
		t.Errorf("detail view missing status:\n%s", m.View())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.state != StateList || m.current != nil {
		t.Errorf("esc left state = %v", m.state)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, 10)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}
