package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskforge/app"
	"taskforge/model"
)

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func newTestModel(state model.AppState) (*Model, *app.Service) {
	svc := app.NewService(state)
	m := NewModel(svc, model.SortPriority, "")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, svc
}

func TestAddFormCreatesTask(t *testing.T) {
	m, svc := newTestModel(model.NewState())

	press(m, "a", "Write report", "tab", "3", "tab", "2026-07-01", "tab", "right", "enter")

	if m.mode != modeNormal {
		t.Fatalf("expected form to close after submit, status=%q", m.status)
	}
	active := svc.Active()
	if len(active) != 1 {
		t.Fatalf("expected one task, got %+v", active)
	}
	got := active[0]
	if got.Name != "Write report" || got.Priority != model.PriorityMedium || got.Category != "Personal" {
		t.Fatalf("unexpected task %+v", got)
	}
	if model.FormatDate(got.Deadline) != "2026-07-01" {
		t.Fatalf("unexpected deadline %v", got.Deadline)
	}
	if !strings.Contains(m.status, "added with ID 1") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestAddFormKeepsOpenOnValidationFailure(t *testing.T) {
	m, svc := newTestModel(model.NewState())

	press(m, "a", "No deadline", "enter")
	if m.mode != modeAddTask {
		t.Fatalf("expected form to stay open")
	}
	if !m.statusErr || !strings.Contains(m.status, "Deadline is required") {
		t.Fatalf("expected deadline error, got %q", m.status)
	}

	press(m, "tab", "tab", "not-a-day", "enter")
	if !m.statusErr || !strings.Contains(m.status, "invalid date") {
		t.Fatalf("expected date parse error, got %q", m.status)
	}

	press(m, "esc")
	if m.mode != modeNormal {
		t.Fatalf("expected esc to cancel the form")
	}
	if svc.Stats().TotalCreated != 0 {
		t.Fatalf("expected no task created")
	}
}

func TestCompleteDeleteAndUndoKeys(t *testing.T) {
	m, svc := newTestModel(model.SampleState())

	// Cursor starts on the highest priority task.
	press(m, "x")
	if got := svc.Completed(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected task 1 completed, got %+v", got)
	}

	press(m, "d")
	if got := svc.Deleted(); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected task 3 deleted, got %+v", got)
	}

	press(m, "u")
	if got := svc.Deleted(); len(got) != 0 {
		t.Fatalf("expected undo buffer emptied, got %+v", got)
	}
	if !strings.Contains(m.status, "restored") {
		t.Fatalf("unexpected status %q", m.status)
	}

	press(m, "u")
	if m.status != "No tasks to undo" {
		t.Fatalf("expected empty undo message, got %q", m.status)
	}
}

func TestCompletedViewIsReadOnly(t *testing.T) {
	m, svc := newTestModel(model.SampleState())
	press(m, "x", "h", "x", "d")

	if got := svc.Stats(); got.Completed != 1 || got.Active != 2 || got.Undoable != 0 {
		t.Fatalf("expected completed view to ignore x/d, got %+v", got)
	}
	if !strings.Contains(m.View(), "Completed tasks (1)") {
		t.Fatalf("expected completed panel in view")
	}
}

func TestCategoryFocusFiltersTasks(t *testing.T) {
	m, _ := newTestModel(model.SampleState())

	// Categories: all, Work, Personal, Study...
	press(m, "tab", "down", "down", "down", "enter")
	if m.filter.Category != "Study" {
		t.Fatalf("expected Study filter, got %q", m.filter.Category)
	}
	if m.focus != focusTasks {
		t.Fatalf("expected enter to jump to tasks")
	}
	visible := m.visibleTasks()
	if len(visible) != 1 || visible[0].Name != "Study Data Structures" {
		t.Fatalf("unexpected visible tasks %+v", visible)
	}
}

func TestSearchModeFiltersIncrementally(t *testing.T) {
	m, _ := newTestModel(model.SampleState())

	press(m, "/", "groc")
	if m.mode != modeSearch {
		t.Fatalf("expected search mode")
	}
	if visible := m.visibleTasks(); len(visible) != 1 || visible[0].ID != 2 {
		t.Fatalf("expected only groceries while typing, got %+v", visible)
	}

	press(m, "enter")
	if m.mode != modeNormal || m.filter.Search != "groc" {
		t.Fatalf("expected search kept after enter, got mode=%d search=%q", m.mode, m.filter.Search)
	}

	press(m, "esc")
	if m.filter.Search != "" {
		t.Fatalf("expected esc to clear search")
	}
	if got := len(m.visibleTasks()); got != 3 {
		t.Fatalf("expected all tasks after clearing, got %d", got)
	}
}

func TestSortKeyCycles(t *testing.T) {
	m, _ := newTestModel(model.SampleState())
	press(m, "s")
	if m.sortBy != model.SortDeadline {
		t.Fatalf("expected deadline sort, got %q", m.sortBy)
	}
	if first := m.visibleTasks()[0]; first.Name != "Buy Groceries" {
		t.Fatalf("expected earliest deadline first, got %+v", first)
	}
	press(m, "s", "s")
	if m.sortBy != model.SortPriority {
		t.Fatalf("expected cycle back to priority, got %q", m.sortBy)
	}
}

func TestQuitKeyReturnsQuitCommand(t *testing.T) {
	m, _ := newTestModel(model.NewState())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
