package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskforge/app"
	"taskforge/model"
)

type focusPane int

const (
	focusCategories focusPane = iota
	focusTasks
)

func (f focusPane) String() string {
	if f == focusTasks {
		return "tasks"
	}
	return "categories"
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddTask
	modeSearch
)

type Model struct {
	svc *app.Service

	focus           focusPane
	mode            uiMode
	categoryCursor  int
	taskCursor      int
	completedCursor int

	filter model.Filter
	sortBy model.SortBy
	search textinput.Model
	form   taskForm

	showCompleted bool
	showHelp      bool

	status    string
	statusErr bool

	width  int
	height int
}

// NewModel builds the UI over svc. Category cursor 0 is "all categories".
func NewModel(svc *app.Service, sortBy model.SortBy, startupStatus string) *Model {
	status := strings.TrimSpace(startupStatus)
	if status == "" {
		status = "Ready"
	}

	search := textinput.New()
	search.Prompt = "Search (/): "
	search.Placeholder = "name or category"
	search.CharLimit = 80

	m := &Model{
		svc:    svc,
		focus:  focusTasks,
		mode:   modeNormal,
		filter: model.Filter{Category: model.CategoryAll},
		sortBy: sortBy,
		search: search,
		status: status,
	}
	m.ensureSelection()
	return m
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch m.mode {
		case modeAddTask:
			return m, m.updateFormMode(msg)
		case modeSearch:
			return m, m.updateSearchMode(msg)
		default:
			if quit := m.updateNormalMode(msg); quit {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "tab":
		if m.focus == focusCategories {
			m.focus = focusTasks
		} else {
			m.focus = focusCategories
		}
		m.setStatus(fmt.Sprintf("Focus on %s", m.focus.String()), false)
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter":
		m.handleEnter()
	case "a":
		m.startAdd()
	case "x":
		m.completeSelected()
	case "d":
		m.deleteSelected()
	case "u":
		m.undoDelete()
	case "s":
		m.sortBy = m.sortBy.Next()
		m.taskCursor = 0
		m.setStatus(fmt.Sprintf("Sorted by %s", m.sortBy), false)
	case "h":
		m.toggleCompleted()
	case "y":
		m.copyVisibleTasks()
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.filter.Search)
		m.search.CursorEnd()
		m.search.Focus()
		m.setStatus("Incremental search: type to filter", false)
	case "?":
		m.showHelp = !m.showHelp
		if m.showHelp {
			m.setStatus("Shortcuts open (press ? or Esc to close)", false)
		} else {
			m.setStatus("Shortcuts hidden", false)
		}
	case "esc":
		if m.showHelp {
			m.showHelp = false
			m.setStatus("Shortcuts hidden", false)
			break
		}
		if strings.TrimSpace(m.filter.Search) != "" {
			m.filter.Search = ""
			m.taskCursor = 0
			m.setStatus("Search cleared", false)
		}
	}

	m.ensureSelection()
	return false
}

func (m *Model) updateSearchMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.filter.Search = ""
		m.closeSearch()
		m.setStatus("Search cleared", false)
		return nil
	case "enter":
		m.filter.Search = strings.TrimSpace(m.search.Value())
		m.closeSearch()
		if m.filter.Search == "" {
			m.setStatus("Search cleared", false)
		} else {
			m.setStatus(fmt.Sprintf("Searching for %q", m.filter.Search), false)
		}
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Search = strings.TrimSpace(m.search.Value())
	m.taskCursor = 0
	m.ensureSelection()
	return cmd
}

func (m *Model) closeSearch() {
	m.search.Blur()
	m.mode = modeNormal
	m.taskCursor = 0
	m.ensureSelection()
}

func (m *Model) updateFormMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeNormal
		m.setStatus("Cancelled", false)
		return nil
	case "enter":
		m.submitForm()
		return nil
	case "tab", "down":
		return m.form.focusField(m.form.field + 1)
	case "shift+tab", "up":
		return m.form.focusField(m.form.field - 1)
	}

	categories := m.svc.Categories()
	switch m.form.field {
	case fieldPriority:
		m.form.updatePriority(msg.String())
		return nil
	case fieldCategory:
		m.form.updateCategory(msg.String(), len(categories))
		return nil
	}
	return m.form.updateInput(msg)
}

func (m *Model) submitForm() {
	draft, err := m.form.draft(m.svc.Categories())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	task, err := m.svc.Add(draft)
	if err != nil {
		m.setStatus(formErrorText(err), true)
		return
	}
	m.mode = modeNormal
	m.showCompleted = false
	m.taskCursor = m.indexOfTask(task.ID)
	m.setStatus(fmt.Sprintf("Task %q added with ID %d", task.Name, task.ID), false)
}

func formErrorText(err error) string {
	switch {
	case errors.Is(err, app.ErrEmptyName):
		return "Task name must not be empty"
	case errors.Is(err, app.ErrMissingDeadline):
		return "Deadline is required (yyyy-mm-dd)"
	case errors.Is(err, app.ErrInvalidPriority):
		return "Priority must be between 1 and 5"
	default:
		return "Could not add task: " + err.Error()
	}
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusCategories {
		old := m.categoryCursor
		m.categoryCursor = clamp(m.categoryCursor+delta, 0, len(m.svc.Categories()))
		if m.categoryCursor != old {
			m.applyCategory()
		}
		return
	}

	if m.showCompleted {
		done := m.svc.Completed()
		if len(done) == 0 {
			return
		}
		m.completedCursor = clamp(m.completedCursor+delta, 0, len(done)-1)
		return
	}

	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return
	}
	m.taskCursor = clamp(m.taskCursor+delta, 0, len(tasks)-1)
}

func (m *Model) handleEnter() {
	if m.focus != focusCategories {
		return
	}
	m.applyCategory()
	m.focus = focusTasks
}

func (m *Model) applyCategory() {
	m.filter.Category = m.categoryAt(m.categoryCursor)
	m.taskCursor = 0
	if m.filter.AnyCategory() {
		m.setStatus("Showing all categories", false)
		return
	}
	m.setStatus(fmt.Sprintf("Category: %s", m.filter.Category), false)
}

func (m *Model) categoryAt(i int) string {
	categories := m.svc.Categories()
	if i <= 0 || i > len(categories) {
		return model.CategoryAll
	}
	return categories[i-1]
}

func (m *Model) startAdd() {
	if m.showCompleted {
		m.showCompleted = false
	}
	categoryIdx := 0
	if !m.filter.AnyCategory() {
		for i, c := range m.svc.Categories() {
			if c == m.filter.Category {
				categoryIdx = i
				break
			}
		}
	}
	m.form = newTaskForm(categoryIdx)
	m.mode = modeAddTask
	m.setStatus("New task: Tab moves between fields, Enter saves, Esc cancels", false)
}

func (m *Model) completeSelected() {
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus(m.noSelectionText(), false)
		return
	}
	done, err := m.svc.Complete(task.ID)
	if err != nil {
		m.setStatus("Could not complete task: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Task %q completed!", done.Name), false)
}

func (m *Model) deleteSelected() {
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus(m.noSelectionText(), false)
		return
	}
	removed, err := m.svc.Delete(task.ID)
	if err != nil {
		m.setStatus("Could not delete task: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Task %q deleted and can be undone (u)", removed.Name), false)
}

func (m *Model) undoDelete() {
	task, err := m.svc.UndoDelete()
	if err != nil {
		if errors.Is(err, app.ErrNothingToUndo) {
			m.setStatus("No tasks to undo", false)
			return
		}
		m.setStatus("Undo failed: "+err.Error(), true)
		return
	}
	m.showCompleted = false
	m.taskCursor = m.indexOfTask(task.ID)
	m.setStatus(fmt.Sprintf("Task %q restored", task.Name), false)
}

func (m *Model) noSelectionText() string {
	if m.showCompleted {
		return "Completed tasks are read-only. Press 'h' to go back."
	}
	if m.focus != focusTasks {
		return "Select a task first: switch focus to tasks (Tab)"
	}
	return "No task selected"
}

func (m *Model) toggleCompleted() {
	m.showCompleted = !m.showCompleted
	m.completedCursor = 0
	if m.showCompleted {
		m.setStatus("Completed tasks", false)
		return
	}
	m.setStatus("Active tasks", false)
}

func (m *Model) copyVisibleTasks() {
	tasks := m.visibleTasks()
	if m.showCompleted {
		tasks = m.svc.Completed()
	}
	if len(tasks) == 0 {
		m.setStatus("No tasks to copy", false)
		return
	}

	parts := make([]string, 0, len(tasks))
	for _, t := range tasks {
		parts = append(parts, fmt.Sprintf("- [P%d] %s (%s, %s)", t.Priority, t.Name, model.FormatDate(t.Deadline), t.Category))
	}
	if err := copyToClipboard(strings.Join(parts, "\n")); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d tasks copied to the clipboard", len(parts)), false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) ensureSelection() {
	m.categoryCursor = clamp(m.categoryCursor, 0, len(m.svc.Categories()))

	if m.showCompleted {
		done := m.svc.Completed()
		if len(done) == 0 {
			m.completedCursor = 0
			return
		}
		m.completedCursor = clamp(m.completedCursor, 0, len(done)-1)
		return
	}

	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		m.taskCursor = 0
		return
	}
	m.taskCursor = clamp(m.taskCursor, 0, len(tasks)-1)
}

func (m *Model) visibleTasks() []model.Task {
	return m.svc.View(m.filter, m.sortBy)
}

// selectedTask is the active task under the cursor; nil in the completed view.
func (m *Model) selectedTask() (model.Task, bool) {
	if m.showCompleted || m.focus != focusTasks {
		return model.Task{}, false
	}
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	if m.taskCursor < 0 || m.taskCursor >= len(tasks) {
		m.taskCursor = 0
	}
	return tasks[m.taskCursor], true
}

func (m *Model) indexOfTask(id int) int {
	tasks := m.visibleTasks()
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	if len(tasks) == 0 {
		return 0
	}
	return len(tasks) - 1
}

func copyToClipboard(text string) error {
	candidates := []struct {
		name string
		args []string
	}{
		{name: "wl-copy", args: []string{"--type", "text/plain"}},
		{name: "xclip", args: []string{"-in", "-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
		{name: "pbcopy"},
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		go runClipboardCommand(c.name, c.args, text)
		return nil
	}
	return fmt.Errorf("no clipboard command available (install wl-copy or xclip)")
}

func runClipboardCommand(name string, args []string, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
