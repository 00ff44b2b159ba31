package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"taskforge/app"
	"taskforge/model"
)

const allCategoriesLabel = "All categories"

var categoryPalette = []lipgloss.Color{"12", "10", "11", "13", "14", "9", "7"}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	stats := m.svc.Stats()
	title := lipgloss.NewStyle().Bold(true).Render("taskforge")
	category := "all"
	if !m.filter.AnyCategory() {
		category = m.filter.Category
	}
	summary := fmt.Sprintf("sort: %s • category: %s", m.sortBy, category)
	if m.filter.Search != "" {
		summary += " • search: \"" + m.filter.Search + "\""
	}
	if m.showCompleted {
		summary += " • completed view"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+summary),
	)

	viewW := m.viewportWidth()
	const paneGap = 1
	outerPaneW := viewW
	innerPaneW := outerPaneW - 2
	if innerPaneW < 20 {
		innerPaneW = outerPaneW
	}

	panelH := m.height - 6
	if panelH < 8 {
		panelH = 8
	}
	innerPaneH := panelH - 2
	if innerPaneH < 6 {
		innerPaneH = 6
	}

	leftW, rightW := m.paneWidths(innerPaneW, paneGap)
	right := m.renderTasksPanel(rightW, innerPaneH)
	if m.showCompleted {
		right = m.renderCompletedPanel(rightW, innerPaneH)
	}
	split := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderCategoriesPanel(leftW, innerPaneH, stats),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│"),
		right,
	)

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal {
		frameColor = lipgloss.Color("39")
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(innerPaneW).
		Height(panelH).
		Render(split)

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	rightHint := "? shortcuts"
	if m.showHelp {
		rightHint = "Esc/? close shortcuts"
	}
	footerLine := m.renderFooter(m.status, statusStyle, rightHint)

	switch {
	case m.showHelp:
		panes = lipgloss.Place(viewW, panelH, lipgloss.Center, lipgloss.Center, m.renderHelpOverlay(popupWidth(viewW)))
	case m.mode == modeAddTask:
		panes = lipgloss.Place(viewW, panelH, lipgloss.Center, lipgloss.Center, m.renderForm(popupWidth(viewW)))
	}

	parts := []string{header, panes, footerLine}
	if m.mode == modeSearch {
		promptLine := m.search.View() + "  (Enter keeps, Esc clears)"
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Width(viewW).Render(promptLine))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(viewW).Render(truncateRunes(m.contextualHelp(), viewW)))
	}
	return strings.Join(parts, "\n")
}

func popupWidth(viewW int) int {
	w := viewW - 8
	if w > 72 {
		w = 72
	}
	if w < 40 {
		w = viewW - 2
	}
	return w
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// Leave the last column free; some terminals wrap on the final cell.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

// paneWidths sizes the left pane to its longest line (category label or stats
// row) and gives the rest to the tasks. The left pane never takes more than a
// third of the width unless the terminal is too narrow to honor the minimums.
func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 24, 30
	}
	gap = max(gap, 0)

	const (
		minLeft  = 18
		minRight = 12
		gutter   = 4 // cursor, dot and two spaces before a label
	)
	longest := utf8.RuneCountInString(allCategoriesLabel)
	for _, c := range m.svc.Categories() {
		longest = max(longest, utf8.RuneCountInString(c))
	}
	left := clamp(longest+gutter, minLeft, max(minLeft, total/3))

	right := total - left - gap
	if right < minRight {
		right = minRight
		left = max(total-right-gap, 10)
	}
	return left, right
}

// renderFooter puts the status on the left and the hint on the right; the
// status is truncated first when both do not fit.
func (m *Model) renderFooter(status string, statusStyle lipgloss.Style, hint string) string {
	width := m.viewportWidth()
	status = strings.TrimSpace(status)
	if status == "" {
		status = "Ready"
	}

	hint = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(strings.TrimSpace(hint))
	room := max(width-lipgloss.Width(hint)-1, 8)
	left := statusStyle.Render(truncateRunes(status, room))
	fill := max(width-lipgloss.Width(left)-lipgloss.Width(hint), 1)
	return left + strings.Repeat(" ", fill) + hint
}

func (m *Model) renderHelpOverlay(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render("Shortcuts")
	section := lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	line := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	rows := []string{
		title,
		"",
		section.Render("Global"),
		line.Render("  Tab switches focus • j/k moves • q quits"),
		line.Render("  / search • s cycles sort • u undoes the last delete"),
		line.Render("  h completed tasks • ? shortcuts • Esc closes"),
		"",
		section.Render("Categories"),
		line.Render("  j/k filters live • Enter applies and jumps to tasks"),
		"",
		section.Render("Tasks"),
		line.Render("  a adds • x completes • d deletes • y copies the list"),
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("244")).
		Padding(1, 2)

	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m *Model) renderForm(width int) string {
	label := lipgloss.NewStyle().Width(10)
	active := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	categories := m.svc.Categories()

	field := func(f formField, name, value string) string {
		marker := "  "
		style := label
		if m.form.field == f {
			marker = "▸ "
			style = label.Inherit(active)
		}
		return marker + style.Render(name) + value
	}

	category := "-"
	if m.form.category >= 0 && m.form.category < len(categories) {
		category = lipgloss.NewStyle().Foreground(colorForCategory(categories, categories[m.form.category])).Render(categories[m.form.category])
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Render("New task"),
		"",
		field(fieldName, "Name", m.form.name.View()),
		field(fieldPriority, "Priority", fmt.Sprintf("‹ %s %d - %s ›", priorityIndicator(m.form.priority), m.form.priority, m.form.priority.Label())),
		field(fieldDeadline, "Deadline", m.form.deadline.View()),
		field(fieldCategory, "Category", "‹ "+category+" ›"),
		"",
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("Tab next field • ←/→ choose • Enter save • Esc cancel"),
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2)
	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m *Model) contextualHelp() string {
	switch m.mode {
	case modeAddTask:
		return "New task • Tab next field • Enter save • Esc cancel"
	case modeSearch:
		return "Incremental search • type to filter • Enter keeps • Esc clears"
	}

	if m.showCompleted {
		return "Completed • j/k navigate • h back • Tab focus • q quit"
	}
	if m.focus == focusCategories {
		return "Categories • j/k filter • Enter apply • Tab tasks • q quit"
	}
	return "Tasks • a add • x complete • d delete • u undo • s sort • / search • h completed • y copy"
}

func (m *Model) renderCategoriesPanel(width, height int, stats app.Stats) string {
	categories := m.svc.Categories()
	lines := make([]string, 0, len(categories)+8)
	lines = append(lines, panelTitleStyled("Categories", m.focus == focusCategories))

	entries := append([]string{allCategoriesLabel}, categories...)
	for i, name := range entries {
		cursor := " "
		if i == m.categoryCursor {
			cursor = "▸"
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("○")
		if i > 0 {
			dot = lipgloss.NewStyle().Foreground(colorForCategory(categories, name)).Render("●")
		}
		line := fmt.Sprintf("%s %s %s", cursor, dot, truncateRunes(name, width-4))
		if i == m.categoryCursor {
			style := lipgloss.NewStyle().Bold(true)
			if m.focus == focusCategories {
				style = style.Foreground(lipgloss.Color("229"))
			}
			line = style.Render(line)
		}
		lines = append(lines, line)
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	lines = append(lines,
		"",
		lipgloss.NewStyle().Bold(true).Render("Stats"),
		muted.Render(fmt.Sprintf("Active      %d", stats.Active)),
		muted.Render(fmt.Sprintf("Completed   %d", stats.Completed)),
		muted.Render(fmt.Sprintf("Can undo    %d", stats.Undoable)),
		muted.Render(fmt.Sprintf("Created     %d", stats.TotalCreated)),
	)

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTasksPanel(width, height int) string {
	tasks := m.visibleTasks()
	title := fmt.Sprintf("Active tasks (%d)", len(tasks))

	lines := make([]string, 0, len(tasks)+2)
	lines = append(lines, panelTitleStyled(title, m.focus == focusTasks))

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	if len(tasks) == 0 {
		switch {
		case m.svc.Stats().Active == 0:
			lines = append(lines, muted.Render("No tasks yet. Press 'a' to add one."))
		default:
			lines = append(lines, muted.Render("No tasks match the current search/category."))
		}
	} else {
		categories := m.svc.Categories()
		for i, t := range tasks {
			lines = append(lines, m.renderTaskLine(t, i == m.taskCursor, m.focus == focusTasks, categories, width))
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderCompletedPanel(width, height int) string {
	done := m.svc.Completed()
	lines := make([]string, 0, len(done)+2)
	lines = append(lines, panelTitleStyled(fmt.Sprintf("Completed tasks (%d)", len(done)), m.focus == focusTasks))
	if len(done) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Nothing completed yet. Press 'x' on a task."))
	} else {
		categories := m.svc.Categories()
		for i, t := range done {
			lines = append(lines, m.renderTaskLine(t, i == m.completedCursor, m.focus == focusTasks, categories, width))
		}
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTaskLine(t model.Task, selected, focused bool, categories []string, width int) string {
	cursor := " "
	if selected {
		cursor = "▸"
	}
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	meta := fmt.Sprintf("  %s  %s", model.FormatDate(t.Deadline), t.Category)
	nameW := width - 10 - utf8.RuneCountInString(meta)
	if nameW < 8 {
		nameW = 8
	}

	cursorStyle := lipgloss.NewStyle()
	textStyle := lipgloss.NewStyle()
	if t.Completed {
		textStyle = textStyle.Faint(true)
	}
	if selected {
		cursorStyle = cursorStyle.Bold(true)
		textStyle = textStyle.Bold(true)
		if focused {
			sel := lipgloss.Color("229")
			cursorStyle = cursorStyle.Foreground(sel)
			textStyle = textStyle.Foreground(sel)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		cursorStyle.Render(cursor+" "),
		check+" ",
		priorityIndicator(t.Priority)+" ",
		textStyle.Render(truncateRunes(fmt.Sprintf("#%d %s", t.ID, t.Name), nameW)),
		lipgloss.NewStyle().Foreground(colorForCategory(categories, t.Category)).Render(meta),
	)
}

func panelTitleStyled(title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	text := base.Foreground(lipgloss.Color("229")).Render(title)
	marker := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("*")
	return lipgloss.JoinHorizontal(lipgloss.Left, text, " ", marker)
}

func priorityIndicator(p model.Priority) string {
	color := lipgloss.Color("240")
	switch p {
	case model.PriorityHighest:
		color = lipgloss.Color("196")
	case model.PriorityHigh:
		color = lipgloss.Color("208")
	case model.PriorityMedium:
		color = lipgloss.Color("220")
	case model.PriorityLow:
		color = lipgloss.Color("39")
	case model.PriorityLowest:
		color = lipgloss.Color("114")
	}
	return lipgloss.NewStyle().Foreground(color).Render("●")
}

// colorForCategory picks a stable color from the category's position in the enumeration.
func colorForCategory(categories []string, name string) lipgloss.Color {
	for i, c := range categories {
		if c == name {
			return categoryPalette[i%len(categoryPalette)]
		}
	}
	return categoryPalette[len(categoryPalette)-1]
}
