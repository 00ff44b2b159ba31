package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskforge/model"
)

type formField int

const (
	fieldName formField = iota
	fieldPriority
	fieldDeadline
	fieldCategory
	fieldCount
)

// taskForm collects a draft. Name and deadline are free text; priority and
// category are picked with the arrow keys.
type taskForm struct {
	name     textinput.Model
	deadline textinput.Model
	priority model.Priority
	category int
	field    formField
}

func newTaskForm(category int) taskForm {
	name := textinput.New()
	name.Placeholder = "What needs doing?"
	name.CharLimit = 120
	name.Width = 40
	name.Prompt = ""
	name.Focus()

	deadline := textinput.New()
	deadline.Placeholder = model.DateLayout
	deadline.CharLimit = len(model.DateLayout)
	deadline.Width = len(model.DateLayout) + 1
	deadline.Prompt = ""

	return taskForm{
		name:     name,
		deadline: deadline,
		priority: model.PriorityHighest,
		category: category,
		field:    fieldName,
	}
}

func (f *taskForm) focusField(field formField) tea.Cmd {
	f.field = (field + fieldCount) % fieldCount
	f.name.Blur()
	f.deadline.Blur()
	switch f.field {
	case fieldName:
		return f.name.Focus()
	case fieldDeadline:
		return f.deadline.Focus()
	}
	return nil
}

func (f *taskForm) updateInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f.field {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldDeadline:
		f.deadline, cmd = f.deadline.Update(msg)
	}
	return cmd
}

func (f *taskForm) updatePriority(key string) {
	switch key {
	case "left", "h", "-":
		if f.priority > model.PriorityHighest {
			f.priority--
		}
	case "right", "l", "+":
		if f.priority < model.PriorityLowest {
			f.priority++
		}
	case "1", "2", "3", "4", "5":
		f.priority = model.Priority(key[0] - '0')
	}
}

func (f *taskForm) updateCategory(key string, n int) {
	if n == 0 {
		return
	}
	switch key {
	case "left", "h":
		f.category = (f.category - 1 + n) % n
	case "right", "l", " ":
		f.category = (f.category + 1) % n
	}
}

// draft converts the form to a model.Draft. An empty deadline is passed
// through as zero so the service reports it.
func (f taskForm) draft(categories []string) (model.Draft, error) {
	var deadline time.Time
	if s := strings.TrimSpace(f.deadline.Value()); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			return model.Draft{}, err
		}
		deadline = d
	}
	category := ""
	if f.category >= 0 && f.category < len(categories) {
		category = categories[f.category]
	}
	return model.Draft{
		Name:     f.name.Value(),
		Priority: f.priority,
		Deadline: deadline,
		Category: category,
	}, nil
}
