package app

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskforge/model"
)

var (
	// ErrInvalidTask is wrapped by every draft validation failure.
	ErrInvalidTask     = errors.New("invalid task")
	ErrEmptyName       = fmt.Errorf("%w: name must not be empty", ErrInvalidTask)
	ErrMissingDeadline = fmt.Errorf("%w: deadline is required", ErrInvalidTask)
	ErrInvalidPriority = fmt.Errorf("%w: priority must be between %d and %d", ErrInvalidTask, model.PriorityHighest, model.PriorityLowest)

	ErrTaskNotFound  = errors.New("task not found")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Location names the collection a task currently lives in.
type Location string

const (
	InActive    Location = "active"
	InCompleted Location = "completed"
	InDeleted   Location = "deleted"
)

// Stats summarizes collection sizes.
type Stats struct {
	Active       int
	Completed    int
	Undoable     int
	TotalCreated int
}

// Option configures a Service.
type Option func(*Service)

// WithCategories sets the category enumeration exposed to callers.
// The service stores categories as opaque strings and never validates against it.
func WithCategories(categories []string) Option {
	return func(s *Service) {
		cleaned := make([]string, 0, len(categories))
		for _, c := range categories {
			if c = strings.TrimSpace(c); c != "" {
				cleaned = append(cleaned, c)
			}
		}
		if len(cleaned) > 0 {
			s.categories = cleaned
		}
	}
}

// WithLocale sets the language used to collate names.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.locale = tag
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Service holds the task collections of one session.
// Every mutation swaps in a freshly built state; snapshots handed out earlier stay intact.
type Service struct {
	state      model.AppState
	categories []string
	locale     language.Tag
	log        *log.Logger
}

// NewService creates a service over a copy of the provided state.
func NewService(state model.AppState, opts ...Option) *Service {
	s := &Service{
		state:      normalizeState(copyState(state)),
		categories: append([]string(nil), model.DefaultCategories...),
		locale:     language.English,
		log:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of current state.
func (s *Service) State() model.AppState {
	return copyState(s.state)
}

func (s *Service) Active() []model.Task {
	return copyTasks(s.state.Active)
}

// Completed returns completed tasks, most recent first.
func (s *Service) Completed() []model.Task {
	return copyTasks(s.state.Completed)
}

// Deleted returns the undo buffer, most recent deletion first.
func (s *Service) Deleted() []model.Task {
	return copyTasks(s.state.Deleted)
}

func (s *Service) NextID() int {
	return s.state.NextID
}

func (s *Service) Categories() []string {
	return append([]string(nil), s.categories...)
}

func (s *Service) Stats() Stats {
	return Stats{
		Active:       len(s.state.Active),
		Completed:    len(s.state.Completed),
		Undoable:     len(s.state.Deleted),
		TotalCreated: s.state.NextID - 1,
	}
}

// GetTask looks a task up in every collection.
func (s *Service) GetTask(id int) (model.Task, Location, error) {
	if i := indexOf(s.state.Active, id); i >= 0 {
		return s.state.Active[i], InActive, nil
	}
	if i := indexOf(s.state.Completed, id); i >= 0 {
		return s.state.Completed[i], InCompleted, nil
	}
	if i := indexOf(s.state.Deleted, id); i >= 0 {
		return s.state.Deleted[i], InDeleted, nil
	}
	return model.Task{}, "", fmt.Errorf("%w: %d", ErrTaskNotFound, id)
}

// ValidateTask applies the checks Add makes on a draft to an existing task,
// such as one read from a seed.
func ValidateTask(t model.Task) error {
	return validate(t.Name, t.Priority, t.Deadline)
}

func validate(name string, priority model.Priority, deadline time.Time) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if deadline.IsZero() {
		return ErrMissingDeadline
	}
	if !priority.Valid() {
		return fmt.Errorf("%w (got %d)", ErrInvalidPriority, priority)
	}
	return nil
}

// Add validates the draft and inserts a new active task in priority order.
func (s *Service) Add(draft model.Draft) (model.Task, error) {
	name := strings.TrimSpace(draft.Name)
	if err := validate(name, draft.Priority, draft.Deadline); err != nil {
		s.log.Debug("add rejected", "name", name, "err", err)
		return model.Task{}, err
	}

	task := model.Task{
		ID:        s.state.NextID,
		Name:      name,
		Priority:  draft.Priority,
		Deadline:  model.DateOnly(draft.Deadline),
		Category:  strings.TrimSpace(draft.Category),
		Completed: false,
	}

	next := copyState(s.state)
	next.Active = append(next.Active, task)
	sortByPriority(next.Active)
	next.NextID++
	s.state = next

	s.log.Debug("task added", "id", task.ID, "name", task.Name, "priority", int(task.Priority))
	return task, nil
}

// Complete moves an active task to the front of the completed collection.
func (s *Service) Complete(id int) (model.Task, error) {
	i := indexOf(s.state.Active, id)
	if i < 0 {
		s.log.Debug("complete skipped", "id", id, "err", ErrTaskNotFound)
		return model.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}

	next := copyState(s.state)
	task := next.Active[i]
	task.Completed = true
	next.Active = removeAt(next.Active, i)
	next.Completed = prepend(next.Completed, task)
	s.state = next

	s.log.Debug("task completed", "id", task.ID, "name", task.Name)
	return task, nil
}

// Delete moves an active task to the front of the undo buffer.
func (s *Service) Delete(id int) (model.Task, error) {
	i := indexOf(s.state.Active, id)
	if i < 0 {
		s.log.Debug("delete skipped", "id", id, "err", ErrTaskNotFound)
		return model.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}

	next := copyState(s.state)
	task := next.Active[i]
	next.Active = removeAt(next.Active, i)
	next.Deleted = prepend(next.Deleted, task)
	s.state = next

	s.log.Debug("task deleted", "id", task.ID, "name", task.Name, "undoable", len(next.Deleted))
	return task, nil
}

// UndoDelete restores the most recently deleted task. Older deletions stay
// buffered and come back one call at a time.
func (s *Service) UndoDelete() (model.Task, error) {
	if len(s.state.Deleted) == 0 {
		s.log.Debug("undo skipped", "err", ErrNothingToUndo)
		return model.Task{}, ErrNothingToUndo
	}

	next := copyState(s.state)
	task := next.Deleted[0]
	next.Deleted = removeAt(next.Deleted, 0)
	next.Active = append(next.Active, task)
	sortByPriority(next.Active)
	s.state = next

	s.log.Debug("task restored", "id", task.ID, "name", task.Name, "undoable", len(next.Deleted))
	return task, nil
}

// View returns the active tasks matching filter, ordered by the given key.
// The search text is matched as given, surrounding spaces included.
// The stored order of the active collection is never changed.
func (s *Service) View(filter model.Filter, by model.SortBy) []model.Task {
	fold := cases.Fold()
	query := fold.String(filter.Search)
	anyCategory := filter.AnyCategory()
	category := strings.TrimSpace(filter.Category)

	out := make([]model.Task, 0, len(s.state.Active))
	for _, t := range s.state.Active {
		if query != "" &&
			!strings.Contains(fold.String(t.Name), query) &&
			!strings.Contains(fold.String(t.Category), query) {
			continue
		}
		if !anyCategory && t.Category != category {
			continue
		}
		out = append(out, t)
	}

	switch by {
	case model.SortDeadline:
		sort.SliceStable(out, func(i, j int) bool {
			return model.DateOnly(out[i].Deadline).Before(model.DateOnly(out[j].Deadline))
		})
	case model.SortName:
		col := collate.New(s.locale)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	default:
		sortByPriority(out)
	}
	return out
}

func normalizeState(state model.AppState) model.AppState {
	maxID := 0
	for i := range state.Active {
		state.Active[i].Completed = false
		maxID = max(maxID, state.Active[i].ID)
	}
	for i := range state.Completed {
		state.Completed[i].Completed = true
		maxID = max(maxID, state.Completed[i].ID)
	}
	for i := range state.Deleted {
		state.Deleted[i].Completed = false
		maxID = max(maxID, state.Deleted[i].ID)
	}
	if state.NextID <= maxID {
		state.NextID = maxID + 1
	}
	sortByPriority(state.Active)
	return state
}

func sortByPriority(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority < tasks[j].Priority
	})
}

func indexOf(tasks []model.Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(tasks []model.Task, i int) []model.Task {
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func prepend(tasks []model.Task, t model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, t)
	return append(out, tasks...)
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

func copyState(state model.AppState) model.AppState {
	out := state
	out.Active = copyTasks(state.Active)
	out.Completed = copyTasks(state.Completed)
	out.Deleted = copyTasks(state.Deleted)
	return out
}
