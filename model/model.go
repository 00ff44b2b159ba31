package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned for deadlines that are not yyyy-mm-dd dates.
var ErrInvalidDate = errors.New("invalid date")

// DateLayout is the calendar date format used for deadlines.
const DateLayout = "2006-01-02"

// Priority is a task urgency from 1 (highest) to 5 (lowest).
type Priority int

const (
	PriorityHighest Priority = 1
	PriorityHigh    Priority = 2
	PriorityMedium  Priority = 3
	PriorityLow     Priority = 4
	PriorityLowest  Priority = 5
)

// Valid reports whether p is inside [PriorityHighest, PriorityLowest].
func (p Priority) Valid() bool {
	return p >= PriorityHighest && p <= PriorityLowest
}

func (p Priority) Label() string {
	switch p {
	case PriorityHighest:
		return "Highest"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case PriorityLowest:
		return "Lowest"
	default:
		return "Unknown"
	}
}

// SortBy selects the display order of a view.
type SortBy string

const (
	SortPriority SortBy = "priority"
	SortDeadline SortBy = "deadline"
	SortName     SortBy = "name"
)

var sortOrder = []SortBy{SortPriority, SortDeadline, SortName}

// ParseSortBy accepts the names above, case-insensitively.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriority, "":
		return SortPriority, nil
	case SortDeadline:
		return SortDeadline, nil
	case SortName:
		return SortName, nil
	default:
		return "", fmt.Errorf("unknown sort %q (want priority, deadline or name)", s)
	}
}

// Next returns the sort key that follows s when cycling.
func (s SortBy) Next() SortBy {
	for i, v := range sortOrder {
		if v == s {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return SortPriority
}

// CategoryAll disables category filtering.
const CategoryAll = "all"

// DefaultCategories is the category enumeration offered when none is configured.
var DefaultCategories = []string{"Work", "Personal", "Study", "Health", "Shopping", "Other"}

// Filter narrows a view of the active tasks.
type Filter struct {
	Search   string
	Category string
}

// AnyCategory reports whether the filter accepts every category.
func (f Filter) AnyCategory() bool {
	c := strings.TrimSpace(f.Category)
	return c == "" || strings.EqualFold(c, CategoryAll)
}

// Draft carries the caller-supplied fields of a new task.
type Draft struct {
	Name     string
	Priority Priority
	Deadline time.Time
	Category string
}

// Task is one unit of work.
type Task struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Priority  Priority  `json:"priority"`
	Deadline  time.Time `json:"deadline"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed,omitempty"`
}

type taskJSON struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Priority  Priority `json:"priority"`
	Deadline  string   `json:"deadline"`
	Category  string   `json:"category"`
	Completed bool     `json:"completed,omitempty"`
}

// MarshalJSON writes the deadline as a calendar date.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:        t.ID,
		Name:      t.Name,
		Priority:  t.Priority,
		Category:  t.Category,
		Completed: t.Completed,
	}
	if !t.Deadline.IsZero() {
		out.Deadline = FormatDate(t.Deadline)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a calendar date or a full RFC 3339 timestamp.
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var deadline time.Time
	if s := strings.TrimSpace(in.Deadline); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			ts, tsErr := time.Parse(time.RFC3339, s)
			if tsErr != nil {
				return err
			}
			d = DateOnly(ts)
		}
		deadline = d
	}
	*t = Task{
		ID:        in.ID,
		Name:      in.Name,
		Priority:  in.Priority,
		Deadline:  deadline,
		Category:  in.Category,
		Completed: in.Completed,
	}
	return nil
}

// AppState is one immutable snapshot of the session.
type AppState struct {
	Active    []Task `json:"active"`
	Completed []Task `json:"completed"`
	Deleted   []Task `json:"deleted"`
	NextID    int    `json:"nextId"`
}

// NewState returns an initialized empty state.
func NewState() AppState {
	return AppState{
		Active:    []Task{},
		Completed: []Task{},
		Deleted:   []Task{},
		NextID:    1,
	}
}

// SampleState returns the preloaded demo tasks, already in priority order.
func SampleState() AppState {
	state := NewState()
	state.Active = []Task{
		{ID: 1, Name: "Complete React Project", Priority: PriorityHighest, Deadline: mustDate("2024-06-10"), Category: "Work"},
		{ID: 3, Name: "Study Data Structures", Priority: PriorityHigh, Deadline: mustDate("2024-06-15"), Category: "Study"},
		{ID: 2, Name: "Buy Groceries", Priority: PriorityMedium, Deadline: mustDate("2024-06-08"), Category: "Shopping"},
	}
	state.NextID = 4
	return state
}

// ParseDate parses a yyyy-mm-dd calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q (want yyyy-mm-dd)", ErrInvalidDate, s)
	}
	return d, nil
}

// DateOnly drops the time of day, keeping the calendar date in t's location.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

func mustDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
