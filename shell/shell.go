// Package shell runs a line-oriented task session over plain readers and writers.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"taskforge/app"
	"taskforge/model"
)

const usage = `commands:
  add <priority 1-5> <yyyy-mm-dd> <category> <name...>
  done <id>                 complete a task
  del <id>                  delete a task (undoable)
  undo                      restore the most recently deleted task
  ls                        list active tasks with the current search/category/sort
  search [text]             set or clear the search text
  category <name|all>       filter by category
  sort <priority|deadline|name>
  completed                 list completed tasks
  deleted                   list the undo buffer
  stats                     show counters
  categories                list categories
  help                      show this help
  quit                      leave the session
`

// Shell holds the view selection of one command session.
type Shell struct {
	svc    *app.Service
	out    io.Writer
	filter model.Filter
	sortBy model.SortBy

	// Prompt is written before each command when non-empty.
	Prompt string
}

func New(svc *app.Service, out io.Writer, sortBy model.SortBy) *Shell {
	return &Shell{
		svc:    svc,
		out:    out,
		filter: model.Filter{Category: model.CategoryAll},
		sortBy: sortBy,
	}
}

// Run executes commands from in until EOF or quit.
func (sh *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if sh.Prompt != "" {
			fmt.Fprint(sh.out, sh.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		quit, err := sh.Exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// Exec runs a single command line. Returned errors are soft: the session continues.
func (sh *Shell) Exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprint(sh.out, usage)
	case "add":
		return false, sh.add(args)
	case "done", "complete":
		return false, sh.withID(args, sh.complete)
	case "del", "delete", "rm":
		return false, sh.withID(args, sh.delete)
	case "undo":
		task, err := sh.svc.UndoDelete()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "Task %q restored\n", task.Name)
	case "ls", "list":
		sh.printTasks(sh.svc.View(sh.filter, sh.sortBy), "No tasks.")
	case "search", "find":
		sh.filter.Search = strings.Join(args, " ")
		if sh.filter.Search == "" {
			fmt.Fprintln(sh.out, "Search cleared")
			break
		}
		fmt.Fprintf(sh.out, "Searching for %q\n", sh.filter.Search)
	case "category", "cat":
		if len(args) == 0 {
			return false, errors.New("usage: category <name|all>")
		}
		sh.filter.Category = strings.Join(args, " ")
		fmt.Fprintf(sh.out, "Category filter: %s\n", sh.filter.Category)
	case "sort":
		if len(args) != 1 {
			return false, errors.New("usage: sort <priority|deadline|name>")
		}
		sortBy, err := model.ParseSortBy(args[0])
		if err != nil {
			return false, err
		}
		sh.sortBy = sortBy
		fmt.Fprintf(sh.out, "Sorting by %s\n", sortBy)
	case "completed":
		sh.printTasks(sh.svc.Completed(), "No completed tasks yet.")
	case "deleted":
		sh.printTasks(sh.svc.Deleted(), "Nothing to undo.")
	case "stats":
		fmt.Fprintln(sh.out, StatsLine(sh.svc.Stats()))
	case "categories":
		fmt.Fprintln(sh.out, strings.Join(sh.svc.Categories(), ", "))
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func (sh *Shell) add(args []string) error {
	if len(args) < 4 {
		return errors.New("usage: add <priority 1-5> <yyyy-mm-dd> <category> <name...>")
	}
	p, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("priority %q is not a number", args[0])
	}
	deadline, err := model.ParseDate(args[1])
	if err != nil {
		return err
	}
	task, err := sh.svc.Add(model.Draft{
		Name:     strings.Join(args[3:], " "),
		Priority: model.Priority(p),
		Deadline: deadline,
		Category: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Task %q added with ID %d\n", task.Name, task.ID)
	return nil
}

func (sh *Shell) complete(id int) error {
	task, err := sh.svc.Complete(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Task %q completed\n", task.Name)
	return nil
}

func (sh *Shell) delete(id int) error {
	task, err := sh.svc.Delete(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Task %q deleted and can be undone\n", task.Name)
	return nil
}

func (sh *Shell) withID(args []string, fn func(int) error) error {
	if len(args) != 1 {
		return errors.New("expected exactly one task id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("task id %q is not a number", args[0])
	}
	return fn(id)
}

func (sh *Shell) printTasks(tasks []model.Task, empty string) {
	if len(tasks) == 0 {
		fmt.Fprintln(sh.out, empty)
		return
	}
	fmt.Fprintln(sh.out, TaskTable(tasks))
}

// StatsLine formats the counters on one line.
func StatsLine(st app.Stats) string {
	return fmt.Sprintf("active: %d  completed: %d  can undo: %d  total created: %d",
		st.Active, st.Completed, st.Undoable, st.TotalCreated)
}

// TaskTable renders tasks as a bordered table.
func TaskTable(tasks []model.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Name,
			fmt.Sprintf("%d %s", t.Priority, t.Priority.Label()),
			model.FormatDate(t.Deadline),
			t.Category,
		})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Priority", "Deadline", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}
