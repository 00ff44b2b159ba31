package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskforge/model"
	"taskforge/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run a line-oriented task session on stdin",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the active tasks once and exit",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var (
	viewSearch    string
	viewCategory  string
	viewSort      string
	viewCompleted bool
)

func init() {
	rootCmd.AddCommand(shellCmd, viewCmd, categoriesCmd)

	viewCmd.Flags().StringVarP(&viewSearch, "search", "s", "", "Only tasks whose name or category contains this text")
	viewCmd.Flags().StringVarP(&viewCategory, "category", "c", model.CategoryAll, "Only tasks in this category")
	viewCmd.Flags().StringVar(&viewSort, "sort", "", "Order by priority, deadline or name (default from config)")
	viewCmd.Flags().BoolVar(&viewCompleted, "completed", false, "Print the completed tasks instead")
}

func runShell(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	sh := shell.New(s.svc, out, s.cfg.SortBy())
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		sh.Prompt = "taskforge> "
		fmt.Fprintln(out, "Type 'help' for commands.")
	}
	return sh.Run(in)
}

func runView(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if viewCompleted {
		printTasks(cmd, s.svc.Completed())
	} else {
		sortBy := s.cfg.SortBy()
		if cmd.Flags().Changed("sort") {
			sortBy, err = model.ParseSortBy(viewSort)
			if err != nil {
				return err
			}
		}
		printTasks(cmd, s.svc.View(model.Filter{Search: viewSearch, Category: viewCategory}, sortBy))
	}

	fmt.Fprintln(cmd.OutOrStdout(), shell.StatsLine(s.svc.Stats()))
	return nil
}

func runCategories(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, c := range s.svc.Categories() {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}

func printTasks(cmd *cobra.Command, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), shell.TaskTable(tasks))
}
