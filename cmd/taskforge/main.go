// Package main implements the taskforge CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"taskforge/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

var (
	configPath string
	seedPath   string
	noSamples  bool
	logFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "taskforge",
	Short:        "Keep a prioritized task list in the terminal",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/taskforge/config.toml)")
	flags.StringVar(&seedPath, "seed", "", "JSON file with the initial tasks")
	flags.BoolVar(&noSamples, "no-samples", false, "Start with an empty list instead of the sample tasks")
	flags.StringVar(&logFile, "log-file", "", "Append logs to this file")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.Run(tui.NewModel(s.svc, s.cfg.SortBy(), s.status))
}
