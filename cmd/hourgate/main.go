package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all commands
type GlobalFlags struct {
	ConfigPath string
}

// CheckFlags holds flags for the check command
type CheckFlags struct {
	At string
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	checkFlags := &CheckFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRunCommand(globalFlags),
		createCheckCommand(globalFlags, checkFlags),
	)
	return root
}

// createRootCommand creates the root command with the persistent config flag
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "hourgate",
		Short: "Close and reopen desktop apps on a daily window",
		Long: `Hourgate keeps a set of applications closed during a daily window and
relaunches them once the window reopens. It runs as a Windows service or
as a foreground process elsewhere.

Examples:
  hourgate run --config hourgate.toml
  hourgate check                       # verdict for every process right now
  hourgate check --at 19:07            # verdict at a given time today`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	return root
}

// createRunCommand creates the run subcommand
func createRunCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Arm the schedule and keep it running",
		Long: `Load the configuration, arm the daily timer and keep reconciling until
the service control manager or a signal (SIGINT/SIGTERM) stops it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(globalFlags.ConfigPath)
		},
	}
}

// createCheckCommand creates the check subcommand
func createCheckCommand(globalFlags *GlobalFlags, checkFlags *CheckFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the window verdict for each configured process",
		Long: `Evaluate the configured window without touching any process and print the
verdict (none, stop, run) for every configured process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), globalFlags.ConfigPath, checkFlags.At, nowFunc())
		},
	}
	cmd.Flags().StringVar(&checkFlags.At, "at", "", "evaluate at HH:mm today instead of now")
	return cmd
}
