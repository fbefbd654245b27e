// Package cmd provides the cashflow-cli commands.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"cashflow/internal/cli"
	"cashflow/internal/config"
	"cashflow/internal/log"
)

// app carries the state shared by subcommands once flags are parsed.
type app struct {
	debug   bool
	envFile string
	logOut  io.Writer
	logger  *log.Logger
	cfg     *config.Config
}

// NewRootCommand builds the command tree. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}
	root := &cobra.Command{
		Use:   "cashflow-cli",
		Short: "Project a month of cash flow from a budget workbook",
		Long: `cashflow-cli reads credits and debits from a budget workbook and
projects the daily balance for the current month.

Sources may be .xlsx or .csv files, gsheet:<spreadsheetID>[/<sheet>] when
Google credentials are configured, or mem:sample for a built-in example.

Example:
  cashflow-cli project budget.xlsx --out reports
  cashflow-cli project june.csv --json --at 2025-06-15
  cashflow-cli runs --limit 10`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.LoadEnvFile(a.envFile); err != nil {
				return err
			}
			level := os.Getenv("LOG_LEVEL")
			if a.debug {
				level = "debug"
			}
			a.logger = cli.SetupLogger(level, a.logOut).WithComponent(log.ComponentCLI)

			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.envFile, "env", "", "env file to load (default .env if present)")

	root.AddCommand(newProjectCommand(a))
	root.AddCommand(newRunsCommand(a))
	return root
}

// Execute runs the CLI with logs on stderr.
func Execute() error {
	return NewRootCommand(os.Stderr).Execute()
}
