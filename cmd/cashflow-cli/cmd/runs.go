package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cashflow/internal/storage"
)

func newRunsCommand(a *app) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "runs",
		Short: "List recent projection runs from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.RunLogEnabled() {
				return errors.New("run log disabled: set SQLITE_DB_PATH")
			}
			repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath, a.logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			runs, err := repo.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			total, err := repo.CountRuns(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tPERIOD\tTX\tDROPPED\tCLOSING")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%02d/%d\t%d\t%d\t%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Source,
					r.Month, r.Year, r.Transactions, r.Dropped, closingText(r))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d runs\n", len(runs), total)
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", storage.DefaultListLimit, "maximum runs to list")
	return c
}
