package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cashflow/internal/cli"
	"cashflow/internal/core"
	"cashflow/internal/services"
	"cashflow/internal/sheets/google"
	"cashflow/internal/sheets/memory"
)

type projectOptions struct {
	json        bool
	outDir      string
	at          string
	concurrency int
}

func newProjectCommand(a *app) *cobra.Command {
	var o projectOptions
	c := &cobra.Command{
		Use:   "project <source>...",
		Short: "Project each source and write its chart",
		Long: `Project the daily balance of each source for the month containing
--at (default today).

Without --json an interactive HTML report is written per source into --out.
With --json the Plotly figure is printed to stdout, or written as
<name>.json into --out when set. A summary line per source, including the
number of incomplete rows skipped, goes to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, a, o, args)
		},
	}
	c.Flags().BoolVar(&o.json, "json", false, "emit the figure JSON instead of an HTML report")
	c.Flags().StringVar(&o.outDir, "out", "", "directory for generated files (default . for HTML)")
	c.Flags().StringVar(&o.at, "at", "", "project as of this date (YYYY-MM-DD)")
	c.Flags().IntVar(&o.concurrency, "concurrency", 4, "maximum sources projected at once")
	return c
}

func runProject(cmd *cobra.Command, a *app, o projectOptions, sources []string) error {
	now := time.Now
	if o.at != "" {
		at, err := time.ParseInLocation("2006-01-02", o.at, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --at %q: %w", o.at, err)
		}
		now = func() time.Time { return at }
	}
	mode := services.ModeInteractive
	if o.json {
		mode = services.ModeJSON
	}
	outDir := o.outDir
	if outDir == "" && !o.json {
		outDir = "."
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	ctx := cmd.Context()
	resolver, err := cli.NewResolver(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	recorders, err := cli.OpenRecorders(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer recorders.Close()

	svc := services.NewCashflowService(resolver,
		append(recorders.Options(), services.WithClock(now), services.WithLogger(a.logger))...)

	results := make([]services.Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, o.concurrency))
	for i, src := range sources {
		g.Go(func() error {
			res, err := svc.Run(gctx, src, mode)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	names := outputNames(sources)
	for i, res := range results {
		dest := "stdout"
		switch {
		case outDir == "":
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(res.Chart)); err != nil {
				return err
			}
		default:
			ext := ".html"
			if o.json {
				ext = ".json"
			}
			dest = filepath.Join(outDir, names[i]+ext)
			if err := os.WriteFile(dest, res.Chart, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d transactions, %d dropped, closing %s -> %s\n",
			sources[i], res.Summary.Transactions, res.Summary.Dropped, closingText(res.Summary), dest)
	}
	return nil
}

func closingText(s core.RunSummary) string {
	if !s.Closing.Valid {
		return "n/a"
	}
	return core.FormatDollars(s.Closing.Decimal)
}

// outputNames derives a file-safe base name per source, suffixing duplicates.
func outputNames(sources []string) []string {
	seen := make(map[string]int, len(sources))
	out := make([]string, len(sources))
	for i, src := range sources {
		base := strings.TrimPrefix(strings.TrimPrefix(src, memory.SourcePrefix), google.SourcePrefix)
		base = strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
		base = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			default:
				return '_'
			}
		}, base)
		if base == "" {
			base = "report"
		}
		seen[base]++
		if n := seen[base]; n > 1 {
			base = fmt.Sprintf("%s-%d", base, n)
		}
		out[i] = base
	}
	return out
}
