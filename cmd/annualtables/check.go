package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/config"
	"github.com/sanspareilsmyn/annualtables/internal/output"
	"github.com/sanspareilsmyn/annualtables/internal/report"
)

func newCheckCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print the layout of every table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return check(cmd.OutOrStdout(), *configFile)
		},
	}
}

func check(w io.Writer, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configFile, err)
	}
	if err := output.Validate(cfg.Report.Formats); err != nil {
		return err
	}
	store, registry, err := config.BuildRegistry(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	if err := registry.Bind(store); err != nil {
		return err
	}

	for _, tbl := range registry.Tables() {
		if err := writeLayout(w, tbl); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%d table(s) OK, unit style %s, formats %s\n",
		len(registry.Tables()), cfg.Report.Style(), strings.Join(cfg.Report.Formats, ","))
	return err
}

// writeLayout prints one row per field: what it aggregates, how many columns it
// takes and how many entities it is bound for.
func writeLayout(w io.Writer, tbl *report.Table) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("%s (%d entities)", tbl.Name(), len(tbl.Entities()))
	t.AppendHeader(table.Row{"#", "Header", "Variable", "Aggregation", "Columns", "Units", "Bound"})

	for i, f := range tbl.Fields() {
		units, bound := "-", 0
		if meta, found := f.Metadata(); found {
			units = meta.Units
			for row := range tbl.Entities() {
				if tbl.Cell(row, i).Bound() {
					bound++
				}
			}
		}
		t.AppendRow(table.Row{i + 1, f.Header, f.Variable, f.Kind, aggregation.ColumnCount(f.Kind), units, bound})
	}
	t.Render()

	for _, warning := range tbl.Warnings() {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

func newRunsCmd() *cobra.Command {
	var sqlitePath string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the runs stored in a tabular SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listRuns(cmd.Context(), cmd.OutOrStdout(), sqlitePath)
		},
	}
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "annualtables.db", "Path to the tabular SQLite database")
	return cmd
}

func listRuns(ctx context.Context, w io.Writer, sqlitePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := output.OpenSQLite(ctx, sqlitePath, nil)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 runs)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Unit Style", "Timesteps", "Created"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.UnitStyle, r.Timesteps, r.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	t.Render()
	return nil
}
