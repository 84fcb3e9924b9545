package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
	pgchart "github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres/chart"
)

var logsLimit int

// dbCmd cluefin db
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Warehouse maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the data schema and chart tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := postgres.NewPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ schema up to date")
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts and date ranges per chart table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := postgres.NewPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		stats, err := pgchart.NewRepository(pool).Stats(cmd.Context())
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var dbLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent import runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := postgres.NewPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		logs, err := pgchart.NewFetchLogRepository(pool).GetRecent(cmd.Context(), logsLimit)
		if err != nil {
			return err
		}
		printFetchLogs(cmd.OutOrStdout(), logs)
		return nil
	},
}

func init() {
	dbLogsCmd.Flags().IntVar(&logsLimit, "limit", 20, "number of runs to show")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbLogsCmd)
}

func printStats(w io.Writer, stats *chart.WarehouseStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS\tSYMBOLS\tFIRST\tLAST\tUPDATED")
	for _, t := range stats.Tables {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			t.Table, t.Rows, t.Symbols,
			formatTime(t.FirstDate, chart.DateLayout),
			formatTime(t.LastDate, chart.DateLayout),
			formatTime(t.LastUpdated, time.DateTime),
		)
	}
	tw.Flush()
}

func printFetchLogs(w io.Writer, logs []*chart.FetchLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "no import runs recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tJOB\tSTATUS\tSYMBOLS\tROWS\tDURATION\tERROR")
	for _, l := range logs {
		duration := "-"
		if l.DurationMs != nil {
			duration = (time.Duration(*l.DurationMs) * time.Millisecond).Round(time.Second).String()
		}
		errMsg := ""
		if l.ErrorMessage != nil {
			errMsg = *l.ErrorMessage
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			l.ID, l.StartedAt.Format(time.DateTime), l.JobType, l.Status,
			l.RecordsFetched, l.RecordsInserted, duration, errMsg,
		)
	}
	tw.Flush()
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Format(layout)
}
