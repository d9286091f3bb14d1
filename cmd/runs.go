package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect crawl run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded crawl runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ledger, err := store.NewSQLite(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close() //nolint:errcheck
		if err := ledger.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := ledger.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tFINISHED\tSCRAPED\tSKIPPED\tFAILED")
		for _, r := range runs {
			finished := "-"
			if r.FinishedAt != nil {
				finished = r.FinishedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Format(time.RFC3339), finished,
				r.Scraped, r.Skipped, r.Failed,
			)
		}
		return w.Flush()
	},
}

var runsItemsCmd = &cobra.Command{
	Use:   "items <run-id>",
	Short: "List per-item outcomes of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ledger, err := store.NewSQLite(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close() //nolint:errcheck
		if err := ledger.Migrate(ctx); err != nil {
			return err
		}

		items, err := ledger.ListItems(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs items")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tSTATUS\tURL\tERROR")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.Category, it.Status, it.URL, it.Error)
		}
		return w.Flush()
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 50, "max runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsItemsCmd)
	rootCmd.AddCommand(runsCmd)
}
