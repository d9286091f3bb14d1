package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/browser"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/pipeline"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/sink"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/state"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/store"
)

var (
	crawlCategories []string
	crawlNoLedger   bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the catalog and persist problems to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(crawlCategories) > 0 {
			cfg.Categories = crawlCategories
		}

		st, err := state.Open(cfg.StateFile)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var ledger store.Ledger
		if !crawlNoLedger {
			sq, err := store.NewSQLite(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer sq.Close() //nolint:errcheck
			if err := sq.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate ledger")
			}
			ledger = sq
		}

		page, err := browser.NewChrome(ctx, browser.Options{
			Headless:    cfg.Browser.Headless,
			RemoteURL:   cfg.Browser.RemoteURL,
			UserDataDir: cfg.Browser.UserDataDir,
			Timeout:     time.Duration(cfg.Browser.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return err
		}
		defer page.Close()

		crawler, err := pipeline.New(cfg, page, st, sink.New(cfg.OutputRoot, cfg.Languages), ledger)
		if err != nil {
			return err
		}

		summary, err := crawler.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "crawl")
		}

		zap.L().Info("crawl finished",
			zap.Int("scraped", summary.Scraped),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	crawlCmd.Flags().StringSliceVar(&crawlCategories, "category", nil, "restrict to specific categories (default: all configured)")
	crawlCmd.Flags().BoolVar(&crawlNoLedger, "no-ledger", false, "skip recording the run in the sqlite ledger")
	rootCmd.AddCommand(crawlCmd)
}
