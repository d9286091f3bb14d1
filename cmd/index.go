package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/browser"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/catalog"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Enumerate catalog item URLs without scraping",
	Long:  "Dry run: opens the catalog page, lists every item URL per configured category in document order, and exits. Useful for checking selectors and session auth.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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

		indexer, err := catalog.New(page, cfg.BaseURL, cfg.Selectors.CategoryLinks, cfg.Selectors.LinkAttribute)
		if err != nil {
			return err
		}

		if err := page.Navigate(ctx, cfg.StartURL); err != nil {
			return err
		}

		for _, category := range cfg.Categories {
			items, err := indexer.Index(ctx, category)
			if err != nil {
				return err
			}
			for i, u := range items {
				fmt.Printf("%s\t%02d\t%s\n", category, i+1, u)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
