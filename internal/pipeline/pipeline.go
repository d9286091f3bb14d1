// Package pipeline owns the crawl orchestration: category traversal, the
// per-item extraction state machine, failure isolation, and the
// persist-then-commit ordering that makes runs resumable.
package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/browser"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/catalog"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/config"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/model"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/pairing"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/sink"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/state"
	"github.com/ThatDudeAlex/algoexpert-scraper/internal/store"
)

// Crawler runs the full catalog crawl on a single browser page. Items are
// processed strictly in indexed order, one at a time: the shared page
// cannot safely interleave navigations, so there is no parallelism here.
type Crawler struct {
	cfg     *config.Config
	page    browser.Page
	state   *state.Store
	sink    *sink.Sink
	ledger  store.Ledger
	indexer *catalog.Indexer
	pacer   *Pacer
}

// Summary tallies item outcomes for one run.
type Summary struct {
	Scraped int `json:"scraped"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// New wires a Crawler. ledger may be nil, in which case outcomes are only
// logged.
func New(cfg *config.Config, page browser.Page, st *state.Store, sk *sink.Sink, ledger store.Ledger) (*Crawler, error) {
	indexer, err := catalog.New(page, cfg.BaseURL, cfg.Selectors.CategoryLinks, cfg.Selectors.LinkAttribute)
	if err != nil {
		return nil, err
	}
	return &Crawler{
		cfg:     cfg,
		page:    page,
		state:   st,
		sink:    sk,
		ledger:  ledger,
		indexer: indexer,
		pacer:   NewPacer(cfg.Pacing),
	}, nil
}

// Run crawls every configured category in order. Item failures are
// isolated: they are logged, left uncommitted, and the loop advances. The
// run itself only fails on cancellation, on a catalog-page navigation
// failure, or on a skip-list append failure (which would otherwise cause
// silent re-scraping later).
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	log := zap.L()
	log.Info("pipeline: starting crawl",
		zap.String("start_url", c.cfg.StartURL),
		zap.Int("categories", len(c.cfg.Categories)),
		zap.Int("already_scraped", c.state.Len()),
	)

	runID := c.createRun(ctx)
	summary := &Summary{}

	// Enumerate all categories up front from the catalog page, before any
	// item navigation replaces it.
	if err := c.page.Navigate(ctx, c.cfg.StartURL); err != nil {
		return summary, eris.Wrap(err, "pipeline: open catalog")
	}
	if err := c.pacer.Pause(ctx); err != nil {
		return summary, err
	}

	type categoryIndex struct {
		name  string
		items []string
	}
	indexed := make([]categoryIndex, 0, len(c.cfg.Categories))
	for _, category := range c.cfg.Categories {
		items, err := c.indexer.Index(ctx, category)
		if err != nil {
			log.Error("pipeline: category index failed",
				zap.String("category", category),
				zap.Error(err),
			)
			continue
		}
		indexed = append(indexed, categoryIndex{name: category, items: items})
	}

	for _, ci := range indexed {
		catStart := *summary
		for pos, itemURL := range ci.items {
			if err := ctx.Err(); err != nil {
				c.finishRun(runID, summary)
				return summary, eris.Wrap(err, "pipeline: run interrupted")
			}

			position := pos + 1
			if c.state.Contains(itemURL) {
				log.Debug("pipeline: item already scraped",
					zap.String("url", itemURL),
				)
				summary.Skipped++
				c.recordItem(ctx, runID, ci.name, itemURL, model.ItemSkipped, nil)
				continue
			}

			if err := c.scrapeItem(ctx, ci.name, position, itemURL); err != nil {
				log.Error("pipeline: item failed",
					zap.String("category", ci.name),
					zap.String("url", itemURL),
					zap.Error(err),
				)
				summary.Failed++
				c.recordItem(ctx, runID, ci.name, itemURL, model.ItemFailed, err)
				continue
			}

			// Commit only after both files are durably written. An append
			// failure is fatal for the whole run: continuing would re-scrape
			// this item forever.
			if err := c.state.Commit(itemURL); err != nil {
				c.finishRun(runID, summary)
				return summary, err
			}

			log.Info("pipeline: item scraped",
				zap.String("category", ci.name),
				zap.Int("position", position),
				zap.String("url", itemURL),
			)
			summary.Scraped++
			c.recordItem(ctx, runID, ci.name, itemURL, model.ItemScraped, nil)
		}
		log.Info("pipeline: category complete",
			zap.String("category", ci.name),
			zap.Int("scraped", summary.Scraped-catStart.Scraped),
			zap.Int("skipped", summary.Skipped-catStart.Skipped),
			zap.Int("failed", summary.Failed-catStart.Failed),
		)
	}

	c.finishRun(runID, summary)
	log.Info("pipeline: crawl complete",
		zap.Int("scraped", summary.Scraped),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// scrapeItem runs the extraction state machine for one item: navigate,
// extract the record, reconstruct test cases, persist. Commit is the
// caller's responsibility.
func (c *Crawler) scrapeItem(ctx context.Context, category string, position int, itemURL string) error {
	if err := c.page.Navigate(ctx, itemURL); err != nil {
		return err
	}
	if err := c.pacer.Pause(ctx); err != nil {
		return err
	}

	problem, err := c.extractProblem(ctx, category, itemURL)
	if err != nil {
		return err
	}

	cases, err := c.extractTestCases(ctx)
	if err != nil {
		return err
	}

	if _, err := c.sink.Write(problem, position, cases); err != nil {
		return err
	}
	return nil
}

func (c *Crawler) extractProblem(ctx context.Context, category, itemURL string) (model.Problem, error) {
	sel := c.cfg.Selectors

	title, err := c.textOf(ctx, sel.Title)
	if err != nil {
		return model.Problem{}, eris.Wrap(err, "pipeline: extract title")
	}
	description, err := c.textOf(ctx, sel.Description)
	if err != nil {
		return model.Problem{}, eris.Wrap(err, "pipeline: extract description")
	}

	p := model.Problem{
		Category:    category,
		URL:         itemURL,
		Title:       strings.TrimSpace(title),
		Description: normalizeDescription(description),
	}
	// Partial metadata is never written; bail before touching the panel.
	if !p.Valid() {
		return model.Problem{}, eris.Errorf("pipeline: missing title or description for %s", itemURL)
	}

	// Sample blocks are optional; a miss leaves the field empty.
	if p.SampleInput, err = c.textOf(ctx, sel.SampleInput); err != nil {
		zap.L().Warn("pipeline: sample input extraction failed",
			zap.String("url", itemURL),
			zap.Error(err),
		)
	}
	if p.SampleOutput, err = c.textOf(ctx, sel.SampleOutput); err != nil {
		zap.L().Warn("pipeline: sample output extraction failed",
			zap.String("url", itemURL),
			zap.Error(err),
		)
	}
	return p, nil
}

// extractTestCases exposes the test panel, expands every collapsed case
// so all fragments are attached to the DOM, then reads the flat fragment
// sequence and pairs it.
func (c *Crawler) extractTestCases(ctx context.Context) ([]model.TestCase, error) {
	sel := c.cfg.Selectors

	if err := c.page.ClickByText(ctx, sel.RunCodeSelector, sel.RunCodeText); err != nil {
		return nil, eris.Wrap(err, "pipeline: open test panel")
	}
	if err := c.pacer.Pause(ctx); err != nil {
		return nil, err
	}

	toggles, err := c.page.Query(ctx, sel.TestcaseToggles)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: query collapsed testcases")
	}
	for _, toggle := range toggles {
		if err := toggle.Click(ctx); err != nil {
			zap.L().Warn("pipeline: testcase toggle click failed", zap.Error(err))
			continue
		}
		if err := c.pacer.Pause(ctx); err != nil {
			return nil, err
		}
	}

	els, err := c.page.Query(ctx, sel.TestcaseFragments)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: query testcase fragments")
	}
	fragments := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			// A lost fragment would shift every pair after it; give up on
			// the item rather than persist misaligned fixtures.
			return nil, eris.Wrap(err, "pipeline: read testcase fragment")
		}
		fragments = append(fragments, text)
	}

	return pairing.Pair(fragments)
}

// textOf returns the text of the first element matching selector, or ""
// when nothing matches.
func (c *Crawler) textOf(ctx context.Context, selector string) (string, error) {
	els, err := c.page.Query(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(els) == 0 {
		return "", nil
	}
	return els[0].Text(ctx)
}

var leadingWSAfterNewline = regexp.MustCompile(`\n[ \t]+`)

// normalizeDescription strips the indentation that page markup embeds
// after line breaks, so multi-paragraph descriptions render flush-left.
func normalizeDescription(s string) string {
	return strings.TrimSpace(leadingWSAfterNewline.ReplaceAllString(s, "\n"))
}

// ledger helpers; ledger failures are reported but never affect the crawl.

func (c *Crawler) createRun(ctx context.Context) string {
	if c.ledger == nil {
		return ""
	}
	run, err := c.ledger.CreateRun(ctx)
	if err != nil {
		zap.L().Warn("pipeline: ledger create run failed", zap.Error(err))
		return ""
	}
	return run.ID
}

func (c *Crawler) recordItem(ctx context.Context, runID, category, url string, status model.ItemStatus, itemErr error) {
	if c.ledger == nil || runID == "" {
		return
	}
	outcome := model.ItemOutcome{
		RunID:    runID,
		URL:      url,
		Category: category,
		Status:   status,
	}
	if itemErr != nil {
		outcome.Error = itemErr.Error()
	}
	if err := c.ledger.RecordItem(ctx, outcome); err != nil {
		zap.L().Warn("pipeline: ledger record item failed", zap.Error(err))
	}
}

func (c *Crawler) finishRun(runID string, s *Summary) {
	if c.ledger == nil || runID == "" {
		return
	}
	// Finishing the row must survive a cancelled crawl context.
	if err := c.ledger.FinishRun(context.Background(), runID, s.Scraped, s.Skipped, s.Failed); err != nil {
		zap.L().Warn("pipeline: ledger finish run failed", zap.Error(err))
	}
}
