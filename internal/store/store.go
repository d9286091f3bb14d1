package store

import (
	"context"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/model"
)

// Ledger records crawl runs and per-item outcomes for reporting. It is
// observational only: the skip-list file remains the sole resume
// authority, and ledger failures never affect crawl correctness.
type Ledger interface {
	CreateRun(ctx context.Context) (*model.Run, error)
	RecordItem(ctx context.Context, outcome model.ItemOutcome) error
	FinishRun(ctx context.Context, runID string, scraped, skipped, failed int) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	ListItems(ctx context.Context, runID string) ([]model.ItemOutcome, error)

	Migrate(ctx context.Context) error
	Close() error
}
