package model

import "time"

// ItemStatus is the terminal state of one item within a crawl run.
type ItemStatus string

const (
	ItemScraped ItemStatus = "scraped"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// Run is one recorded crawl run in the ledger.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Scraped    int        `json:"scraped"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// ItemOutcome records how a single item ended within a run. Error is empty
// unless Status is ItemFailed.
type ItemOutcome struct {
	RunID      string     `json:"run_id"`
	URL        string     `json:"url"`
	Category   string     `json:"category"`
	Status     ItemStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
}
