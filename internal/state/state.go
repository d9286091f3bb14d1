// Package state persists the set of already-scraped item URLs across runs.
// The backing file is newline-delimited UTF-8, append-only; it is the sole
// resume authority, so an identifier must only be committed after its item
// has been fully persisted.
package state

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Store is the skip-list store. Not safe for concurrent use; the crawl
// loop owns it exclusively.
type Store struct {
	path string
	file *os.File
	seen map[string]struct{}
}

// Open loads the skip-list at path, creating an empty file when absent.
// The file is held open for appends until Close.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "state: open %s", path)
	}

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seen[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, eris.Wrapf(err, "state: read %s", path)
	}

	zap.L().Debug("state: loaded skip-list",
		zap.String("path", path),
		zap.Int("entries", len(seen)),
	)

	return &Store{path: path, file: f, seen: seen}, nil
}

// Contains reports whether url has already been committed.
func (s *Store) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// Len returns the number of committed identifiers.
func (s *Store) Len() int {
	return len(s.seen)
}

// Commit appends url to the file and the in-memory set. Callers must only
// commit after the item's output is durably written; a failed append is
// returned, never swallowed, since losing it would cause re-scraping.
func (s *Store) Commit(url string) error {
	if _, ok := s.seen[url]; ok {
		return nil
	}
	if _, err := s.file.WriteString(url + "\n"); err != nil {
		return eris.Wrapf(err, "state: append %s", url)
	}
	if err := s.file.Sync(); err != nil {
		return eris.Wrapf(err, "state: sync %s", s.path)
	}
	s.seen[url] = struct{}{}
	return nil
}

// Close releases the backing file.
func (s *Store) Close() error {
	return eris.Wrap(s.file.Close(), "state: close")
}
