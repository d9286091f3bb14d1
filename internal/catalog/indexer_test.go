package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/browser"
)

const catalogURL = "https://example.com/questions"

func newCatalogFake(t *testing.T, links map[string][]string) *browser.Fake {
	t.Helper()
	doc := &browser.FakeDoc{Selectors: map[string][]*browser.FakeElement{}}
	for category, hrefs := range links {
		els := make([]*browser.FakeElement, 0, len(hrefs))
		for _, href := range hrefs {
			attrs := map[string]string{}
			if href != "" {
				attrs["href"] = href
			}
			els = append(els, &browser.FakeElement{Attrs: attrs})
		}
		doc.Selectors[`[data-category="`+category+`"] a`] = els
	}

	fake := browser.NewFake()
	fake.Docs[catalogURL] = doc
	require.NoError(t, fake.Navigate(context.Background(), catalogURL))
	return fake
}

func TestIndexer_Index_ResolvesAndPreservesOrder(t *testing.T) {
	fake := newCatalogFake(t, map[string][]string{
		"arrays": {
			"/questions/two-number-sum",
			"/questions/validate-subsequence",
			"https://example.com/questions/tournament-winner",
		},
	})

	ix, err := New(fake, "https://example.com", `[data-category="%s"] a`, "href")
	require.NoError(t, err)

	urls, err := ix.Index(context.Background(), "arrays")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/questions/two-number-sum",
		"https://example.com/questions/validate-subsequence",
		"https://example.com/questions/tournament-winner",
	}, urls)
}

func TestIndexer_Index_SkipsElementsWithoutLink(t *testing.T) {
	fake := newCatalogFake(t, map[string][]string{
		"arrays": {"/questions/a", "", "/questions/b"},
	})

	ix, err := New(fake, "https://example.com", `[data-category="%s"] a`, "href")
	require.NoError(t, err)

	urls, err := ix.Index(context.Background(), "arrays")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/questions/a",
		"https://example.com/questions/b",
	}, urls)
}

func TestIndexer_Index_UnknownCategoryIsEmpty(t *testing.T) {
	fake := newCatalogFake(t, map[string][]string{"arrays": {"/questions/a"}})

	ix, err := New(fake, "https://example.com", `[data-category="%s"] a`, "href")
	require.NoError(t, err)

	urls, err := ix.Index(context.Background(), "graphs")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestIndexer_Index_KeepsDuplicates(t *testing.T) {
	// Dedup is the pipeline's job via the skip-list, not the indexer's.
	fake := newCatalogFake(t, map[string][]string{
		"arrays": {"/questions/a", "/questions/a"},
	})

	ix, err := New(fake, "https://example.com", `[data-category="%s"] a`, "href")
	require.NoError(t, err)

	urls, err := ix.Index(context.Background(), "arrays")
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(browser.NewFake(), "://bad", "%s", "href")
	assert.Error(t, err)
}
