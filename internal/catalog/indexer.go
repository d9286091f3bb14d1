// Package catalog enumerates the item URLs belonging to each configured
// category on the catalog page.
package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/browser"
)

// Indexer resolves category link elements into absolute item URLs. It
// assumes the catalog page is already loaded on the injected Page.
type Indexer struct {
	page     browser.Page
	base     *url.URL
	pattern  string
	linkAttr string
}

// New creates an Indexer. pattern is a fmt pattern with one %s for the
// category; linkAttr is the attribute carrying the item link (usually
// "href").
func New(page browser.Page, baseURL, pattern, linkAttr string) (*Indexer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: parse base url %q", baseURL)
	}
	return &Indexer{page: page, base: base, pattern: pattern, linkAttr: linkAttr}, nil
}

// Index returns the item URLs of one category in DOM document order. The
// order is load-bearing: it becomes the item numbering used for output
// directory names. No deduplication happens here; duplicates are the
// pipeline's concern via the skip-list.
func (ix *Indexer) Index(ctx context.Context, category string) ([]string, error) {
	selector := fmt.Sprintf(ix.pattern, category)
	els, err := ix.page.Query(ctx, selector)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: query category %s", category)
	}

	urls := make([]string, 0, len(els))
	for _, el := range els {
		href, err := el.Attribute(ctx, ix.linkAttr)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: read %s attribute", ix.linkAttr)
		}
		if href == "" {
			zap.L().Warn("catalog: link element without attribute",
				zap.String("category", category),
				zap.String("attribute", ix.linkAttr),
			)
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			zap.L().Warn("catalog: unparseable link",
				zap.String("category", category),
				zap.String("href", href),
				zap.Error(err),
			)
			continue
		}
		urls = append(urls, ix.base.ResolveReference(ref).String())
	}

	zap.L().Info("catalog: indexed category",
		zap.String("category", category),
		zap.Int("items", len(urls)),
	)
	return urls, nil
}
