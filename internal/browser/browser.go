package browser

import "context"

// Element is a handle to a DOM node returned by Query. Handles are only
// valid until the next navigation on the page that produced them.
type Element interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	Click(ctx context.Context) error
}

// Page is the narrow automation capability the crawl pipeline consumes.
// The production implementation drives a Chrome instance; tests script a
// Fake. Query returns matches in DOM document order and must reflect the
// current DOM.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Query(ctx context.Context, selector string) ([]Element, error)

	// ClickByText clicks the first visible element matching selector whose
	// trimmed text equals text. Errors when no such element exists.
	ClickByText(ctx context.Context, selector, text string) error
}
