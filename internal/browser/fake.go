package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a scripted Page implementation for tests. It serves canned
// documents keyed by URL and records every navigation and click.
type Fake struct {
	mu   sync.Mutex
	Docs map[string]*FakeDoc
	// NavErrs fails Navigate for specific URLs.
	NavErrs map[string]error

	current     string
	Navigations []string
	Clicks      []string
}

// FakeDoc is one scripted document: selector → matching elements in
// document order, plus the visible button texts ClickByText can hit,
// keyed by selector.
type FakeDoc struct {
	Selectors map[string][]*FakeElement
	Buttons   map[string][]string
}

// FakeElement is a scripted DOM node.
type FakeElement struct {
	TextValue string
	Attrs     map[string]string
	TextErr   error
	ClickErr  error
	Clicked   bool
}

// NewFake returns an empty Fake; add documents to Docs before use.
func NewFake() *Fake {
	return &Fake{Docs: map[string]*FakeDoc{}, NavErrs: map[string]error{}}
}

func (f *Fake) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Navigations = append(f.Navigations, url)
	if err := f.NavErrs[url]; err != nil {
		return err
	}
	if _, ok := f.Docs[url]; !ok {
		return fmt.Errorf("fake: no document for %s", url)
	}
	f.current = url
	return nil
}

func (f *Fake) Query(_ context.Context, selector string) ([]Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := f.Docs[f.current]
	if doc == nil {
		return nil, fmt.Errorf("fake: no current document")
	}
	els := make([]Element, 0, len(doc.Selectors[selector]))
	for _, e := range doc.Selectors[selector] {
		els = append(els, e)
	}
	return els, nil
}

func (f *Fake) ClickByText(_ context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := f.Docs[f.current]
	if doc == nil {
		return fmt.Errorf("fake: no current document")
	}
	for _, t := range doc.Buttons[selector] {
		if strings.TrimSpace(t) == text {
			f.Clicks = append(f.Clicks, selector+"|"+text)
			return nil
		}
	}
	return fmt.Errorf("fake: no visible %q element with text %q", selector, text)
}

func (e *FakeElement) Text(context.Context) (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	return e.TextValue, nil
}

func (e *FakeElement) Attribute(_ context.Context, name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *FakeElement) Click(context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicked = true
	return nil
}
