package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// Options configures the Chrome backend. Exactly one session strategy
// applies: RemoteURL attaches to a running browser (the authenticated
// session handoff), otherwise a new instance is launched, optionally
// reusing UserDataDir.
type Options struct {
	Headless    bool
	RemoteURL   string
	UserDataDir string
	Timeout     time.Duration
}

// Chrome implements Page on top of chromedp. All operations share one
// browser tab; callers are expected to serialize navigations.
type Chrome struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

// NewChrome starts (or attaches to) a browser and opens the shared tab.
func NewChrome(parent context.Context, opts Options) (*Chrome, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc

	if opts.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.DisableGPU,
			chromedp.NoSandbox,
		)
		if !opts.Headless {
			execOpts = append(execOpts, chromedp.Flag("headless", false))
		}
		if opts.UserDataDir != "" {
			execOpts = append(execOpts, chromedp.UserDataDir(opts.UserDataDir))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(parent, execOpts...)
	}

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Force browser startup now so a bad RemoteURL or missing binary fails
	// here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, eris.Wrap(err, "browser: start")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &Chrome{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		timeout: timeout,
	}, nil
}

// Close tears down the tab and, for launched browsers, the process.
func (c *Chrome) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
}

// run executes chromedp actions on the shared tab, bounded by both the
// caller's context and the configured per-operation timeout.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(tctx, actions...) }()

	select {
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	err := c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	return eris.Wrapf(err, "browser: navigate %s", url)
}

func (c *Chrome) Query(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, eris.Wrapf(err, "browser: query %q", selector)
	}

	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{chrome: c, id: n.NodeID})
	}
	return els, nil
}

func (c *Chrome) ClickByText(ctx context.Context, selector, text string) error {
	// chromedp has no text-predicate selector; match in-page. offsetParent
	// filters elements hidden by collapsed panels.
	js := fmt.Sprintf(`(() => {
		const want = %q;
		for (const el of document.querySelectorAll(%q)) {
			if (el.textContent.trim() === want && el.offsetParent !== null) {
				el.click();
				return true;
			}
		}
		return false;
	})()`, text, selector)

	var clicked bool
	if err := c.run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return eris.Wrapf(err, "browser: click %q by text %q", selector, text)
	}
	if !clicked {
		return eris.Errorf("browser: no visible %q element with text %q", selector, text)
	}
	return nil
}

// chromeElement addresses one DOM node by its CDP node ID.
type chromeElement struct {
	chrome *Chrome
	id     cdp.NodeID
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var s string
	err := e.chrome.run(ctx, chromedp.Text([]cdp.NodeID{e.id}, &s, chromedp.ByNodeID))
	if err != nil {
		return "", eris.Wrap(err, "browser: element text")
	}
	return s, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, error) {
	var val string
	var ok bool
	err := e.chrome.run(ctx, chromedp.AttributeValue([]cdp.NodeID{e.id}, name, &val, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", eris.Wrapf(err, "browser: element attribute %q", name)
	}
	if !ok {
		return "", nil
	}
	return val, nil
}

func (e *chromeElement) Click(ctx context.Context) error {
	err := e.chrome.run(ctx, chromedp.Click([]cdp.NodeID{e.id}, chromedp.ByNodeID))
	return eris.Wrap(err, "browser: element click")
}
