// Package browser owns the headless browser. No other package talks
// to the browser directly; scrapers compose the session operations
// offered here.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/browser")

var ErrNavigationTimeout = fmt.Errorf("navigation or wait exceeded its deadline")

// NotFoundError reports a selector that never produced a node within
// the operation deadline.
type NotFoundError struct {
	Selector string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s", e.Selector)
}

type Options struct {
	// nil means headless. A pointer keeps an explicit false in config
	// from being swallowed when defaults are merged in.
	Headless *bool `json:"headless"`
	// per-navigation ceiling, defaults to 60s
	NavigateTimeoutSeconds int `json:"navigate_timeout_seconds"`
	// per-element-action ceiling, defaults to 15s
	ActionTimeoutSeconds int `json:"action_timeout_seconds"`
}

func (o Options) headless() bool {
	return o.Headless == nil || *o.Headless
}

func (o Options) navigateTimeout() time.Duration {
	if o.NavigateTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.NavigateTimeoutSeconds) * time.Second
}

func (o Options) actionTimeout() time.Duration {
	if o.ActionTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(o.ActionTimeoutSeconds) * time.Second
}

// Session is a scoped headless browser. Acquire with NewSession and
// always call the returned release func; it tears the browser down on
// every exit path.
type Session struct {
	opts Options
	ctx  context.Context
}

func NewSession(ctx context.Context, opts Options) (*Session, func(), error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.headless()),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	release := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// spawn the process eagerly so a broken chrome install surfaces
	// here instead of mid-scrape
	err := chromedp.Run(browserCtx)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Session{opts: opts, ctx: browserCtx}, release, nil
}

func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opctx, actions...)
}

// Navigate loads a url, waits for DOM-ready and then sleeps `settle`
// to let client-side rendering finish.
func (s *Session) Navigate(ctx context.Context, url string, settle time.Duration) error {
	ctx, span := tracer.Start(ctx, "Navigate")
	defer span.End()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if settle > 0 {
		actions = append(actions, chromedp.Sleep(settle))
	}
	err := s.run(ctx, s.opts.navigateTimeout()+settle, actions...)
	if errors.Is(err, context.DeadlineExceeded) {
		span.SetStatus(codes.Error, "navigation timed out")
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
	}
	return err
}

func (s *Session) elementOp(ctx context.Context, name, selector string, action chromedp.Action) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	err := s.run(ctx, s.opts.actionTimeout(), action)
	if errors.Is(err, context.DeadlineExceeded) {
		span.SetStatus(codes.Error, "element not found")
		return NotFoundError{Selector: selector}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "browser action failed")
	}
	return err
}

// Fill clears an input and types value into it.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.elementOp(ctx, "Fill", selector, chromedp.SetValue(selector, value, chromedp.ByQuery))
}

// Press sends a single key (e.g. Enter) to an element.
func (s *Session) Press(ctx context.Context, selector, key string) error {
	k := key
	if key == "Enter" {
		k = kb.Enter
	}
	return s.elementOp(ctx, "Press", selector, chromedp.SendKeys(selector, k, chromedp.ByQuery))
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.elementOp(ctx, "Click", selector, chromedp.Click(selector, chromedp.ByQuery))
}

// WaitVisible blocks until the selector is visible, up to timeout.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, span := tracer.Start(ctx, "WaitVisible")
	defer span.End()

	err := s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		span.SetStatus(codes.Error, "wait timed out")
		return fmt.Errorf("%w: waiting for %s", ErrNavigationTimeout, selector)
	}
	return err
}

// Sleep is a fixed settle delay inside the browser's event loop.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return s.run(ctx, d+time.Second, chromedp.Sleep(d))
}

// OuterHTML captures the outer HTML of the first node matching the
// selector.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	var out string
	err := s.elementOp(ctx, "OuterHTML", selector,
		chromedp.OuterHTML(selector, &out, chromedp.ByQuery))
	return out, err
}

// PageContent returns the full document HTML.
func (s *Session) PageContent(ctx context.Context) (string, error) {
	var out string
	err := s.elementOp(ctx, "PageContent", "html",
		chromedp.OuterHTML("html", &out, chromedp.ByQuery))
	return out, err
}

// Location returns the page's current url.
func (s *Session) Location(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, s.opts.actionTimeout(), chromedp.Location(&out))
	return out, err
}

// Text returns the inner text of the first node matching the
// selector, or ("", false) when the node is absent.
func (s *Session) Text(ctx context.Context, selector string) (string, bool) {
	var out string
	err := s.elementOp(ctx, "Text", selector,
		chromedp.Text(selector, &out, chromedp.ByQuery))
	if err != nil {
		return "", false
	}
	return out, true
}
