// Package browser manages the Chrome process driven through chromedp and
// exposes the handful of page primitives the scraper needs.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"inscraper/internal/logger"
)

// Options configure a browser launch.
type Options struct {
	ProfileDir string
	Headless   bool
	ExecPath   string
	UserAgent  string
	Logger     logger.Logger
}

// Session is a running Chrome instance with one tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

// Launch starts Chrome with the persistent profile and opens a blank tab.
// The browser lives until Close is called or parent is cancelled.
func Launch(parent context.Context, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(opts.ProfileDir),
		chromedp.Flag("profile-directory", "Default"),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1366, 900),
	)
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	bctx, bcancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Printf(opts.Logger)),
		chromedp.WithErrorf(logger.Printf(opts.Logger)),
	)

	s := &Session{ctx: bctx, cancel: bcancel, allocCancel: allocCancel}
	if err := chromedp.Run(bctx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("start chrome (headless=%v): %w", opts.Headless, err)
	}
	return s, nil
}

// Close shuts the browser down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = chromedp.Cancel(s.ctx)
		s.cancel()
		s.allocCancel()
	})
}

// run executes actions on the tab, aborting them when ctx is done without
// closing the tab itself.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

const documentCompleteJS = `new Promise(r => {
	if (document.readyState === 'complete') return r(true);
	window.addEventListener('load', () => r(true), {once: true});
})`

// Navigate loads url and waits for the document to finish loading.
func (s *Session) Navigate(ctx context.Context, url string) error {
	var done bool
	if err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.Evaluate(documentCompleteJS, &done, awaitPromise),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Location returns the current URL of the tab.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

// ErrNotReady is returned by WaitReady when the element did not become
// clickable within the timeout.
var ErrNotReady = errors.New("element not clickable")

// WaitReady waits until sel is visible and enabled.
func (s *Session) WaitReady(ctx context.Context, sel string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.run(waitCtx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.WaitEnabled(sel, chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %v", ErrNotReady, sel, err)
}

// ScrollIntoView smoothly centres the first element matching sel.
func (s *Session) ScrollIntoView(ctx context.Context, sel string) error {
	var ok bool
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.scrollIntoView({behavior: 'smooth', block: 'center'});
		return true;
	})()`, sel)
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &ok)); err != nil {
		return fmt.Errorf("scroll to %s: %w", sel, err)
	}
	if !ok {
		return fmt.Errorf("scroll to %s: element not found", sel)
	}
	return nil
}

// Click clicks the first visible element matching sel.
func (s *Session) Click(ctx context.Context, sel string) error {
	if err := s.run(ctx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

// Count returns how many elements match sel.
func (s *Session) Count(ctx context.Context, sel string) (int, error) {
	var n int
	js := fmt.Sprintf(`document.querySelectorAll(%q).length`, sel)
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &n)); err != nil {
		return 0, fmt.Errorf("count %s: %w", sel, err)
	}
	return n, nil
}

// OuterHTMLs returns a snapshot of the outer HTML of every element matching sel.
func (s *Session) OuterHTMLs(ctx context.Context, sel string) ([]string, error) {
	var out []string
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%q), el => el.outerHTML)`, sel)
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &out)); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", sel, err)
	}
	return out, nil
}

// HTML returns the serialized document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(`document.documentElement.outerHTML`, &html)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

// DumpHTML writes the current document to path.
func (s *Session) DumpHTML(ctx context.Context, path string) error {
	html, err := s.HTML(ctx)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(html), 0o644)
}
