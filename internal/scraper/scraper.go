// Package scraper expands a company "People" page and harvests its profile cards.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"inscraper/internal/logger"
	"inscraper/internal/output"
)

var (
	// ErrNotLoggedIn means the target page redirected to the login form.
	ErrNotLoggedIn = errors.New("not logged in to LinkedIn")
	// ErrAborted means the user pressed the abort key.
	ErrAborted = errors.New("interrupted by user")
)

// Page is the browser tab the scraper drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	WaitReady(ctx context.Context, sel string, timeout time.Duration) error
	ScrollIntoView(ctx context.Context, sel string) error
	Click(ctx context.Context, sel string) error
	Count(ctx context.Context, sel string) (int, error)
	OuterHTMLs(ctx context.Context, sel string) ([]string, error)
	DumpHTML(ctx context.Context, path string) error
}

// Aborter is polled between pauses; a true result stops the run.
type Aborter interface {
	Requested() bool
}

// Options hold the waits and bounds of a run.
type Options struct {
	PageLoadDelay   time.Duration
	StartDelay      time.Duration
	LoadMoreTimeout time.Duration
	MaxRetries      int
	ScrollDelay     time.Duration
	ClickDelayMin   time.Duration
	ClickDelayMax   time.Duration
	RecordDelayMin  time.Duration
	RecordDelayMax  time.Duration
	DumpHTML        string
	OutputPath      string
}

// Stats summarises a run.
type Stats struct {
	// Loaded is the card count reached by the load-more loop.
	Loaded int
	// Clicks is how many times "load more" was clicked.
	Clicks int
	// Found is the number of cards enumerated for extraction.
	Found   int
	Written int
	Failed  int
}

// Scraper harvests one company page per Run.
type Scraper struct {
	opts    Options
	log     logger.Logger
	aborter Aborter
}

// New creates a Scraper. aborter may be nil.
func New(opts Options, log logger.Logger, aborter Aborter) *Scraper {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Scraper{opts: opts, log: log, aborter: aborter}
}

// Run opens target, loads every card and writes one row per readable card to
// the output file.
func (s *Scraper) Run(ctx context.Context, page Page, target string) (Stats, error) {
	var stats Stats

	s.log.Info("Accessing page", logger.String("url", target))
	if err := page.Navigate(ctx, target); err != nil {
		return stats, err
	}
	if err := pause(ctx, s.opts.PageLoadDelay); err != nil {
		return stats, err
	}

	loc, err := page.Location(ctx)
	if err != nil {
		return stats, err
	}
	if strings.Contains(loc, "login") {
		return stats, ErrNotLoggedIn
	}
	base, err := url.Parse(loc)
	if err != nil {
		return stats, fmt.Errorf("parse page url: %w", err)
	}

	s.log.Info("Starting scraping")
	if err := pause(ctx, s.opts.StartDelay); err != nil {
		return stats, err
	}

	s.log.Info("Loading all available profiles; press 'q' at any time to interrupt")
	loaded, err := s.LoadAll(ctx, page)
	stats.Loaded, stats.Clicks = loaded.Count, loaded.Clicks
	if err != nil {
		return stats, err
	}
	if !loaded.Exhausted {
		s.log.Info("Profile count stopped growing", logger.Int("clicks", loaded.Clicks))
	}

	if s.opts.DumpHTML != "" {
		if err := page.DumpHTML(ctx, s.opts.DumpHTML); err != nil {
			s.log.Warn("Could not save page HTML", logger.Error(err))
		} else {
			s.log.Info("Page HTML saved", logger.String("path", s.opts.DumpHTML))
		}
	}

	cards, err := page.OuterHTMLs(ctx, SelectorProfileCard)
	if err != nil {
		return stats, err
	}
	stats.Found = len(cards)
	s.log.Info("Total profiles found", logger.Int("count", len(cards)))

	w, err := output.Create(s.opts.OutputPath)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			s.log.Error("Closing output failed", logger.Error(cerr))
		}
	}()
	s.log.Info("Saving profiles", logger.String("path", w.Path()))

	err = s.extractAll(ctx, cards, base, w, &stats)

	s.log.Info("Profiles processed", logger.Int("count", stats.Written))
	s.log.Info("With errors", logger.Int("count", stats.Failed))
	return stats, err
}

// extractAll writes every readable card and counts the rest.
func (s *Scraper) extractAll(ctx context.Context, cards []string, base *url.URL, w *output.Writer, stats *Stats) error {
	for i, card := range cards {
		if s.abortRequested() {
			return ErrAborted
		}
		if err := pause(ctx, jitter(s.opts.RecordDelayMin, s.opts.RecordDelayMax)); err != nil {
			return err
		}

		rec, err := ExtractRecord(card, base)
		if err != nil {
			stats.Failed++
			s.log.Warn("Error processing profile: private or incomplete data",
				logger.Int("index", i+1), logger.Error(err))
			continue
		}
		if err := w.Write(rec); err != nil {
			return err
		}
		stats.Written = w.Count()
		s.log.Debug("Processed profile", logger.Int("index", i+1), logger.Int("total", len(cards)))
	}
	return nil
}

func (s *Scraper) abortRequested() bool {
	return s.aborter != nil && s.aborter.Requested()
}

// jitter returns a random duration in [lo, hi].
func jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo+1)))
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
