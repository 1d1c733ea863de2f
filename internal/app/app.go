// Package app ties the browser, login flow, abort watcher and scraper into
// a single run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"inscraper/internal/auth"
	"inscraper/internal/browser"
	"inscraper/internal/config"
	"inscraper/internal/logger"
	"inscraper/internal/scraper"
)

// ErrLoginFailed is returned when the manual login could not be confirmed.
var ErrLoginFailed = errors.New("login failed or expired")

// Browser is a launched Chrome tab.
type Browser interface {
	scraper.Page
	Close()
}

// Launcher starts a browser on the persistent profile.
type Launcher func(ctx context.Context, headless bool) (Browser, error)

// Watcher reports abort requests from the keyboard.
type Watcher interface {
	Requested() bool
	Stop()
}

// App runs one scrape.
type App struct {
	Config *config.Config
	Logger logger.Logger
	Launch Launcher
	// Watch starts the abort watcher once the session is ready.
	Watch func() Watcher
	In    io.Reader
	Out   io.Writer
}

// ChromeLauncher launches real Chrome instances for cfg.
func ChromeLauncher(cfg config.BrowserConfig, profileDir string, log logger.Logger) Launcher {
	return func(ctx context.Context, headless bool) (Browser, error) {
		s, err := browser.Launch(ctx, browser.Options{
			ProfileDir: profileDir,
			Headless:   headless,
			ExecPath:   cfg.ExecPath,
			UserAgent:  cfg.UserAgent,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Run acquires a logged-in headless browser, scrapes target and prints a
// summary. An abort by the user is not an error.
func (a *App) Run(ctx context.Context, target string) (scraper.Stats, error) {
	runID := uuid.NewString()
	log := a.Logger.With(logger.String("run_id", runID))
	started := time.Now()

	b, err := a.session(ctx, log)
	if err != nil {
		return scraper.Stats{}, err
	}
	defer func() {
		b.Close()
		log.Info("Browser closed")
	}()

	stats, err := a.scrape(ctx, b, log, target)
	switch {
	case errors.Is(err, scraper.ErrAborted):
		log.Warn("User interruption requested. Exiting...")
		err = nil
	case errors.Is(err, scraper.ErrNotLoggedIn):
		log.Error("Not logged in to LinkedIn")
	case err != nil:
		log.Error("Failed to process scraping", logger.Error(err))
	}

	a.summary(runID, stats, time.Since(started))
	return stats, err
}

// scrape runs the scraper with the abort watcher active. The watcher is
// stopped before returning so the terminal is usable again for the summary.
func (a *App) scrape(ctx context.Context, b Browser, log logger.Logger, target string) (scraper.Stats, error) {
	var aborter scraper.Aborter
	if a.Watch != nil {
		w := a.Watch()
		defer w.Stop()
		aborter = w
	}
	return scraper.New(ScrapeOptions(a.Config), log, aborter).Run(ctx, b, target)
}

// session returns a headless browser holding a LinkedIn session, walking the
// user through a headed login first when needed.
func (a *App) session(ctx context.Context, log logger.Logger) (Browser, error) {
	checker := auth.Checker{FeedURL: a.Config.Auth.FeedURL, Delay: a.Config.Auth.CheckDelay}

	b, err := a.Launch(ctx, true)
	if err != nil {
		return nil, err
	}
	ok, err := checker.IsLoggedIn(ctx, b)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("check login: %w", err)
	}
	if ok {
		return b, nil
	}
	b.Close()

	log.Info("Not logged in, opening window for login...")
	b, err = a.Launch(ctx, false)
	if err != nil {
		return nil, err
	}
	prompter := auth.Prompter{
		Checker:  checker,
		LoginURL: a.Config.Auth.LoginURL,
		In:       a.In,
		Out:      a.Out,
		Logger:   log,
	}
	ok, err = prompter.Login(ctx, b)
	b.Close()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		log.Error("Login failed or expired.")
		return nil, ErrLoginFailed
	}

	log.Info("Restarting in headless mode...")
	return a.Launch(ctx, true)
}

func (a *App) summary(runID string, stats scraper.Stats, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(a.Out)
	t.AppendHeader(table.Row{"Run", "Loaded", "Found", "Written", "Failed", "Output", "Elapsed"})
	t.AppendRow(table.Row{
		runID[:8],
		stats.Loaded,
		stats.Found,
		stats.Written,
		stats.Failed,
		a.Config.Output.Path,
		elapsed.Round(time.Second),
	})
	t.Render()
}

// ScrapeOptions maps the configuration onto scraper options.
func ScrapeOptions(cfg *config.Config) scraper.Options {
	return scraper.Options{
		PageLoadDelay:   cfg.Scrape.PageLoadDelay,
		StartDelay:      cfg.Scrape.StartDelay,
		LoadMoreTimeout: cfg.Scrape.LoadMoreTimeout,
		MaxRetries:      cfg.Scrape.MaxRetries,
		ScrollDelay:     cfg.Scrape.ScrollDelay,
		ClickDelayMin:   cfg.Scrape.ClickDelayMin,
		ClickDelayMax:   cfg.Scrape.ClickDelayMax,
		RecordDelayMin:  cfg.Scrape.RecordDelayMin,
		RecordDelayMax:  cfg.Scrape.RecordDelayMax,
		DumpHTML:        cfg.Scrape.DumpHTML,
		OutputPath:      cfg.Output.Path,
	}
}
