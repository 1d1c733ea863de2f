package scraper_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscraper/internal/output"
	"inscraper/internal/scraper"
)

var errNoButton = errors.New("button not found")

// fakePage simulates the People page. counts[i] is the card count after the
// (i+1)th click; the last value repeats.
type fakePage struct {
	location string
	counts   []int
	// buttonClicks is how many times the button can be found; negative means always.
	buttonClicks int
	cards        []string
	countErr     error

	clicks    int
	navigated []string
	dumped    string
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if p.location == "" {
		p.location = url
	}
	return nil
}

func (p *fakePage) Location(context.Context) (string, error) { return p.location, nil }

func (p *fakePage) WaitReady(ctx context.Context, _ string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.buttonClicks >= 0 && p.clicks >= p.buttonClicks {
		return errNoButton
	}
	return nil
}

func (p *fakePage) ScrollIntoView(context.Context, string) error { return nil }

func (p *fakePage) Click(context.Context, string) error {
	p.clicks++
	return nil
}

func (p *fakePage) Count(context.Context, string) (int, error) {
	if p.countErr != nil {
		return 0, p.countErr
	}
	if len(p.counts) == 0 {
		return len(p.cards), nil
	}
	i := min(p.clicks-1, len(p.counts)-1)
	return p.counts[max(i, 0)], nil
}

func (p *fakePage) OuterHTMLs(context.Context, string) ([]string, error) { return p.cards, nil }

func (p *fakePage) DumpHTML(_ context.Context, path string) error {
	p.dumped = path
	return nil
}

// afterN reports an abort once Requested has been called more than n times.
type afterN struct {
	n     int32
	calls atomic.Int32
}

func (a *afterN) Requested() bool { return a.calls.Add(1) > a.n }

func options(t *testing.T) scraper.Options {
	t.Helper()
	return scraper.Options{
		MaxRetries: 3,
		OutputPath: filepath.Join(t.TempDir(), "profiles.csv"),
	}
}

func TestLoadAll_StopsWhenCountStagnates(t *testing.T) {
	page := &fakePage{counts: []int{5}, buttonClicks: -1}
	s := scraper.New(options(t), nil, nil)

	res, err := s.LoadAll(context.Background(), page)
	require.NoError(t, err)

	// One growing click, then MaxRetries stagnant ones.
	assert.Equal(t, 4, res.Clicks)
	assert.Equal(t, 5, res.Count)
	assert.False(t, res.Exhausted)
}

func TestLoadAll_GrowthResetsRetries(t *testing.T) {
	page := &fakePage{counts: []int{5, 5, 10, 10}, buttonClicks: -1}
	s := scraper.New(options(t), nil, nil)

	res, err := s.LoadAll(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Clicks)
	assert.Equal(t, 10, res.Count)
}

func TestLoadAll_MissingButtonEndsNormally(t *testing.T) {
	page := &fakePage{counts: []int{5, 10}, buttonClicks: 2}
	s := scraper.New(options(t), nil, nil)

	res, err := s.LoadAll(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Clicks)
	assert.Equal(t, 10, res.Count)
	assert.True(t, res.Exhausted)
}

func TestLoadAll_NoButtonAtAll(t *testing.T) {
	page := &fakePage{buttonClicks: 0}
	s := scraper.New(options(t), nil, nil)

	res, err := s.LoadAll(context.Background(), page)
	require.NoError(t, err)
	assert.Zero(t, res.Clicks)
	assert.True(t, res.Exhausted)
}

func TestLoadAll_CountFailureEndsAsNoMoreData(t *testing.T) {
	page := &fakePage{buttonClicks: -1, countErr: errors.New("target closed")}
	s := scraper.New(options(t), nil, nil)

	res, err := s.LoadAll(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Clicks)
	assert.True(t, res.Exhausted)
}

func TestLoadAll_Abort(t *testing.T) {
	page := &fakePage{counts: []int{5, 10, 15}, buttonClicks: -1}
	s := scraper.New(options(t), nil, &afterN{n: 0})

	res, err := s.LoadAll(context.Background(), page)
	require.ErrorIs(t, err, scraper.ErrAborted)
	assert.Equal(t, 1, res.Clicks)
}

func TestLoadAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scraper.New(options(t), nil, nil)
	_, err := s.LoadAll(ctx, &fakePage{buttonClicks: -1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_WritesReadableCardsAndCountsFailures(t *testing.T) {
	opts := options(t)
	opts.DumpHTML = filepath.Join(t.TempDir(), "page.html")
	page := &fakePage{
		buttonClicks: 0,
		cards:        []string{fullCard, privateCard},
	}
	target := "https://www.linkedin.com/company/acme/people/"

	stats, err := scraper.New(opts, nil, nil).Run(context.Background(), page, target)
	require.NoError(t, err)

	assert.Equal(t, []string{target}, page.navigated)
	assert.Equal(t, opts.DumpHTML, page.dumped)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Failed)

	recs, err := output.ReadLimited(opts.OutputPath, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", recs[0].Link)
	assert.Equal(t, "Jane Doe", recs[0].Name)
	assert.NotContains(t, recs[0].Link, "?")
}

func TestRun_NotLoggedIn(t *testing.T) {
	opts := options(t)
	page := &fakePage{location: "https://www.linkedin.com/login?session_redirect=x"}

	_, err := scraper.New(opts, nil, nil).Run(context.Background(), page, "https://www.linkedin.com/company/acme/people/")
	require.ErrorIs(t, err, scraper.ErrNotLoggedIn)

	_, statErr := os.Stat(opts.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "no output file without a session")
}

func TestRun_AbortDuringExtractionKeepsWrittenRows(t *testing.T) {
	opts := options(t)
	page := &fakePage{buttonClicks: 0, cards: []string{fullCard, fullCard, fullCard}}

	stats, err := scraper.New(opts, nil, &afterN{n: 1}).Run(context.Background(), page, "https://www.linkedin.com/company/acme/people/")
	require.ErrorIs(t, err, scraper.ErrAborted)
	assert.Equal(t, 1, stats.Written)

	recs, err := output.ReadLimited(opts.OutputPath, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
