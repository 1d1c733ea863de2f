package scraper

import (
	"context"

	"inscraper/internal/logger"
)

// LoadResult describes how the load-more loop ended.
type LoadResult struct {
	Count  int
	Clicks int
	// Exhausted is true when the button disappeared, as opposed to the
	// retry bound being reached with a stagnant count.
	Exhausted bool
}

// LoadAll clicks "load more" until the button is gone or the card count has
// not grown for MaxRetries consecutive clicks. A missing button is the normal
// end of the list, not an error.
func (s *Scraper) LoadAll(ctx context.Context, page Page) (LoadResult, error) {
	var res LoadResult
	last, retries := -1, 0

	for retries < s.opts.MaxRetries {
		if err := page.WaitReady(ctx, SelectorLoadMore, s.opts.LoadMoreTimeout); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.log.Info("'Load more' button not found or not clickable; there may be no more profiles to load")
			res.Exhausted = true
			break
		}
		if err := page.ScrollIntoView(ctx, SelectorLoadMore); err != nil {
			s.log.Info("'Load more' button could not be scrolled to", logger.Error(err))
			res.Exhausted = true
			break
		}
		if err := pause(ctx, s.opts.ScrollDelay); err != nil {
			return res, err
		}
		if err := page.Click(ctx, SelectorLoadMore); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.log.Info("'Load more' button not clickable; there may be no more profiles to load", logger.Error(err))
			res.Exhausted = true
			break
		}
		res.Clicks++

		if err := pause(ctx, jitter(s.opts.ClickDelayMin, s.opts.ClickDelayMax)); err != nil {
			return res, err
		}

		count, err := page.Count(ctx, SelectorProfileCard)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.log.Warn("Counting profiles failed; treating as no more profiles", logger.Error(err))
			res.Exhausted = true
			break
		}
		res.Count = count

		if s.abortRequested() {
			return res, ErrAborted
		}

		s.log.Info("Profiles loaded so far", logger.Int("count", count))

		if count > last {
			last = count
			retries = 0
		} else {
			retries++
		}
	}
	return res, nil
}
