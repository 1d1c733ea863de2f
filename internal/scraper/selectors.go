package scraper

// LinkedIn company "People" page selectors.
// These break whenever LinkedIn changes its markup; inspect
// https://www.linkedin.com/company/<name>/people/ in DevTools to update them.
const (
	// SelectorLoadMore is the "Show more results" button under the card grid.
	SelectorLoadMore = `button.scaffold-finite-scroll__load-button`

	// SelectorProfileCard matches one employee card.
	SelectorProfileCard = `li.org-people-profile-card__profile-card-spacing`

	// Inside a card.
	SelectorLink        = `a[data-test-app-aware-link]`
	SelectorName        = `.artdeco-entity-lockup__title .lt-line-clamp--single-line`
	SelectorDescription = `.artdeco-entity-lockup__subtitle .lt-line-clamp--multi-line`

	// selectorHidden is screen-reader text that a browser would not render.
	selectorHidden = `.visually-hidden`
)
