// Package profile holds the record harvested from a company "People" page.
package profile

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// Record is one employee-listing entry.
type Record struct {
	Link        string
	Name        string
	Description string
}

// ErrInvalidLink is returned by CleanLink for hrefs that are not absolute http(s) URLs.
var ErrInvalidLink = errors.New("invalid profile link")

// CleanLink resolves href against base (which may be nil), drops the query
// string and fragment and normalises the result.
func CleanLink(href string, base *url.URL) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("%w: empty href", ErrInvalidLink)
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLink, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidLink, href)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	return purell.NormalizeURL(u, purell.FlagsSafe|purell.FlagRemoveFragment), nil
}
