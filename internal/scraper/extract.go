package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"inscraper/internal/profile"
)

// ErrMissingField marks a card that lacks one of the required elements,
// usually a private profile ("LinkedIn Member").
var ErrMissingField = errors.New("missing field")

var innerWhitespace = regexp.MustCompile(`\s+`)

func clean(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// ExtractRecord reads link, name and description from the outer HTML of one
// profile card. base resolves relative hrefs.
func ExtractRecord(cardHTML string, base *url.URL) (profile.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	if err != nil {
		return profile.Record{}, fmt.Errorf("parse card: %w", err)
	}
	doc.Find(selectorHidden).Remove()

	anchor := doc.Find(SelectorLink).First()
	if anchor.Length() == 0 {
		return profile.Record{}, fmt.Errorf("%w: link", ErrMissingField)
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return profile.Record{}, fmt.Errorf("%w: href", ErrMissingField)
	}
	link, err := profile.CleanLink(href, base)
	if err != nil {
		return profile.Record{}, err
	}

	name := doc.Find(SelectorName).First()
	if name.Length() == 0 {
		return profile.Record{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	desc := doc.Find(SelectorDescription).First()
	if desc.Length() == 0 {
		return profile.Record{}, fmt.Errorf("%w: description", ErrMissingField)
	}

	return profile.Record{
		Link:        link,
		Name:        clean(name.Text()),
		Description: clean(desc.Text()),
	}, nil
}
