package auth_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscraper/internal/auth"
	"inscraper/internal/logger"
)

const (
	feedURL  = "https://www.linkedin.com/feed/"
	loginURL = "https://www.linkedin.com/login"
)

// redirectPage sends every navigation to the URL returned by route.
type redirectPage struct {
	route   func(url string) string
	current string
	visited []string
	navErr  error
}

func (p *redirectPage) Navigate(_ context.Context, url string) error {
	if p.navErr != nil {
		return p.navErr
	}
	p.visited = append(p.visited, url)
	p.current = p.route(url)
	return nil
}

func (p *redirectPage) Location(context.Context) (string, error) { return p.current, nil }

func stay(url string) string { return url }

func toLogin(string) string {
	return "https://www.linkedin.com/uas/login?session_redirect=%2Ffeed%2F"
}

func TestChecker_IsLoggedIn(t *testing.T) {
	t.Parallel()

	c := auth.Checker{FeedURL: feedURL}

	ok, err := c.IsLoggedIn(context.Background(), &redirectPage{route: stay})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsLoggedIn(context.Background(), &redirectPage{route: func(string) string {
		return "https://www.linkedin.com/authwall?trk=x"
	}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecker_NavigateError(t *testing.T) {
	t.Parallel()

	boom := errors.New("net::ERR_INTERNET_DISCONNECTED")
	_, err := auth.Checker{FeedURL: feedURL}.IsLoggedIn(context.Background(), &redirectPage{navErr: boom})
	assert.ErrorIs(t, err, boom)
}

func newPrompter(in io.Reader, out io.Writer) auth.Prompter {
	return auth.Prompter{
		Checker:  auth.Checker{FeedURL: feedURL},
		LoginURL: loginURL,
		In:       in,
		Out:      out,
		Logger:   logger.NewNop(),
	}
}

func TestPrompter_LoginSucceeds(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	page := &redirectPage{route: stay}

	ok, err := newPrompter(strings.NewReader("\n"), &out).Login(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{loginURL, feedURL}, page.visited)
	assert.Contains(t, out.String(), "press ENTER")
}

func TestPrompter_LoginNotDetected(t *testing.T) {
	t.Parallel()

	ok, err := newPrompter(strings.NewReader("\n"), io.Discard).Login(context.Background(), &redirectPage{route: toLogin})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrompter_EOFIsFailedLogin(t *testing.T) {
	t.Parallel()

	page := &redirectPage{route: stay}
	ok, err := newPrompter(strings.NewReader(""), io.Discard).Login(context.Background(), page)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{loginURL}, page.visited, "feed must not be checked without ENTER")
}

func TestPrompter_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, _ := io.Pipe()
	_, err := newPrompter(pr, io.Discard).Login(ctx, &redirectPage{route: stay})
	assert.ErrorIs(t, err, context.Canceled)
}
