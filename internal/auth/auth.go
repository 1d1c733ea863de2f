// Package auth detects whether the browser profile holds a LinkedIn session
// and walks the user through a manual login when it does not.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"inscraper/internal/logger"
)

// Page is the part of a browser tab the login flow drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
}

// Checker tells whether the session in a page is authenticated.
type Checker struct {
	FeedURL string
	// Delay is how long to let redirects settle after opening the feed.
	Delay time.Duration
}

// IsLoggedIn opens the feed and reports whether the browser stayed there.
// An anonymous session is redirected away from /feed/.
func (c Checker) IsLoggedIn(ctx context.Context, page Page) (bool, error) {
	if err := page.Navigate(ctx, c.FeedURL); err != nil {
		return false, err
	}
	if err := sleep(ctx, c.Delay); err != nil {
		return false, err
	}
	loc, err := page.Location(ctx)
	if err != nil {
		return false, err
	}
	return strings.Contains(loc, "feed"), nil
}

// Prompter asks the user to log in by hand in a visible browser window.
type Prompter struct {
	Checker  Checker
	LoginURL string
	In       io.Reader
	Out      io.Writer
	Logger   logger.Logger
}

// Login opens the login page, waits for ENTER and checks the session again.
// Closing the input before ENTER counts as a failed login.
func (p Prompter) Login(ctx context.Context, page Page) (bool, error) {
	fmt.Fprintln(p.Out, "[*] Please log in to LinkedIn in the window that opened.")
	if err := page.Navigate(ctx, p.LoginURL); err != nil {
		return false, err
	}
	fmt.Fprint(p.Out, "[*] After finishing the login, press ENTER here in the terminal to continue...")

	if err := waitEnter(ctx, p.In); err != nil {
		if errors.Is(err, io.EOF) {
			p.Logger.Warn("Input closed before ENTER was pressed")
			return false, nil
		}
		return false, err
	}

	ok, err := p.Checker.IsLoggedIn(ctx, page)
	if err != nil {
		return false, err
	}
	if ok {
		p.Logger.Info("Login successfully detected")
	} else {
		p.Logger.Warn("Login not detected. Please check if you logged in correctly")
	}
	return ok, nil
}

func waitEnter(ctx context.Context, in io.Reader) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
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
