// Package cmd holds the inscraper command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"inscraper/internal/abort"
	"inscraper/internal/app"
	"inscraper/internal/browser"
	"inscraper/internal/config"
	"inscraper/internal/logger"
)

const usage = `inscraper "https://www.linkedin.com/company/<COMPANY-NAME>/people/"`

var configFile string

var rootCmd = &cobra.Command{
	Use:   usage,
	Short: "Scrape the People page of a LinkedIn company into a CSV file",
	Long: `inscraper opens a LinkedIn company "People" page in Chrome, loads every
profile card and saves link, name and description to linkedin_profiles.csv.

The first run opens a browser window so you can log in; the session is kept
in a dedicated Chrome profile for later runs. Press 'q' to stop early.`,
	Args:          exactlyOneURL,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScrape,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./inscraper.yaml)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[!]", err)
		os.Exit(1)
	}
}

func exactlyOneURL(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: " + usage)
	}
	return nil
}

func newLogger(cfg *config.Config, rawTerminal bool) (logger.Logger, error) {
	lc := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Color:  term.IsTerminal(int(os.Stderr.Fd())),
	}
	if rawTerminal {
		lc.LineEnding = "\r\n"
	}
	return logger.New(lc)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	interactive := abort.IsTerminal()
	log, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	profileDir, err := browser.EnsureProfileDir(cfg.Browser.ProfileDir)
	if err != nil {
		log.Error("Error creating profile", logger.Error(err))
		return err
	}

	a := &app.App{
		Config: cfg,
		Logger: log,
		Launch: app.ChromeLauncher(cfg.Browser, profileDir, log),
		Watch:  func() app.Watcher { return abort.WatchStdin() },
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	_, err = a.Run(cmd.Context(), args[0])
	return err
}
