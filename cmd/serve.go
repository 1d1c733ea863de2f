package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"inscraper/internal/config"
	"inscraper/internal/logger"
	"inscraper/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		srv := web.New(web.Config{
			Port:       cfg.Server.Port,
			OutputPath: cfg.Output.Path,
			Command:    web.SelfCommand(configFile),
			Debug:      strings.EqualFold(cfg.Log.Level, "debug"),
		}, log)
		if cfg.Server.OpenBrowser {
			if err := web.OpenBrowser(srv.URL()); err != nil {
				log.Warn("Could not open browser", logger.Error(err))
			}
		}
		return srv.Run(cmd.Context())
	},
}
