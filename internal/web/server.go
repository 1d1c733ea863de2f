// Package web serves a small local UI that starts scrape runs and streams
// their output.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"inscraper/internal/logger"
)

const (
	previewLimit    = 200
	shutdownTimeout = 10 * time.Second
)

// CommandFunc builds the process that scrapes target.
type CommandFunc func(ctx context.Context, target string) *exec.Cmd

// Config configures the server.
type Config struct {
	Port       int
	OutputPath string
	// Command defaults to re-running the current executable with the URL.
	Command CommandFunc
	// Debug keeps gin in debug mode.
	Debug bool
}

// Server is the local UI.
type Server struct {
	cfg    Config
	log    logger.Logger
	engine *gin.Engine
	// running is held by the /run in progress; Chrome locks the profile.
	running atomic.Bool
}

// New builds the router.
func New(cfg Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Command == nil {
		cfg.Command = SelfCommand("")
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	s := &Server{cfg: cfg, log: log, engine: engine}
	engine.GET("/", s.handleIndex)
	engine.POST("/run", s.handleRun)
	engine.GET("/download", s.handleDownload)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr is the listen address.
func (s *Server) Addr() string { return fmt.Sprintf(":%d", s.cfg.Port) }

// URL is where the UI can be opened locally.
func (s *Server) URL() string { return fmt.Sprintf("http://localhost:%d", s.cfg.Port) }

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server running", logger.String("url", s.URL()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// SelfCommand runs this executable against target, passing configFile on
// so the child reads the same settings as the server.
func SelfCommand(configFile string) CommandFunc {
	return func(ctx context.Context, target string) *exec.Cmd {
		bin, err := os.Executable()
		if err != nil {
			bin = os.Args[0]
		}
		args := []string{target}
		if configFile != "" {
			args = append(args, "--config", configFile)
		}
		return exec.CommandContext(ctx, bin, args...)
	}
}

// OpenBrowser opens url in the desktop browser, best effort.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Error("HTTP request with errors", append(fields, logger.String("errors", c.Errors.String()))...)
			return
		}
		log.Debug("HTTP request", fields...)
	}
}
