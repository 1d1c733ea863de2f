// Package config loads inscraper settings from defaults, an optional
// inscraper.yaml, a .env file and INSCRAPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. INSCRAPER_OUTPUT_PATH.
const EnvPrefix = "INSCRAPER"

// Config holds all settings for a run.
type Config struct {
	Browser BrowserConfig
	Auth    AuthConfig
	Scrape  ScrapeConfig
	Output  OutputConfig
	Log     LogConfig
	Server  ServerConfig
}

// BrowserConfig controls the Chrome process.
type BrowserConfig struct {
	ProfileDir string
	ExecPath   string
	UserAgent  string
}

// AuthConfig holds the login detection endpoints.
type AuthConfig struct {
	LoginURL   string
	FeedURL    string
	CheckDelay time.Duration
}

// ScrapeConfig holds the waits and bounds of the load-more loop and extraction.
type ScrapeConfig struct {
	PageLoadDelay   time.Duration
	StartDelay      time.Duration
	LoadMoreTimeout time.Duration
	MaxRetries      int
	ScrollDelay     time.Duration
	ClickDelayMin   time.Duration
	ClickDelayMax   time.Duration
	RecordDelayMin  time.Duration
	RecordDelayMax  time.Duration
	// DumpHTML, when set, is where the loaded page HTML is saved for debugging.
	DumpHTML string
}

// OutputConfig holds the result file location.
type OutputConfig struct {
	Path string
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string
	Format string
}

// ServerConfig configures `inscraper serve`.
type ServerConfig struct {
	Port        int
	OpenBrowser bool
}

// Load reads configuration. configFile may be empty, in which case
// inscraper.yaml is looked up in the working directory and ./config.
func Load(configFile string) (*Config, error) {
	// .env is optional; existing environment variables win.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("inscraper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Browser: BrowserConfig{
			ProfileDir: v.GetString("browser.profile_dir"),
			ExecPath:   v.GetString("browser.exec_path"),
			UserAgent:  v.GetString("browser.user_agent"),
		},
		Auth: AuthConfig{
			LoginURL:   v.GetString("auth.login_url"),
			FeedURL:    v.GetString("auth.feed_url"),
			CheckDelay: v.GetDuration("auth.check_delay"),
		},
		Scrape: ScrapeConfig{
			PageLoadDelay:   v.GetDuration("scrape.page_load_delay"),
			StartDelay:      v.GetDuration("scrape.start_delay"),
			LoadMoreTimeout: v.GetDuration("scrape.load_more_timeout"),
			MaxRetries:      v.GetInt("scrape.max_retries"),
			ScrollDelay:     v.GetDuration("scrape.scroll_delay"),
			ClickDelayMin:   v.GetDuration("scrape.click_delay_min"),
			ClickDelayMax:   v.GetDuration("scrape.click_delay_max"),
			RecordDelayMin:  v.GetDuration("scrape.record_delay_min"),
			RecordDelayMax:  v.GetDuration("scrape.record_delay_max"),
			DumpHTML:        v.GetString("scrape.dump_html"),
		},
		Output: OutputConfig{
			Path: v.GetString("output.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Server: ServerConfig{
			Port:        v.GetInt("server.port"),
			OpenBrowser: v.GetBool("server.open_browser"),
		},
	}
	if cfg.Browser.ExecPath == "" {
		cfg.Browser.ExecPath = os.Getenv("CHROME_PATH")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.profile_dir", "inscraperChromeProfile")
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_agent", "")

	v.SetDefault("auth.login_url", "https://www.linkedin.com/login")
	v.SetDefault("auth.feed_url", "https://www.linkedin.com/feed/")
	v.SetDefault("auth.check_delay", 5*time.Second)

	v.SetDefault("scrape.page_load_delay", 5*time.Second)
	v.SetDefault("scrape.start_delay", 5*time.Second)
	v.SetDefault("scrape.load_more_timeout", 10*time.Second)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.scroll_delay", 1500*time.Millisecond)
	v.SetDefault("scrape.click_delay_min", 3*time.Second)
	v.SetDefault("scrape.click_delay_max", 5*time.Second)
	v.SetDefault("scrape.record_delay_min", 1*time.Second)
	v.SetDefault("scrape.record_delay_max", 3*time.Second)
	v.SetDefault("scrape.dump_html", "")

	v.SetDefault("output.path", "linkedin_profiles.csv")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.open_browser", false)
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Browser.ProfileDir) == "" {
		return errors.New("browser.profile_dir must not be empty")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must not be empty")
	}
	if c.Scrape.MaxRetries < 1 {
		return errors.New("scrape.max_retries must be at least 1")
	}
	durations := map[string]time.Duration{
		"auth.check_delay":         c.Auth.CheckDelay,
		"scrape.page_load_delay":   c.Scrape.PageLoadDelay,
		"scrape.start_delay":       c.Scrape.StartDelay,
		"scrape.load_more_timeout": c.Scrape.LoadMoreTimeout,
		"scrape.scroll_delay":      c.Scrape.ScrollDelay,
		"scrape.click_delay_min":   c.Scrape.ClickDelayMin,
		"scrape.record_delay_min":  c.Scrape.RecordDelayMin,
	}
	for key, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative", key)
		}
	}
	if c.Scrape.ClickDelayMax < c.Scrape.ClickDelayMin {
		return errors.New("scrape.click_delay_max must not be below scrape.click_delay_min")
	}
	if c.Scrape.RecordDelayMax < c.Scrape.RecordDelayMin {
		return errors.New("scrape.record_delay_max must not be below scrape.record_delay_min")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be a valid TCP port")
	}
	return nil
}
