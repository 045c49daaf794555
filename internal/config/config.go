// Package config assembles run settings from defaults, an optional YAML or
// JSON file, dotenv files, HYLEE_* environment variables and flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"net/url"
	"strings"
	"time"
)

// Config holds runtime configuration for a harvest run.
type Config struct {
	// Source site
	BaseURL   string
	UserAgent string
	Suffix    string

	// Selection
	Years    string
	MaxDays  int
	Sanitize bool

	// Fetching
	Delay       time.Duration
	Timeout     time.Duration
	MaxAttempts int
	Parallel    int
	Robots      bool

	// Cache
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool
	CacheStrict bool
	CacheBypass bool

	// Output
	OutputDir  string
	SQLitePath string
	PDF        bool
	PDFFont    string

	// Logging
	ErrorLog string
	Verbose  bool

	// Sources of further settings
	ConfigFile string
	EnvFiles   string
}

const (
	DefaultBaseURL   = "https://hyena.cz"
	DefaultUserAgent = "HyleeArchiver/2.2"
	DefaultErrorLog  = "hylee_errors.log"
)

// Defaults returns the settings used when nothing else is given.
func Defaults() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		UserAgent:   DefaultUserAgent,
		Years:       "ALL",
		Sanitize:    true,
		Delay:       200 * time.Millisecond,
		Timeout:     10 * time.Second,
		MaxAttempts: 2,
		Parallel:    1,
		OutputDir:   ".",
		ErrorLog:    DefaultErrorLog,
	}
}

// BindFlags registers every setting on fs using the current values of cfg as
// flag defaults.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.BaseURL, "base", cfg.BaseURL, "Base URL of the archived site")
	fs.StringVar(&cfg.UserAgent, "ua", cfg.UserAgent, "User-Agent header for requests")
	fs.StringVar(&cfg.Suffix, "suffix", cfg.Suffix, "Literal after the YYMMDD code in daily page names (default pes)")
	fs.StringVar(&cfg.Years, "years", cfg.Years, "Years to harvest: YYYY, YYYY-YYYY or ALL")
	fs.IntVar(&cfg.MaxDays, "max.days", cfg.MaxDays, "Maximum days per year (0 = unlimited)")
	fs.BoolVar(&cfg.Sanitize, "sanitize", cfg.Sanitize, "Strip tag fragments, decode entities and collapse whitespace")
	fs.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Pause between daily pages of one year")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	fs.IntVar(&cfg.MaxAttempts, "attempts", cfg.MaxAttempts, "Attempts per request including retries on 5xx")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "Years processed concurrently")
	fs.BoolVar(&cfg.Robots, "robots", cfg.Robots, "Honour robots.txt Disallow rules and Crawl-delay")
	fs.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "HTTP cache directory (empty disables)")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", cfg.CacheMaxAge, "Purge cache entries older than this; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", cfg.CacheClear, "Clear the cache directory before the run")
	fs.BoolVar(&cfg.CacheStrict, "cache.strictPerms", cfg.CacheStrict, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.CacheBypass, "cache.bypass", cfg.CacheBypass, "Refetch every page without conditional requests, refreshing the cache")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory for hyena_<year>.json files")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "Also store bulletins in this SQLite database")
	fs.BoolVar(&cfg.PDF, "pdf", cfg.PDF, "Also render hyena_<year>.pdf digests")
	fs.StringVar(&cfg.PDFFont, "pdf.font", cfg.PDFFont, "UTF-8 TrueType font for PDF output")
	fs.StringVar(&cfg.ErrorLog, "log.errors", cfg.ErrorLog, "File receiving error-level log lines (empty disables)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging (per-day progress)")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML or JSON config file")
	fs.StringVar(&cfg.EnvFiles, "env", cfg.EnvFiles, "Comma-separated dotenv files to load")
}

// Validate performs minimal checks on required settings.
func Validate(cfg Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("config: base must be an absolute http(s) URL")
	}
	if strings.TrimSpace(cfg.Years) == "" {
		return errors.New("config: years is required")
	}
	if cfg.MaxDays < 0 {
		return errors.New("config: max.days must not be negative")
	}
	if cfg.Delay < 0 || cfg.Timeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: durations must not be negative")
	}
	if cfg.MaxAttempts < 0 || cfg.Parallel < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
