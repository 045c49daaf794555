package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envConfig lists the recognised environment variables. Pointer fields stay
// nil when the variable is unset.
type envConfig struct {
	BaseURL     *string        `env:"BASE_URL"`
	UserAgent   *string        `env:"USER_AGENT"`
	Suffix      *string        `env:"SUFFIX"`
	Years       *string        `env:"YEARS"`
	MaxDays     *int           `env:"MAX_DAYS"`
	Sanitize    *bool          `env:"SANITIZE"`
	Delay       *time.Duration `env:"DELAY"`
	Timeout     *time.Duration `env:"TIMEOUT"`
	MaxAttempts *int           `env:"ATTEMPTS"`
	Parallel    *int           `env:"PARALLEL"`
	Robots      *bool          `env:"ROBOTS"`
	CacheDir    *string        `env:"CACHE_DIR"`
	CacheMaxAge *time.Duration `env:"CACHE_MAX_AGE"`
	CacheClear  *bool          `env:"CACHE_CLEAR"`
	CacheStrict *bool          `env:"CACHE_STRICT_PERMS"`
	CacheBypass *bool          `env:"CACHE_BYPASS"`
	OutputDir   *string        `env:"OUTPUT_DIR"`
	SQLitePath  *string        `env:"SQLITE"`
	PDF         *bool          `env:"PDF"`
	PDFFont     *string        `env:"PDF_FONT"`
	ErrorLog    *string        `env:"ERROR_LOG"`
	Verbose     *bool          `env:"VERBOSE"`
}

// EnvPrefix namespaces every variable, e.g. HYLEE_YEARS.
const EnvPrefix = "HYLEE_"

// ApplyEnv overrides cfg with every HYLEE_* variable that is set.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setString(&cfg.BaseURL, ec.BaseURL)
	setString(&cfg.UserAgent, ec.UserAgent)
	setString(&cfg.Suffix, ec.Suffix)
	setString(&cfg.Years, ec.Years)
	setString(&cfg.CacheDir, ec.CacheDir)
	setString(&cfg.OutputDir, ec.OutputDir)
	setString(&cfg.SQLitePath, ec.SQLitePath)
	setString(&cfg.PDFFont, ec.PDFFont)
	setString(&cfg.ErrorLog, ec.ErrorLog)
	if ec.MaxDays != nil {
		cfg.MaxDays = *ec.MaxDays
	}
	if ec.MaxAttempts != nil {
		cfg.MaxAttempts = *ec.MaxAttempts
	}
	if ec.Parallel != nil {
		cfg.Parallel = *ec.Parallel
	}
	if ec.Sanitize != nil {
		cfg.Sanitize = *ec.Sanitize
	}
	if ec.Robots != nil {
		cfg.Robots = *ec.Robots
	}
	if ec.CacheClear != nil {
		cfg.CacheClear = *ec.CacheClear
	}
	if ec.CacheStrict != nil {
		cfg.CacheStrict = *ec.CacheStrict
	}
	if ec.CacheBypass != nil {
		cfg.CacheBypass = *ec.CacheBypass
	}
	if ec.PDF != nil {
		cfg.PDF = *ec.PDF
	}
	if ec.Verbose != nil {
		cfg.Verbose = *ec.Verbose
	}
	if ec.Delay != nil {
		cfg.Delay = *ec.Delay
	}
	if ec.Timeout != nil {
		cfg.Timeout = *ec.Timeout
	}
	if ec.CacheMaxAge != nil {
		cfg.CacheMaxAge = *ec.CacheMaxAge
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// LoadEnvFiles loads dotenv files into the process environment. Later files
// override earlier ones and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := godotenv.Overload(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// SplitList splits a comma-separated flag value.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
