package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the config file schema. Sections mirror the flag prefixes.
type FileConfig struct {
	Base      string `yaml:"base" json:"base"`
	UserAgent string `yaml:"userAgent" json:"userAgent"`
	Suffix    string `yaml:"suffix" json:"suffix"`

	Years    string `yaml:"years" json:"years"`
	MaxDays  *int   `yaml:"maxDays" json:"maxDays"`
	Sanitize *bool  `yaml:"sanitize" json:"sanitize"`

	Fetch struct {
		Delay    *Duration `yaml:"delay" json:"delay"`
		Timeout  *Duration `yaml:"timeout" json:"timeout"`
		Attempts int       `yaml:"attempts" json:"attempts"`
		Parallel int       `yaml:"parallel" json:"parallel"`
		Robots   bool      `yaml:"robots" json:"robots"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
		Bypass      bool     `yaml:"bypass" json:"bypass"`
	} `yaml:"cache" json:"cache"`

	Output struct {
		Dir     string `yaml:"dir" json:"dir"`
		SQLite  string `yaml:"sqlite" json:"sqlite"`
		PDF     bool   `yaml:"pdf" json:"pdf"`
		PDFFont string `yaml:"pdfFont" json:"pdfFont"`
	} `yaml:"output" json:"output"`

	Log struct {
		Errors  *string `yaml:"errors" json:"errors"`
		Verbose bool    `yaml:"verbose" json:"verbose"`
	} `yaml:"log" json:"log"`
}

// Duration accepts Go duration strings ("200ms", "24h") in YAML and JSON.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadFile reads YAML or JSON into FileConfig.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFile overlays every value present in fc onto cfg.
func ApplyFile(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Base != "" {
		cfg.BaseURL = fc.Base
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.Suffix != "" {
		cfg.Suffix = fc.Suffix
	}
	if fc.Years != "" {
		cfg.Years = fc.Years
	}
	if fc.MaxDays != nil {
		cfg.MaxDays = *fc.MaxDays
	}
	if fc.Sanitize != nil {
		cfg.Sanitize = *fc.Sanitize
	}

	if fc.Fetch.Delay != nil {
		cfg.Delay = time.Duration(*fc.Fetch.Delay)
	}
	if fc.Fetch.Timeout != nil {
		cfg.Timeout = time.Duration(*fc.Fetch.Timeout)
	}
	if fc.Fetch.Attempts > 0 {
		cfg.MaxAttempts = fc.Fetch.Attempts
	}
	if fc.Fetch.Parallel > 0 {
		cfg.Parallel = fc.Fetch.Parallel
	}
	if fc.Fetch.Robots {
		cfg.Robots = true
	}

	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrict = true
	}
	if fc.Cache.Bypass {
		cfg.CacheBypass = true
	}

	if fc.Output.Dir != "" {
		cfg.OutputDir = fc.Output.Dir
	}
	if fc.Output.SQLite != "" {
		cfg.SQLitePath = fc.Output.SQLite
	}
	if fc.Output.PDF {
		cfg.PDF = true
	}
	if fc.Output.PDFFont != "" {
		cfg.PDFFont = fc.Output.PDFFont
	}

	if fc.Log.Errors != nil {
		cfg.ErrorLog = *fc.Log.Errors
	}
	if fc.Log.Verbose {
		cfg.Verbose = true
	}
}
