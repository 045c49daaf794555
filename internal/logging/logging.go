// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls Setup.
type Options struct {
	// Console receives every enabled line in human-readable form.
	Console io.Writer
	// Verbose lowers the global level to debug.
	Verbose bool
	// ErrorLog, when set, is a file that additionally receives error-level
	// lines and above. It is appended to, never truncated.
	ErrorLog string
}

// levelFilter forwards only lines at or above min.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) { return f.w.Write(p) }

func (f levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the global logger and returns a closer for the error file.
func Setup(opts Options) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	if opts.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	if opts.ErrorLog == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(opts.ErrorLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	file := zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true}
	multi := zerolog.MultiLevelWriter(console, levelFilter{w: file, min: zerolog.ErrorLevel})
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return f, nil
}
