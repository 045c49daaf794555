package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreGlobals(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_ErrorFileReceivesOnlyErrors(t *testing.T) {
	restoreGlobals(t)
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "errors.log")
	closer, err := Setup(Options{Console: &console, ErrorLog: path})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info().Msg("year started")
	log.Error().Int("year", 2004).Msg("failed to save year")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "year started") || !strings.Contains(console.String(), "failed to save year") {
		t.Fatalf("console missing lines: %q", console.String())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	got := string(b)
	if strings.Contains(got, "year started") {
		t.Fatalf("info line leaked into error log: %q", got)
	}
	if !strings.Contains(got, "failed to save year") || !strings.Contains(got, "year=2004") {
		t.Fatalf("error line missing: %q", got)
	}
}

func TestSetup_Verbose(t *testing.T) {
	restoreGlobals(t)
	var console bytes.Buffer
	if _, err := Setup(Options{Console: &console}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Debug().Msg("hidden")
	if strings.Contains(console.String(), "hidden") {
		t.Fatalf("debug printed without verbose")
	}
	if _, err := Setup(Options{Console: &console, Verbose: true}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Debug().Msg("shown")
	if !strings.Contains(console.String(), "shown") {
		t.Fatalf("debug missing with verbose: %q", console.String())
	}
}

func TestSetup_BadErrorLogPath(t *testing.T) {
	restoreGlobals(t)
	bad := filepath.Join(t.TempDir(), "missing", "errors.log")
	if _, err := Setup(Options{Console: &bytes.Buffer{}, ErrorLog: bad}); err == nil {
		t.Fatalf("expected error for unwritable path")
	}
}
