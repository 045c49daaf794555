package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/hylee/internal/archive"
	"github.com/hyperifyio/hylee/internal/config"
	"github.com/hyperifyio/hylee/internal/robots"
)

var pages = map[string]string{
	"/archiv1.html":  `<a href="040101pes.htm">1.1.</a><a href="/040102pes.htm">2.1.</a><a href="050101pes.htm">x</a>`,
	"/040101pes.htm": `<!-- odsud -->Vláda schválila rozpočet<br>Sněžilo na horách celý den<table></table>`,
	"/040102pes.htm": `<!-- odsud -->Druhý den roku přinesl klid<hr><font color="navy">podpis</font>`,
	"/040105zpr.htm": `<!-- odsud -->Zprávy pátého ledna<br>`,
}

var conditionalRequests int32

func testConfig(t *testing.T) config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			atomic.AddInt32(&conditionalRequests, 1)
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.BaseURL = srv.URL
	cfg.Years = "2004"
	cfg.Delay = 0
	cfg.Timeout = 2 * time.Second
	cfg.MaxAttempts = 1
	cfg.OutputDir = dir
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.ErrorLog = ""
	return cfg
}

func TestRun_WritesSinks(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLitePath = filepath.Join(cfg.OutputDir, "hylee.db")
	cfg.PDF = true

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	sums, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sums) != 1 || sums[0].Year != 2004 || sums[0].Days != 2 || !sums[0].Saved {
		t.Fatalf("unexpected summaries: %+v", sums)
	}
	for _, name := range []string{"hyena_2004.json", "hyena_2004.pdf"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	var out bytes.Buffer
	if err := a.Search(context.Background(), "rozpočet", 10, &out); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out.String(), "2004-01-01") || !strings.Contains(out.String(), "Vláda schválila rozpočet") {
		t.Fatalf("search output: %q", out.String())
	}
}

func TestRun_NoYears(t *testing.T) {
	cfg := testConfig(t)
	cfg.Years = "1999"
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if _, err := a.Run(context.Background()); !errors.Is(err, archive.ErrNoYears) {
		t.Fatalf("expected ErrNoYears, got %v", err)
	}
}

func TestListYear(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	var out bytes.Buffer
	if err := a.ListYear(context.Background(), 2004, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "2004-01-01") || !strings.Contains(s, "/040102pes.htm") || strings.Contains(s, "050101") {
		t.Fatalf("unexpected listing: %q", s)
	}
	if !strings.Contains(s, "2 daily pages for 2004") {
		t.Fatalf("missing count: %q", s)
	}
}

func TestInspectDay(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	var out bytes.Buffer
	if err := a.InspectDay(context.Background(), "/040102pes.htm", &out); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "2004-01-02: 1 bulletins (stop: signature)") || !strings.Contains(s, "1. Druhý den roku přinesl klid") {
		t.Fatalf("unexpected output: %q", s)
	}
	if err := a.InspectDay(context.Background(), "/missing.htm", &out); err == nil {
		t.Fatalf("expected fetch error for missing page")
	}
}

func TestInspectDay_CustomSuffixDate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Suffix = "zpr"
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	var out bytes.Buffer
	if err := a.InspectDay(context.Background(), "/040105zpr.htm", &out); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.HasPrefix(out.String(), "2004-01-05: 1 bulletins") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestInspectDay_Robots(t *testing.T) {
	pages["/robots.txt"] = "User-agent: *\nDisallow: /040102\n"
	t.Cleanup(func() { delete(pages, "/robots.txt") })
	cfg := testConfig(t)
	cfg.Robots = true
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	var out bytes.Buffer
	if err := a.InspectDay(context.Background(), "/040101pes.htm", &out); err != nil {
		t.Fatalf("allowed page: %v", err)
	}
	if err := a.InspectDay(context.Background(), "/040102pes.htm", &out); !errors.Is(err, robots.ErrDisallowed) {
		t.Fatalf("expected ErrDisallowed, got %v", err)
	}
}

func TestSearch_RequiresSQLite(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if err := a.Search(context.Background(), "x", 0, &bytes.Buffer{}); !errors.Is(err, ErrNoSQLite) {
		t.Fatalf("expected ErrNoSQLite, got %v", err)
	}
}

func TestNew_CacheOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheStrict = true
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	ctx := context.Background()
	atomic.StoreInt32(&conditionalRequests, 0)
	if err := a.InspectDay(ctx, "/040101pes.htm", &bytes.Buffer{}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	entries, err := os.ReadDir(cfg.CacheDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache not written: %v", err)
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm&0o077 != 0 {
			t.Fatalf("%s has mode %v, want owner-only", e.Name(), perm)
		}
	}
	if err := a.InspectDay(ctx, "/040101pes.htm", &bytes.Buffer{}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if n := atomic.LoadInt32(&conditionalRequests); n != 1 {
		t.Fatalf("conditional requests=%d, want 1", n)
	}

	cfg.CacheBypass = true
	b, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer b.Close()
	atomic.StoreInt32(&conditionalRequests, 0)
	if err := b.InspectDay(ctx, "/040101pes.htm", &bytes.Buffer{}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if n := atomic.LoadInt32(&conditionalRequests); n != 0 {
		t.Fatalf("bypass still sent %d conditional requests", n)
	}
}
