package robots

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/hylee/internal/cache"
	"github.com/hyperifyio/hylee/internal/fetch"
)

func TestManager_FetchOncePerRun_WithETagRevalidation(t *testing.T) {
	var hits int32
	const etag = "W/\"v1\""
	body := "User-agent: *\nDisallow: /private\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	m := &Manager{
		HTTPClient:  srv.Client(),
		Cache:       &cache.HTTPCache{Dir: t.TempDir()},
		UserAgent:   "hylee-test/1.0",
		EntryExpiry: time.Hour,
	}
	u := srv.URL + "/robots.txt"
	rules, src, err := m.Get(ctx, u)
	if err != nil || src != SourceNetwork {
		t.Fatalf("first get: src=%v err=%v", src, err)
	}
	if len(rules.Groups) != 1 || rules.Groups[0].Disallow[0] != "/private" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	if _, src, _ := m.Get(ctx, u); src != SourceMemory {
		t.Fatalf("expected SourceMemory, got %v", src)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 server hit, got %d", hits)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	rules, src, err = m.Get(ctx, u)
	if err != nil || src != SourceCache304 {
		t.Fatalf("third get: src=%v err=%v", src, err)
	}
	if rules.IsAllowed("hylee", "/private/x") {
		t.Fatalf("revalidated rules lost disallow")
	}
}

func TestManager_MissingRobotsAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	m := &Manager{HTTPClient: srv.Client()}
	rules, src, err := m.Get(context.Background(), srv.URL+"/robots.txt")
	if err != nil || src != SourceMissing {
		t.Fatalf("src=%v err=%v", src, err)
	}
	if !rules.IsAllowed("any", "/anything") {
		t.Fatalf("missing robots.txt must allow")
	}
}

func TestParseAndIsAllowed(t *testing.T) {
	rules := Parse(`
# archive rules
User-agent: *
Disallow: /cgi-bin/
Disallow: /*.pdf$
Allow: /cgi-bin/public

User-agent: HyleeArchiver
Disallow: /inc/   # not for us
Crawl-delay: 2
`)
	cases := []struct {
		ua, path string
		want     bool
	}{
		{"other", "/cgi-bin/run", false},
		{"other", "/cgi-bin/public/x", true},
		{"other", "/doc.pdf", false},
		{"other", "/doc.pdf?x=1", true},
		{"other", "/inc/archiv20.htm", true},
		{"HyleeArchiver/2.2", "/inc/archiv20.htm", false},
		{"HyleeArchiver/2.2", "/cgi-bin/run", true},
	}
	for _, c := range cases {
		if got := rules.IsAllowed(c.ua, c.path); got != c.want {
			t.Fatalf("IsAllowed(%q, %q) = %v, want %v", c.ua, c.path, got, c.want)
		}
	}
	if d := rules.CrawlDelayFor("HyleeArchiver/2.2"); d != 2*time.Second {
		t.Fatalf("crawl delay = %v", d)
	}
	if d := rules.CrawlDelayFor("other"); d != 0 {
		t.Fatalf("crawl delay for wildcard = %v", d)
	}
}

func TestURLFor(t *testing.T) {
	got, err := URLFor("https://hyena.cz/inc/archiv20.htm?x=1")
	if err != nil || got != "https://hyena.cz/robots.txt" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := URLFor("mailto:x@hyena.cz"); err == nil {
		t.Fatalf("expected error for non-http url")
	}
}

func TestGuard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /tajne\n"))
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>ok</p>"))
		}
	}))
	t.Cleanup(srv.Close)

	g := &Guard{
		Next:      &fetch.Client{MaxAttempts: 1},
		Manager:   &Manager{HTTPClient: srv.Client()},
		UserAgent: "hylee-test",
	}
	if _, err := g.Get(context.Background(), srv.URL+"/040101pes.htm"); err != nil {
		t.Fatalf("allowed page failed: %v", err)
	}
	if _, err := g.Get(context.Background(), srv.URL+"/tajne/040101pes.htm"); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("expected ErrDisallowed, got %v", err)
	}
}

func TestGuard_WaitSpacesRequests(t *testing.T) {
	g := &Guard{}
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.wait(ctx, "hyena.cz", 30*time.Millisecond); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if el := time.Since(start); el < 60*time.Millisecond {
		t.Fatalf("requests not spaced: %v", el)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	g.next["slow.example"] = time.Now().Add(time.Hour)
	if err := g.wait(cctx, "slow.example", time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
