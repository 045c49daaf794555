package robots

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/hylee/internal/fetch"
)

// PageSource is the fetcher a Guard protects. *fetch.Client satisfies it.
type PageSource interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// Guard consults robots.txt before every page. Disallowed pages fail with
// ErrDisallowed and requests to one host are spaced by its Crawl-delay. When
// robots.txt cannot be read the harvest proceeds unrestricted.
type Guard struct {
	Next      PageSource
	Manager   *Manager
	UserAgent string

	mu       sync.Mutex
	next     map[string]time.Time
	warnOnce sync.Once
}

func (g *Guard) Get(ctx context.Context, pageURL string) (fetch.Page, error) {
	robotsURL, err := URLFor(pageURL)
	if err != nil {
		return g.Next.Get(ctx, pageURL)
	}
	rules, _, err := g.Manager.Get(ctx, robotsURL)
	if err != nil {
		g.warnOnce.Do(func() {
			log.Warn().Err(err).Str("robots", robotsURL).Msg("robots.txt unavailable; continuing without it")
		})
		return g.Next.Get(ctx, pageURL)
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("parse url: %w", err)
	}
	if !rules.IsAllowed(g.UserAgent, u.RequestURI()) {
		return fetch.Page{}, fmt.Errorf("%s: %w", pageURL, ErrDisallowed)
	}
	if d := rules.CrawlDelayFor(g.UserAgent); d > 0 {
		if err := g.wait(ctx, u.Host, d); err != nil {
			return fetch.Page{}, err
		}
	}
	return g.Next.Get(ctx, pageURL)
}

// wait reserves the next request slot for host and sleeps until it opens.
func (g *Guard) wait(ctx context.Context, host string, delay time.Duration) error {
	g.mu.Lock()
	if g.next == nil {
		g.next = make(map[string]time.Time)
	}
	now := time.Now()
	slot := g.next[host]
	if slot.Before(now) {
		slot = now
	}
	g.next[host] = slot.Add(delay)
	g.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
