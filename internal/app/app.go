// Package app wires configuration into a ready archiver and implements the
// command-line modes: full runs, calendar listing, single-day inspection and
// bulletin search.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/hylee/internal/archive"
	"github.com/hyperifyio/hylee/internal/bulletin"
	"github.com/hyperifyio/hylee/internal/cache"
	"github.com/hyperifyio/hylee/internal/calendar"
	"github.com/hyperifyio/hylee/internal/config"
	"github.com/hyperifyio/hylee/internal/fetch"
	"github.com/hyperifyio/hylee/internal/render"
	"github.com/hyperifyio/hylee/internal/robots"
	"github.com/hyperifyio/hylee/internal/store"
)

// ErrNoSQLite is returned by Search when no database is configured.
var ErrNoSQLite = errors.New("search needs -sqlite")

type App struct {
	cfg      config.Config
	years    calendar.ArchiveMap
	harvest  *calendar.Harvester
	client   *fetch.Client
	archiver *archive.Archiver
	db       *store.SQLite
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{cfg: cfg, years: calendar.DefaultArchiveMap(), harvest: calendar.NewHarvester(cfg.Suffix)}

	var httpCache *cache.HTTPCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrict}
	}

	httpClient := newHTTPClient(cfg.Timeout)
	a.client = &fetch.Client{
		HTTPClient:        httpClient,
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.Timeout,
		Cache:             httpCache,
		BypassCache:       cfg.CacheBypass,
		// one request in flight per concurrently harvested year
		MaxConcurrent: max(cfg.Parallel, 1),
	}
	var source archive.PageSource = a.client
	if cfg.Robots {
		source = &robots.Guard{
			Next:      a.client,
			Manager:   &robots.Manager{HTTPClient: httpClient, Cache: httpCache, UserAgent: cfg.UserAgent},
			UserAgent: cfg.UserAgent,
		}
	}

	sinks := []archive.Sink{&store.JSONWriter{Dir: cfg.OutputDir}}
	if cfg.SQLitePath != "" {
		db, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.db = db
		sinks = append(sinks, db)
	}
	if cfg.PDF {
		sinks = append(sinks, &render.PDFWriter{Dir: cfg.OutputDir, FontPath: cfg.PDFFont})
	}

	a.archiver = archive.New(source, a.years, a.harvest, bulletin.DefaultRules(), archive.Options{
		BaseURL:  cfg.BaseURL,
		Sanitize: cfg.Sanitize,
		MaxDays:  cfg.MaxDays,
		Delay:    cfg.Delay,
		Parallel: cfg.Parallel,
	}, sinks...)
	return a, nil
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("close sqlite")
		}
	}
}

// Run harvests every year selected by the configuration.
func (a *App) Run(ctx context.Context) ([]archive.YearSummary, error) {
	years, err := archive.ParseYears(a.cfg.Years, a.years)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("version", Version()).
		Ints("years", years).
		Int("max_days", a.cfg.MaxDays).
		Bool("sanitize", a.cfg.Sanitize).
		Msg("starting harvest")
	summaries := a.archiver.Run(ctx, years)
	archive.LogSummary(summaries)
	return summaries, ctx.Err()
}

// ListYear prints the daily pages linked from the index of year.
func (a *App) ListYear(ctx context.Context, year int, w io.Writer) error {
	refs, err := a.archiver.DailyLinks(ctx, year)
	if err != nil && !errors.Is(err, archive.ErrNoLinks) {
		return err
	}
	rows := make([][]string, 0, len(refs))
	for _, r := range refs {
		rows = append(rows, []string{r.Date(), r.Path})
	}
	if err := render.Table(w, []string{"Date", "Path"}, rows); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%d daily pages for %d\n", len(refs), year)
	return err
}

// InspectDay extracts one daily page and prints its bulletins and the reason
// the extraction stopped.
func (a *App) InspectDay(ctx context.Context, path string, w io.Writer) error {
	res, err := a.archiver.ScrapeDay(ctx, path, a.cfg.Sanitize)
	if err != nil {
		return err
	}
	date := "unknown date"
	if ref, ok := a.harvest.Ref(path); ok {
		date = ref.Date()
	}
	if _, err := fmt.Fprintf(w, "%s: %d bulletins (stop: %s)\n\n", date, len(res.Bulletins), res.Stop); err != nil {
		return err
	}
	for i, b := range res.Bulletins {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, b); err != nil {
			return err
		}
	}
	return nil
}

// Search prints stored bulletins containing term.
func (a *App) Search(ctx context.Context, term string, limit int, w io.Writer) error {
	if a.db == nil {
		return ErrNoSQLite
	}
	matches, err := a.db.Search(ctx, strings.TrimSpace(term), limit)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(matches))
	for i, m := range matches {
		rows = append(rows, []string{strconv.Itoa(i + 1), m.Day, render.Truncate(m.Text, 100)})
	}
	return render.Table(w, []string{"#", "Date", "Bulletin"}, rows)
}

