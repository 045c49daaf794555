// Package archive drives a harvest run: for each year it lists the daily
// pages, extracts their bulletins and hands the finished year to the sinks.
package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/hylee/internal/bulletin"
	"github.com/hyperifyio/hylee/internal/calendar"
	"github.com/hyperifyio/hylee/internal/dom"
	"github.com/hyperifyio/hylee/internal/fetch"
)

// ErrNoLinks is returned when an index page lists no daily pages for the year.
var ErrNoLinks = errors.New("no daily links found")

// PageSource fetches one page. *fetch.Client satisfies it.
type PageSource interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// Sink persists a finished year.
type Sink interface {
	SaveYear(ctx context.Context, rec YearRecord) error
}

// Options are the per-run knobs.
type Options struct {
	BaseURL  string
	Sanitize bool
	// MaxDays caps the days processed per year; zero means no cap.
	MaxDays int
	// Delay is the pause between two daily pages of the same year.
	Delay time.Duration
	// Parallel is the number of years processed at once; values below 1 mean 1.
	Parallel int
}

// Archiver ties the harvester, the extractor and the sinks together.
type Archiver struct {
	source    PageSource
	archive   calendar.ArchiveMap
	harvester *calendar.Harvester
	rules     bulletin.Rules
	sinks     []Sink
	opts      Options
}

// New returns an Archiver. A nil harvester selects the default file pattern.
func New(source PageSource, archiveMap calendar.ArchiveMap, harvester *calendar.Harvester, rules bulletin.Rules, opts Options, sinks ...Sink) *Archiver {
	if harvester == nil {
		harvester = calendar.NewHarvester("")
	}
	return &Archiver{
		source:    source,
		archive:   archiveMap,
		harvester: harvester,
		rules:     rules,
		sinks:     sinks,
		opts:      opts,
	}
}

func (a *Archiver) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(a.opts.BaseURL, "/") + path
}

// DailyLinks fetches the index page of year and returns its daily pages.
// An index without matching links yields ErrNoLinks.
func (a *Archiver) DailyLinks(ctx context.Context, year int) ([]calendar.DailyRef, error) {
	indexURL := a.url(a.archive.IndexPath(year))
	page, err := a.source.Get(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar %s: %w", indexURL, err)
	}
	doc, err := dom.Parse(strings.NewReader(page.Text))
	if err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", indexURL, err)
	}
	refs := a.harvester.Harvest(year, doc)
	if len(refs) == 0 {
		return refs, ErrNoLinks
	}
	return refs, nil
}

// ScrapeDay fetches one daily page and extracts its bulletins. An error means
// the page could not be fetched; a page that fetched but held nothing yields
// an empty result and no error.
func (a *Archiver) ScrapeDay(ctx context.Context, path string, sanitize bool) (bulletin.Result, error) {
	page, err := a.source.Get(ctx, a.url(path))
	if err != nil {
		return bulletin.Result{}, err
	}
	doc, err := dom.Parse(strings.NewReader(page.Text))
	if err != nil {
		return bulletin.Result{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return bulletin.NewExtractor(a.rules, sanitize).Extract(doc), nil
}

// YearSummary reports what happened to one year.
type YearSummary struct {
	Year    int
	Links   int
	Days    int
	Failed  int
	Empty   int
	Saved   bool
	Err     error
	Elapsed time.Duration
}

// RunYear processes one year and persists it when at least one day produced
// bulletins. Page failures are logged and skipped.
func (a *Archiver) RunYear(ctx context.Context, year int) (rec YearRecord, sum YearSummary) {
	start := time.Now()
	logger := log.With().Int("year", year).Logger()
	rec = YearRecord{Year: year, Days: DailyRecord{}}
	sum = YearSummary{Year: year}
	defer func() { sum.Elapsed = time.Since(start) }()

	refs, err := a.DailyLinks(ctx, year)
	if err != nil {
		if errors.Is(err, ErrNoLinks) {
			logger.Warn().Msg("no daily links found, skipping year")
		} else {
			logger.Error().Err(err).Msg("failed to load calendar")
		}
		sum.Err = err
		return rec, sum
	}
	sum.Links = len(refs)
	logger.Info().Int("links", len(refs)).Msg("found daily links")

	// Cancellation is observed between days only: the page in flight and the
	// final save run to completion on a context that ignores it.
	work := context.WithoutCancel(ctx)
	processed := 0
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			logger.Warn().Msg("stop requested")
			sum.Err = err
			break
		}
		date := ref.Date()
		if date == "" {
			continue
		}
		if i > 0 && a.opts.Delay > 0 {
			if !sleep(ctx, a.opts.Delay) {
				sum.Err = ctx.Err()
				break
			}
		}
		dayLog := logger.With().Str("date", date).Logger()
		dayLog.Debug().Str("path", ref.Path).Msg("scraping day")

		res, err := a.ScrapeDay(work, ref.Path, a.opts.Sanitize)
		switch {
		case err != nil:
			sum.Failed++
			dayLog.Error().Err(err).Msg("failed to fetch day")
		case len(res.Bulletins) == 0:
			sum.Empty++
			dayLog.Warn().Str("stop", res.Stop.String()).Msg("0 bulletins extracted, unusual page format")
		default:
			rec.Days[date] = res.Bulletins
			dayLog.Debug().Int("bulletins", len(res.Bulletins)).Str("stop", res.Stop.String()).Msg("day extracted")
		}

		processed++
		if a.opts.MaxDays > 0 && processed >= a.opts.MaxDays {
			logger.Info().Int("max_days", a.opts.MaxDays).Msg("reached day limit")
			break
		}
	}
	sum.Days = len(rec.Days)

	if len(rec.Days) == 0 {
		return rec, sum
	}
	saved := true
	for _, s := range a.sinks {
		if err := s.SaveYear(work, rec); err != nil {
			saved = false
			logger.Error().Err(err).Bool("critical", true).Msg("failed to save year")
			if sum.Err == nil {
				sum.Err = err
			}
		}
	}
	sum.Saved = saved
	if saved {
		logger.Info().Int("days", len(rec.Days)).Int("bulletins", rec.Days.Bulletins()).Msg("saved year")
	}
	return rec, sum
}

// Run processes years, up to Options.Parallel at a time. One year's failure
// never stops the others. Summaries are returned in year order.
func (a *Archiver) Run(ctx context.Context, years []int) []YearSummary {
	limit := a.opts.Parallel
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	out := make([]YearSummary, len(years))
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			out[i] = a.safeRunYear(ctx, year)
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func (a *Archiver) safeRunYear(ctx context.Context, year int) (sum YearSummary) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("year", year).Interface("panic", r).Msg("year aborted")
			sum = YearSummary{Year: year, Err: fmt.Errorf("year %d aborted: %v", year, r)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return YearSummary{Year: year, Err: err}
	}
	log.Info().Int("year", year).Msg("starting year")
	_, sum = a.RunYear(ctx, year)
	return sum
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// LogSummary writes one line per year at a level matching its outcome.
func LogSummary(summaries []YearSummary) {
	for _, s := range summaries {
		var ev *zerolog.Event
		switch {
		case s.Err != nil && !s.Saved:
			ev = log.Warn().Err(s.Err)
		default:
			ev = log.Info()
		}
		ev.Int("year", s.Year).
			Int("links", s.Links).
			Int("days", s.Days).
			Int("failed", s.Failed).
			Int("empty", s.Empty).
			Bool("saved", s.Saved).
			Dur("elapsed", s.Elapsed).
			Msg("year finished")
	}
}
