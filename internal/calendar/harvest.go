// Package calendar discovers the daily bulletin pages linked from a yearly
// index page.
package calendar

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/hylee/internal/dom"
)

// DefaultSuffix is the literal that follows the date code in daily page names.
const DefaultSuffix = "pes"

// DailyRef points at one daily page. Code is the YYMMDD date code taken from
// the file name.
type DailyRef struct {
	Path string
	Code string
}

// Date returns the ISO date (YYYY-MM-DD) encoded in the reference. All codes
// are taken to be in the 2000s.
func (r DailyRef) Date() string {
	if len(r.Code) != 6 {
		return ""
	}
	return "20" + r.Code[0:2] + "-" + r.Code[2:4] + "-" + r.Code[4:6]
}

// Harvester extracts daily page references from an index document.
type Harvester struct {
	pattern *regexp.Regexp
}

// NewHarvester builds a harvester matching <YY><MMDD><suffix>.htm or .html.
// An empty suffix selects DefaultSuffix.
func NewHarvester(suffix string) *Harvester {
	if strings.TrimSpace(suffix) == "" {
		suffix = DefaultSuffix
	}
	return &Harvester{
		pattern: regexp.MustCompile(`(\d{2})(\d{4})` + regexp.QuoteMeta(suffix) + `\.html?`),
	}
}

// Harvest returns the daily pages of year linked from doc, de-duplicated,
// each with a single leading slash, sorted ascending. Zero-padded date codes
// make that order chronological within a year. Paths are normalised before
// de-duplication, so "x.htm" and "/x.htm" count as one page.
func (h *Harvester) Harvest(year int, doc *dom.Document) []DailyRef {
	want := yearSuffix(year)
	codes := make(map[string]string)
	for _, a := range doc.Elements("a") {
		href, ok := a.Attr("href")
		if !ok {
			continue
		}
		m := h.pattern.FindStringSubmatch(href)
		if m == nil || m[1] != want {
			continue
		}
		// "x.htm" and "/x.htm" collapse into one entry here
		codes[normalizePath(href)] = m[1] + m[2]
	}

	out := make([]DailyRef, 0, len(codes))
	for p, code := range codes {
		out = append(out, DailyRef{Path: p, Code: code})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Ref derives a DailyRef from a path using the harvester's file pattern.
// ok is false when the path does not name a daily page.
func (h *Harvester) Ref(path string) (DailyRef, bool) {
	m := h.pattern.FindStringSubmatch(path)
	if m == nil {
		return DailyRef{}, false
	}
	return DailyRef{Path: path, Code: m[1] + m[2]}, true
}

func normalizePath(href string) string {
	if strings.HasPrefix(href, "/") {
		return href
	}
	return "/" + href
}

func yearSuffix(year int) string {
	s := strconv.Itoa(year)
	if len(s) < 2 {
		return fmt.Sprintf("%02d", year)
	}
	return s[len(s)-2:]
}
