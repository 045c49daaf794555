package archive

import "sort"

// DailyRecord maps an ISO date (YYYY-MM-DD) to that day's bulletins in page order.
type DailyRecord map[string][]string

// Dates returns the keys in ascending order.
func (d DailyRecord) Dates() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Bulletins returns the total number of bulletins across all days.
func (d DailyRecord) Bulletins() int {
	n := 0
	for _, b := range d {
		n += len(b)
	}
	return n
}

// YearRecord is the unit of persistence: every extracted day of one year.
type YearRecord struct {
	Year int
	Days DailyRecord
}
