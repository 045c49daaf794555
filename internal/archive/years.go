package archive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperifyio/hylee/internal/calendar"
)

// ErrNoYears is returned when a selector names no year of the archive map.
var ErrNoYears = errors.New("no archived years selected")

// ParseYears expands a year selector: "ALL", a single "YYYY", or a range
// "YYYY-YYYY" in either order. Years without an archive map entry are
// dropped. The result is ascending.
func ParseYears(selector string, m calendar.ArchiveMap) ([]int, error) {
	sel := strings.ToUpper(strings.TrimSpace(selector))
	var candidates []int
	switch {
	case sel == "ALL":
		candidates = m.Years()
	case strings.Contains(sel, "-"):
		parts := strings.Split(sel, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid year range %q", selector)
		}
		from, err1 := parseYear(parts[0])
		to, err2 := parseYear(parts[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid year range %q", selector)
		}
		if from > to {
			from, to = to, from
		}
		for y := from; y <= to; y++ {
			candidates = append(candidates, y)
		}
	default:
		y, err := parseYear(sel)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", selector)
		}
		candidates = []int{y}
	}

	out := make([]int, 0, len(candidates))
	for _, y := range candidates {
		if m.Has(y) {
			out = append(out, y)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoYears, selector)
	}
	return out, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 || strings.Trim(s, "0123456789") != "" {
		return 0, fmt.Errorf("year must have four digits: %q", s)
	}
	return strconv.Atoi(s)
}
