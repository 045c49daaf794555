// Package render formats archive data for people: aligned terminal tables
// and per-year PDF digests.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table writes rows as a Markdown-style table padded to display width, so
// columns stay aligned with accented text.
func Table(w io.Writer, headers []string, rows [][]string) error {
	colCount := len(headers)
	for _, r := range rows {
		if len(r) > colCount {
			colCount = len(r)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	measure := func(row []string) {
		for i := 0; i < len(row) && i < colCount; i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(row []string, sep bool) string {
		var sb strings.Builder
		sb.WriteString("|")
		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")
			if sep {
				sb.WriteString(strings.Repeat("-", widths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}
				sb.WriteString(runewidth.FillRight(content, widths[j]))
			}
			sb.WriteString(" |")
		}
		return sb.String()
	}

	if _, err := fmt.Fprintln(w, line(headers, false)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, line(nil, true)); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, line(r, false)); err != nil {
			return err
		}
	}
	return nil
}

// Truncate shortens s to at most width display cells, marking the cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
