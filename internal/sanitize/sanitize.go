// Package sanitize normalizes bulletin text fragments pulled out of legacy markup.
package sanitize

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Decoded in this order; any other entity is left untouched.
var entities = [...]struct{ from, to string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&quot;", `"`},
}

// Text strips leftover tag fragments, decodes a fixed set of entities and
// collapses whitespace runs into single spaces.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, "")
	for _, e := range entities {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	return strings.Join(strings.Fields(s), " ")
}
