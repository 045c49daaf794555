// Package bulletin pulls the individual news items out of a daily page.
//
// A daily page has no markup dedicated to bulletins. The region starts after
// an anchor comment and the items are separated by line breaks, paragraphs
// and list elements. The end is detected heuristically from end comments,
// layout containers, the signature block or recognisable boilerplate text.
package bulletin

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/hylee/internal/dom"
	"github.com/hyperifyio/hylee/internal/sanitize"
)

// StopReason records why extraction ended.
type StopReason int

const (
	// StopNoAnchor means the page has no anchor comment.
	StopNoAnchor StopReason = iota
	// StopExhausted means the node stream ran out.
	StopExhausted
	// StopEndComment means an end or legacy separator comment was reached.
	StopEndComment
	// StopContainer means a layout container was reached.
	StopContainer
	// StopSignature means the signature block was reached.
	StopSignature
	// StopKillSwitch means boilerplate text (weather, notice) was reached.
	StopKillSwitch
)

func (r StopReason) String() string {
	switch r {
	case StopNoAnchor:
		return "no-anchor"
	case StopExhausted:
		return "exhausted"
	case StopEndComment:
		return "end-comment"
	case StopContainer:
		return "container"
	case StopSignature:
		return "signature"
	case StopKillSwitch:
		return "kill-switch"
	default:
		return "unknown"
	}
}

// Result is the outcome of one extraction.
type Result struct {
	Bulletins []string
	Stop      StopReason
}

// Extractor applies Rules to a parsed daily page. It holds no per-page state
// and is safe for concurrent use.
type Extractor struct {
	rules    Rules
	sanitize bool

	stopTags      map[string]bool
	separatorTags map[string]bool

	// lower-cased copies of the markers and matching lists
	endMarker       string
	legacySep       string
	anchorMarker    string
	spam            []string
	weatherPrefixes []string
	weatherPhrases  []string
}

// NewExtractor returns an extractor. With doSanitize set, every bulletin is
// passed through sanitize.Text before filtering.
func NewExtractor(rules Rules, doSanitize bool) *Extractor {
	return &Extractor{
		rules:         rules,
		sanitize:      doSanitize,
		stopTags:      tagSet(rules.StopTags),
		separatorTags: tagSet(rules.SeparatorTags),

		endMarker:       strings.ToLower(rules.EndMarker),
		legacySep:       strings.ToLower(rules.LegacySeparator),
		anchorMarker:    strings.ToLower(rules.AnchorMarker),
		spam:            lowerAll(rules.SpamDomains),
		weatherPrefixes: lowerAll(rules.WeatherPrefixes),
		weatherPhrases:  lowerAll(rules.WeatherPhrases),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func tagSet(tags []string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[strings.ToLower(t)] = true
	}
	return m
}

// Extract returns the bulletins of doc in document order. A page without an
// anchor comment yields an empty result.
func (e *Extractor) Extract(doc *dom.Document) Result {
	nodes := doc.Nodes()
	anchor := e.findAnchor(nodes)
	if anchor < 0 {
		return Result{Bulletins: []string{}, Stop: StopNoAnchor}
	}
	t := &traversal{ex: e, emitted: []string{}}
	stop := t.run(nodes[anchor+1:])
	return Result{Bulletins: t.emitted, Stop: stop}
}

func (e *Extractor) findAnchor(nodes []dom.Node) int {
	for i, n := range nodes {
		if n.Kind == dom.CommentNode && strings.Contains(strings.ToLower(n.Data), e.anchorMarker) {
			return i
		}
	}
	return -1
}

// traversal is the per-page state: the fragments of the bulletin being
// assembled and the bulletins emitted so far.
type traversal struct {
	ex      *Extractor
	buffer  []string
	emitted []string
}

func (t *traversal) append(text string) {
	if s := strings.TrimSpace(text); s != "" {
		t.buffer = append(t.buffer, s)
	}
}

// flush turns the buffer into at most one bulletin. It reports true when the
// rest of the page must be skipped.
func (t *traversal) flush() bool {
	if len(t.buffer) == 0 {
		return false
	}
	r := &t.ex.rules
	text := strings.TrimSpace(strings.Join(t.buffer, " "))
	if t.ex.sanitize {
		text = sanitize.Text(text)
	}
	t.buffer = t.buffer[:0]

	if utf8.RuneCountInString(text) <= r.MinLength {
		return false
	}
	if r.CommentOpen != "" && strings.HasPrefix(text, r.CommentOpen) {
		return false
	}
	if r.DecommissionNotice != "" && strings.Contains(text, r.DecommissionNotice) {
		return true
	}
	lower := strings.ToLower(text)
	if containsAny(lower, t.ex.spam) {
		return false
	}
	t.emitted = append(t.emitted, text)
	return t.isWeather(lower)
}

func (t *traversal) isWeather(lower string) bool {
	for _, p := range t.ex.weatherPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return containsAny(lower, t.ex.weatherPhrases)
}

// run walks nodes in order until a stop condition and always finishes with a
// final flush of whatever is still buffered.
func (t *traversal) run(nodes []dom.Node) StopReason {
	stop := t.walk(nodes)
	t.flush()
	return stop
}

func (t *traversal) walk(nodes []dom.Node) StopReason {
	r := &t.ex.rules
	for _, n := range nodes {
		switch n.Kind {
		case dom.CommentNode:
			if t.isEndComment(n.Data) {
				t.flush()
				return StopEndComment
			}
		case dom.ElementNode:
			switch {
			case t.ex.stopTags[n.Data]:
				t.flush()
				return StopContainer
			case n.Data == r.SignatureTag && t.isSignatureColor(n):
				t.flush()
				return StopSignature
			case t.ex.separatorTags[n.Data]:
				if t.flush() {
					return StopKillSwitch
				}
			}
		case dom.TextNode:
			t.append(n.Data)
		}
	}
	return StopExhausted
}

func (t *traversal) isEndComment(data string) bool {
	ex := t.ex
	c := strings.ToLower(data)
	if ex.endMarker != "" && strings.Contains(c, ex.endMarker) {
		return true
	}
	return ex.legacySep != "" &&
		strings.Contains(c, ex.legacySep) &&
		!strings.Contains(c, ex.anchorMarker)
}

func (t *traversal) isSignatureColor(n dom.Node) bool {
	color, ok := n.Attr("color")
	return ok && strings.EqualFold(strings.TrimSpace(color), t.ex.rules.SignatureColor)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
