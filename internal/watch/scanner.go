package watch

import (
	"regexp"
	"sort"
)

// DefaultTags is the closed set of trigger tag names the scanner recognises.
// The bare names and their qdrant-prefixed forms are both accepted so either
// host-side consumer shape keeps working.
var DefaultTags = []string{
	"file", "search", "read",
	"qdrant-file", "qdrant-search", "qdrant-read",
}

// Scanner locates embedded trigger markup in clipboard text. It never
// interprets the payloads; the host decides what a match means.
type Scanner struct {
	patterns []*regexp.Regexp
}

// NewScanner compiles a scanner for the given tag names, or DefaultTags when
// none are given. Each tag matches in both self-closing and open/close paired
// form, with optional attributes, across newlines.
func NewScanner(tags ...string) *Scanner {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	patterns := make([]*regexp.Regexp, 0, len(tags))
	for _, tag := range tags {
		t := regexp.QuoteMeta(tag)
		// One pattern per tag so a close tag can only pair with its own
		// open tag (RE2 has no backreferences).
		patterns = append(patterns, regexp.MustCompile(
			`(?s)<`+t+`(?:\s[^>]*)?/>|<`+t+`(?:\s[^>]*)?>.*?</`+t+`\s*>`,
		))
	}
	return &Scanner{patterns: patterns}
}

// Scan returns the full matched span of every trigger occurrence, tags
// included, in first-to-last source order. No matches yields nil, never an
// error.
func (s *Scanner) Scan(content string) []string {
	type span struct{ start, end int }
	var spans []span
	for _, p := range s.patterns {
		for _, m := range p.FindAllStringIndex(content, -1) {
			spans = append(spans, span{m[0], m[1]})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	payloads := make([]string, 0, len(spans))
	prevEnd := -1
	for _, sp := range spans {
		if sp.start < prevEnd {
			// nested inside an already reported span
			continue
		}
		payloads = append(payloads, content[sp.start:sp.end])
		prevEnd = sp.end
	}
	return payloads
}
