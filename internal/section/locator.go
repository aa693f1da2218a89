package section

import "regexp"

// NotFound is the line index returned when no heading matches.
const NotFound = -1

// Locator finds section boundaries in a document using a heading registry.
type Locator struct {
	registry *Registry
}

// NewLocator returns a locator backed by the given registry.
func NewLocator(registry *Registry) *Locator {
	return &Locator{registry: registry}
}

// Locate returns the index of the first line that matches any heading rule
// for tag, or NotFound. Scanning stops at the first hit, so a heading text
// repeated later (an appendix re-mentioning "CONCLUSION") is ignored.
// Absence is a normal outcome, not an error.
func (l *Locator) Locate(doc *Document, tag Tag) int {
	rules := l.registry.Rules(tag)
	if len(rules) == 0 {
		return NotFound
	}
	for i, line := range doc.Lines {
		for _, r := range rules {
			if r.Match(line) {
				return i
			}
		}
	}
	return NotFound
}

// Boundary patterns for ResolveEnd. A terminating heading is either a
// numbered top-level section ("5 RESULTS", "5. Results") or an unnumbered
// all-caps run of at least three letters. "4.1 Dataset Details" is content:
// the digit after the dot fails the whitespace requirement, so decimal
// sub-section numbering never terminates a span.
var (
	numberedHeadingRe = regexp.MustCompile(`^\s*\d+\.?\s+[A-Z]`)
	allCapsHeadingRe  = regexp.MustCompile(`^\s*[A-Z]{3,}[A-Z\s]*\s*[:\-]?\s*$`)
)

// isTopLevelHeading reports whether line terminates a section span.
// Known limitation: a genuinely all-caps body line (acronym runs, shouted
// text) also matches; the heuristic does not disambiguate.
func isTopLevelHeading(line string) bool {
	return numberedHeadingRe.MatchString(line) || allCapsHeadingRe.MatchString(line)
}

// ResolveEnd scans strictly after start and returns the exclusive end of
// the section: the index of the next top-level heading, or len(doc.Lines)
// when none follows.
func (l *Locator) ResolveEnd(doc *Document, start int) int {
	for i := start + 1; i < len(doc.Lines); i++ {
		if isTopLevelHeading(doc.Lines[i]) {
			return i
		}
	}
	return len(doc.Lines)
}

// Span is a resolved section range over document lines; End is exclusive.
type Span struct {
	Tag   Tag
	Start int
	End   int
}

// LocateSpan combines Locate and ResolveEnd. The boolean is false when the
// section was not found.
func (l *Locator) LocateSpan(doc *Document, tag Tag) (Span, bool) {
	start := l.Locate(doc, tag)
	if start == NotFound {
		return Span{}, false
	}
	return Span{Tag: tag, Start: start, End: l.ResolveEnd(doc, start)}, true
}
