package mutate

import (
	"regexp"
	"strings"

	"github.com/hyperjump/shinsa/internal/section"
)

// Formulas and figures are recurring inline constructs, not headed
// sections, so they are removed by content-pattern substitution across the
// whole document rather than by line-range deletion.
var (
	// LaTeX math environments, display math, and inline $...$ spans.
	formulaRe = regexp.MustCompile(`(?s)\$\$.*?\$\$|\$.*?\$` +
		`|\\begin\{equation\}.*?\\end\{equation\}` +
		`|\\begin\{align\}.*?\\end\{align\}` +
		`|\\begin\{eqnarray\}.*?\\end\{eqnarray\}` +
		`|\\\[.*?\\\]`)

	// LaTeX figure environments, includegraphics, tikz, Markdown images,
	// and raw img tags.
	figureRe = regexp.MustCompile(`(?s)\\begin\{figure\}.*?\\end\{figure\}` +
		`|\\includegraphics.*?(?:\}|\n)` +
		`|\\begin\{tikzpicture\}.*?\\end\{tikzpicture\}` +
		`|!\[.*?\]\(.*?\)` +
		`|<img.*?>`)
)

// deleteContent substitutes all pattern occurrences for a content tag.
// A document with no occurrences is returned unchanged with
// SectionFound=false; that is a no-match outcome, not an error.
func (e *Engine) deleteContent(doc *section.Document, tag section.Tag) (*Result, error) {
	var re *regexp.Regexp
	var replacement string
	switch tag {
	case section.Formulas:
		re, replacement = formulaRe, " "
	case section.Figures:
		re, replacement = figureRe, "\n"
	default:
		return nil, ErrSectionNotFound
	}

	if !re.MatchString(doc.Text) {
		return &Result{Text: doc.Text, SectionFound: false, Tag: tag, Op: OpDelete}, nil
	}
	out := re.ReplaceAllString(doc.Text, replacement)
	if len(strings.TrimSpace(out)) < e.minResultLen {
		return nil, ErrDegenerateResult
	}
	return &Result{Text: out, SectionFound: true, Tag: tag, Op: OpDelete}, nil
}
