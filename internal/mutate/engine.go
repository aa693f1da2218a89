// Package mutate applies controlled mutations to paper documents: section
// deletion for ablation variants and payload insertion for adversarial
// attack variants. All operations are pure functions over an immutable
// document; the engine performs no I/O and is safe for concurrent use.
package mutate

import (
	"errors"
	"strings"

	"github.com/hyperjump/shinsa/internal/section"
)

// Op is the kind of mutation performed.
type Op string

const (
	// OpDelete removes a section (ablation).
	OpDelete Op = "delete"
	// OpInsert inserts a payload inside a section (attack).
	OpInsert Op = "insert"
)

var (
	// ErrSectionNotFound means no heading matched the requested tag.
	// Delete fails closed on this; Insert falls back to estimation instead.
	ErrSectionNotFound = errors.New("section not found")
	// ErrDegenerateResult means a delete left implausibly little text,
	// which signals boundary detection went wrong. Fail closed.
	ErrDegenerateResult = errors.New("mutation produced degenerate result")
)

// DefaultInsertionDepth places insertions at 70% of the section body, so
// the payload reads as embedded content rather than a header injection.
const DefaultInsertionDepth = 0.70

// DefaultMinResultLen is the minimum trimmed length a deleted variant must
// keep to be considered plausible.
const DefaultMinResultLen = 50

// Result is the outcome of a single mutation. SectionFound is false when
// the position was estimated (insert fallback) or, for content tags, when
// no content pattern matched.
type Result struct {
	Text         string
	SectionFound bool
	Tag          section.Tag
	Op           Op
}

// Engine performs delete and insert mutations using a shared locator and
// fallback estimator.
type Engine struct {
	locator        *section.Locator
	estimator      *section.Estimator
	lookahead      int
	insertionDepth float64
	minResultLen   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLookahead sets the newline-snap lookahead window in characters.
func WithLookahead(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lookahead = n
		}
	}
}

// WithInsertionDepth sets the fractional depth into a section body at
// which payloads are inserted. Values outside (0, 1] are ignored.
func WithInsertionDepth(d float64) Option {
	return func(e *Engine) {
		if d > 0 && d <= 1 {
			e.insertionDepth = d
		}
	}
}

// WithFallbackPositions overrides the fallback fraction table.
func WithFallbackPositions(positions map[section.Tag]float64) Option {
	return func(e *Engine) {
		e.estimator = section.NewEstimator(positions, e.lookahead)
	}
}

// WithMinResultLen sets the degenerate-result threshold for deletes.
func WithMinResultLen(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.minResultLen = n
		}
	}
}

// NewEngine returns an engine over the given heading registry.
func NewEngine(registry *section.Registry, opts ...Option) *Engine {
	e := &Engine{
		locator:        section.NewLocator(registry),
		lookahead:      section.DefaultLookahead,
		insertionDepth: DefaultInsertionDepth,
		minResultLen:   DefaultMinResultLen,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.estimator == nil {
		e.estimator = section.NewEstimator(nil, e.lookahead)
	}
	return e
}

// Delete removes the tagged section from doc. Heading tags fail closed:
// a missing section returns ErrSectionNotFound rather than guessing, since
// ablation validity depends on removing the intended content. REFERENCES
// deletes from its heading to the end of the document. Content tags
// (formulas, figures) substitute every pattern occurrence instead and
// report SectionFound=false without error when nothing matched.
func (e *Engine) Delete(doc *section.Document, tag section.Tag) (*Result, error) {
	if section.IsContentTag(tag) {
		return e.deleteContent(doc, tag)
	}

	start := e.locator.Locate(doc, tag)
	if start == section.NotFound {
		return nil, ErrSectionNotFound
	}
	end := len(doc.Lines)
	if tag != section.References {
		end = e.locator.ResolveEnd(doc, start)
	}

	kept := make([]string, 0, len(doc.Lines)-(end-start))
	kept = append(kept, doc.Lines[:start]...)
	kept = append(kept, doc.Lines[end:]...)
	out := section.Join(kept)

	if len(strings.TrimSpace(out)) < e.minResultLen {
		return nil, ErrDegenerateResult
	}
	return &Result{Text: out, SectionFound: true, Tag: tag, Op: OpDelete}, nil
}

// Insert places payload inside the tagged section at the configured depth,
// snapped forward to the next newline within the lookahead window. When
// the section cannot be located the position is estimated from the
// fallback fraction table and SectionFound is false; insertion itself
// always succeeds. The payload is wrapped in blank lines on both sides to
// preserve paragraph structure.
func (e *Engine) Insert(doc *section.Document, tag section.Tag, payload string) *Result {
	pos, found := e.insertionOffset(doc, tag)
	text := doc.Text[:pos] + "\n\n" + payload + "\n\n" + doc.Text[pos:]
	return &Result{Text: text, SectionFound: found, Tag: tag, Op: OpInsert}
}

// insertionOffset resolves the character offset for an insertion and
// whether it came from a located section or the fallback estimator.
func (e *Engine) insertionOffset(doc *section.Document, tag section.Tag) (int, bool) {
	span, ok := e.locator.LocateSpan(doc, tag)
	if !ok {
		return e.estimator.Estimate(doc, tag), false
	}
	// Interior offset: skip the heading line, then go insertionDepth of
	// the way through the body.
	bodyStart := doc.LineStart(span.Start + 1)
	bodyEnd := doc.LineStart(span.End)
	pos := bodyStart + int(float64(bodyEnd-bodyStart)*e.insertionDepth)
	return section.SnapToNewline(doc.Text, pos, e.lookahead), true
}
