package section

// DefaultLookahead bounds how far forward an offset may be moved to reach
// the next newline, in characters.
const DefaultLookahead = 300

// DefaultFallbackPositions maps each insertable tag to its approximate
// fractional position in a typical paper. Content tags have no entry:
// they are matched by pattern, never estimated.
var DefaultFallbackPositions = map[Tag]float64{
	Abstract:     0.05,
	Introduction: 0.15,
	Methods:      0.35,
	Experiments:  0.65,
	Conclusion:   0.90,
}

// Estimator guesses a character offset for a section that could not be
// located. An estimated offset is always low-confidence; callers must
// surface that to downstream consumers.
type Estimator struct {
	positions map[Tag]float64
	lookahead int
}

// NewEstimator returns an estimator with the given fraction table and
// newline-snap lookahead. Nil positions or a non-positive lookahead select
// the defaults.
func NewEstimator(positions map[Tag]float64, lookahead int) *Estimator {
	if positions == nil {
		positions = DefaultFallbackPositions
	}
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Estimator{positions: positions, lookahead: lookahead}
}

// Estimate returns an approximate character offset for tag in doc: the
// tag's fraction of the total length, snapped forward to the next newline
// when one lies within the lookahead window. Unknown tags estimate to the
// middle of the document.
func (e *Estimator) Estimate(doc *Document, tag Tag) int {
	ratio, ok := e.positions[tag]
	if !ok {
		ratio = 0.5
	}
	pos := int(float64(doc.Len()) * ratio)
	return SnapToNewline(doc.Text, pos, e.lookahead)
}

// SnapToNewline moves pos forward to the next newline in text if one
// exists within lookahead characters; otherwise pos is returned unchanged
// (clamped to the text bounds). Snapping keeps mutations from landing
// mid-word or mid-sentence.
func SnapToNewline(text string, pos, lookahead int) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	if pos == len(text) {
		return pos
	}
	if nl := indexNewline(text, pos); nl != -1 && nl-pos < lookahead {
		return nl
	}
	return pos
}

func indexNewline(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return -1
}
