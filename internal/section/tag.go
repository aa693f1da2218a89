// Package section locates named sections inside plain-text renderings of
// scientific papers. Documents arrive as heterogeneous PDF-to-text output,
// so everything here is best-effort line heuristics: heading pattern
// matching, boundary detection, and fractional position estimation when a
// section cannot be found at all.
package section

import "fmt"

// Tag identifies a paper section the engine knows how to look for.
type Tag string

const (
	Abstract     Tag = "abstract"
	Introduction Tag = "introduction"
	Methods      Tag = "methods"
	Experiments  Tag = "experiments"
	Conclusion   Tag = "conclusion"
	References   Tag = "references"
	// Formulas and Figures are not headed sections; they are recurring
	// inline constructs matched by content patterns (see mutate package).
	Formulas Tag = "formulas"
	Figures  Tag = "figures"
)

// Tags lists every known tag in a stable order.
var Tags = []Tag{Abstract, Introduction, Methods, Experiments, Conclusion, References, Formulas, Figures}

// HeadingTags lists the tags located by heading search, i.e. everything
// except the content-pattern tags.
var HeadingTags = []Tag{Abstract, Introduction, Methods, Experiments, Conclusion, References}

// InsertionTags lists the tags valid as attack insertion positions.
var InsertionTags = []Tag{Abstract, Introduction, Methods, Experiments, Conclusion}

// ParseTag converts a string to a Tag. Returns an error for unknown values.
func ParseTag(s string) (Tag, error) {
	for _, t := range Tags {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown section tag: %q", s)
}

// IsContentTag reports whether t is matched by content patterns rather
// than heading search.
func IsContentTag(t Tag) bool {
	return t == Formulas || t == Figures
}
