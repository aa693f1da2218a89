package section

import (
	"fmt"
	"regexp"
)

// Rule is a single heading recognition pattern owned by one tag. The
// pattern must match an entire line: optional leading section number
// ("4." / "4"), the heading text itself, optional trailing ":" or "-",
// case-insensitive throughout.
type Rule struct {
	Tag  Tag
	Name string
	re   *regexp.Regexp
}

// Match reports whether line is a heading for this rule's tag.
func (r *Rule) Match(line string) bool {
	return r.re.MatchString(line)
}

// Registry holds the ordered heading rules per tag. Construct once with
// NewRegistry and share freely; lookups are read-only and safe for
// concurrent use.
type Registry struct {
	rules map[Tag][]*Rule
}

// compileHeading wraps a heading fragment with the shared line-level
// tolerance: leading whitespace, optional numbering, trailing colon/dash.
func compileHeading(fragment string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)^\s*(?:\d+\.?\s*)?(?:` + fragment + `)\s*[:\-]?\s*$`)
}

// NewRegistry returns a registry loaded with the default synonym rules.
func NewRegistry() *Registry {
	g := &Registry{rules: make(map[Tag][]*Rule)}
	defaults := []struct {
		tag      Tag
		name     string
		fragment string
	}{
		{Abstract, "abstract", `ABSTRACT`},
		{Introduction, "introduction", `INTRODUCTION`},
		{Methods, "methods", `METHODS?`},
		{Methods, "methodology", `METHODOLOGY`},
		{Methods, "approach", `APPROACH`},
		{Experiments, "experiments", `EXPERIMENTS?`},
		{Experiments, "experimental-results", `EXPERIMENTAL\s+RESULTS?`},
		{Conclusion, "conclusion", `CONCLUSIONS?`},
		{Conclusion, "conclusion-future-work", `CONCLUSIONS?\s*(?:&|AND)\s+FUTURE\s+WORK`},
		{Conclusion, "concluding-remarks", `CONCLUDING\s+REMARKS?`},
		{References, "references", `REFERENCES?`},
		{References, "bibliography", `BIBLIOGRAPHY`},
	}
	for _, d := range defaults {
		// Patterns are static literals; a compile failure is a programming error.
		if err := g.Add(d.tag, d.name, d.fragment); err != nil {
			panic(err)
		}
	}
	return g
}

// Add registers an extra heading rule for tag. fragment is a regex matched
// between the optional leading numbering and the optional trailing
// punctuation; plain heading text works as-is.
func (g *Registry) Add(tag Tag, name, fragment string) error {
	re, err := compileHeading(fragment)
	if err != nil {
		return fmt.Errorf("invalid heading pattern %q for %s: %w", fragment, tag, err)
	}
	g.rules[tag] = append(g.rules[tag], &Rule{Tag: tag, Name: name, re: re})
	return nil
}

// Rules returns the ordered rules for tag. Content tags have none.
func (g *Registry) Rules(tag Tag) []*Rule {
	return g.rules[tag]
}

// MatchLine reports whether line is a heading for tag under any of its rules.
func (g *Registry) MatchLine(tag Tag, line string) bool {
	for _, r := range g.rules[tag] {
		if r.Match(line) {
			return true
		}
	}
	return false
}
