package section

import "testing"

func TestRegistry_MatchLine(t *testing.T) {
	g := NewRegistry()

	tests := []struct {
		name string
		tag  Tag
		line string
		want bool
	}{
		{"bare abstract", Abstract, "ABSTRACT", true},
		{"title case abstract", Abstract, "Abstract", true},
		{"numbered abstract", Abstract, "1. ABSTRACT", true},
		{"abstract with colon", Abstract, "Abstract:", true},
		{"abstract with dash", Abstract, "ABSTRACT -", true},
		{"indented abstract", Abstract, "   ABSTRACT   ", true},
		{"abstract inside sentence", Abstract, "In the abstract we claim", false},
		{"numbered conclusion", Conclusion, "5 CONCLUSION", true},
		{"plural conclusion", Conclusion, "Conclusions", true},
		{"concluding remarks", Conclusion, "Concluding Remarks", true},
		{"conclusion and future work", Conclusion, "CONCLUSION AND FUTURE WORK", true},
		{"conclusion ampersand future work", Conclusion, "CONCLUSION & FUTURE WORK", true},
		{"methods singular", Methods, "Method", true},
		{"methodology", Methods, "4. METHODOLOGY", true},
		{"approach", Methods, "3 Approach:", true},
		{"methods vs experiments", Experiments, "METHODS", false},
		{"experimental results", Experiments, "EXPERIMENTAL RESULTS", true},
		{"experiments plural", Experiments, "5. Experiments", true},
		{"references", References, "REFERENCES", true},
		{"bibliography", References, "Bibliography:", true},
		{"decimal numbering is not a heading", Methods, "4.1 Methods", false},
		{"content tag has no rules", Formulas, "FORMULAS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.MatchLine(tt.tag, tt.line); got != tt.want {
				t.Errorf("MatchLine(%s, %q) = %v, want %v", tt.tag, tt.line, got, tt.want)
			}
		})
	}
}

func TestRegistry_SynonymsAreDistinctRules(t *testing.T) {
	g := NewRegistry()
	rules := g.Rules(Conclusion)
	if len(rules) < 3 {
		t.Fatalf("expected at least 3 conclusion rules, got %d", len(rules))
	}
	// Each synonym form should be matched by some rule on its own.
	for _, line := range []string{"5 CONCLUSION", "Concluding Remarks", "CONCLUSION AND FUTURE WORK"} {
		matched := false
		for _, r := range rules {
			if r.Match(line) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("no conclusion rule matched %q", line)
		}
	}
}

func TestRegistry_Add(t *testing.T) {
	g := NewRegistry()
	if err := g.Add(Conclusion, "summary", `SUMMARY`); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !g.MatchLine(Conclusion, "6. Summary") {
		t.Error("added synonym did not match")
	}
	if err := g.Add(Conclusion, "broken", `(`); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
