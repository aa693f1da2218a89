package section

import (
	"strings"
	"testing"
)

func TestEstimator_Estimate(t *testing.T) {
	// 100 chars of body with newlines every 10 chars.
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("123456789\n")
	}
	doc := mustDoc(t, b.String())
	e := NewEstimator(nil, 0)

	tests := []struct {
		tag  Tag
		want int // raw fraction offset snaps forward to the next newline
	}{
		{Abstract, 9},      // 0.05*100 = 5 -> newline at 9
		{Introduction, 19}, // 15 -> 19
		{Methods, 39},      // 35 -> 39
		{Experiments, 69},  // 65 -> 69
		{Conclusion, 99},   // 90 -> 99
	}
	for _, tt := range tests {
		if got := e.Estimate(doc, tt.tag); got != tt.want {
			t.Errorf("Estimate(%s) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

func TestEstimator_UnknownTagUsesMiddle(t *testing.T) {
	doc := mustDoc(t, strings.Repeat("x", 100))
	e := NewEstimator(nil, 0)
	if got := e.Estimate(doc, Formulas); got != 50 {
		t.Errorf("Estimate(formulas) = %d, want 50", got)
	}
}

func TestSnapToNewline(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		pos       int
		lookahead int
		want      int
	}{
		{"newline within window", "abc\ndef", 1, 300, 3},
		{"newline beyond window", "ab" + strings.Repeat("x", 400) + "\ncd", 1, 300, 1},
		{"no newline at all", "abcdef", 2, 300, 2},
		{"pos at newline", "ab\ncd", 2, 300, 2},
		{"pos past end clamps", "abc", 10, 300, 3},
		{"negative pos clamps", "a\nbc", -5, 300, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapToNewline(tt.text, tt.pos, tt.lookahead); got != tt.want {
				t.Errorf("SnapToNewline = %d, want %d", got, tt.want)
			}
		})
	}
}
