package review

import (
	"errors"
	"testing"
)

func TestParseReview(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantErr      bool
		wantRates    int
		wantDecision string
	}{
		{
			name:         "clean json",
			raw:          `{"rates": [6, 7, 5, 6], "decision": "Accept"}`,
			wantRates:    4,
			wantDecision: "Accept",
		},
		{
			name:         "json wrapped in prose",
			raw:          "Here is my review:\n```json\n{\"rates\": [3, 4], \"decision\": \"Reject\"}\n```\nThanks.",
			wantRates:    2,
			wantDecision: "Reject",
		},
		{
			name:         "decision only",
			raw:          `{"decision": "Accept"}`,
			wantRates:    0,
			wantDecision: "Accept",
		},
		{name: "no json at all", raw: "I liked the paper.", wantErr: true},
		{name: "empty object", raw: "{}", wantErr: true},
		{name: "broken json", raw: `{"rates": [1,`, wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev, err := ParseReview(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrNoReview) {
					t.Errorf("err = %v, want ErrNoReview", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReview: %v", err)
			}
			if len(rev.Rates) != tt.wantRates {
				t.Errorf("rates = %v, want %d values", rev.Rates, tt.wantRates)
			}
			if rev.Decision != tt.wantDecision {
				t.Errorf("decision = %q, want %q", rev.Decision, tt.wantDecision)
			}
			if rev.Raw != tt.raw {
				t.Error("raw output not preserved")
			}
		})
	}
}

func TestReviewScore(t *testing.T) {
	rev, err := ParseReview(`{"rates": [4, 6, 5, 5], "decision": "Reject"}`)
	if err != nil {
		t.Fatal(err)
	}
	score, ok := rev.Score()
	if !ok || score != 5.0 {
		t.Errorf("Score = %v, %v; want 5.0, true", score, ok)
	}
}
