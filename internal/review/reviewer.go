// Package review defines the reviewer interface and the model-backed
// client used to score paper texts. The reviewer is a black box to the
// rest of the pipeline: text in, rates and a decision out.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/hyperjump/shinsa/internal/models"
)

// Reviewer scores a paper text.
type Reviewer interface {
	Review(ctx context.Context, text string) (*models.Review, error)
}

// ReviewerFunc adapts a function to the Reviewer interface.
type ReviewerFunc func(ctx context.Context, text string) (*models.Review, error)

// Review implements Reviewer.
func (f ReviewerFunc) Review(ctx context.Context, text string) (*models.Review, error) {
	return f(ctx, text)
}

// ErrNoReview means the model output contained no parseable review.
var ErrNoReview = errors.New("no parseable review in model output")

// ParseReview extracts a review from raw model output. The model is asked
// for a JSON object but routinely wraps it in prose or code fences, so the
// parser finds the outermost braces and works with what is inside.
func ParseReview(raw string) (*models.Review, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, ErrNoReview
	}
	var parsed struct {
		Rates    []float64 `json:"rates"`
		Decision string    `json:"decision"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, ErrNoReview
	}
	if len(parsed.Rates) == 0 && parsed.Decision == "" {
		return nil, ErrNoReview
	}
	return &models.Review{
		Rates:    parsed.Rates,
		Decision: parsed.Decision,
		Raw:      raw,
	}, nil
}
