package models

import "time"

// Review is a single model review of one paper text.
type Review struct {
	// Rates are the per-aspect numeric ratings returned by the reviewer.
	Rates []float64 `json:"rates"`
	// Decision is the overall verdict, e.g. "Accept" / "Reject".
	Decision string `json:"decision"`
	// Raw preserves the unparsed model output for later inspection.
	Raw string `json:"raw,omitempty"`
}

// Score is the scalar score of a review: the mean of its rates, or 0 with
// ok=false when there are none.
func (r *Review) Score() (float64, bool) {
	if r == nil || len(r.Rates) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range r.Rates {
		sum += v
	}
	return sum / float64(len(r.Rates)), true
}

// EvaluationResult couples a dataset row with its review outcome. Rows
// that failed to evaluate carry Error and a nil Review.
type EvaluationResult struct {
	VariantID      string    `json:"variant_id"`
	OriginalID     string    `json:"original_id"`
	VariantType    string    `json:"variant_type"`
	AttackType     string    `json:"attack_type,omitempty"`
	AttackPosition string    `json:"attack_position,omitempty"`
	SectionFound   *bool     `json:"section_found,omitempty"`
	Review         *Review   `json:"review,omitempty"`
	Error          string    `json:"error,omitempty"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}
