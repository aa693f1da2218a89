package models

import "encoding/json"

// VariantRecord is one emitted dataset row: either an untouched original
// or a mutated variant of a paper. The schema matches the evaluation
// pipeline's expectations, one JSON object per line.
type VariantRecord struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	OriginalTitle string          `json:"original_title"`
	VariantType   string          `json:"variant_type"`
	Text          string          `json:"text"`
	OriginalID    string          `json:"original_id"`
	OriginalPath  string          `json:"original_path,omitempty"`
	Rates         json.RawMessage `json:"rates,omitempty"`
	Decision      json.RawMessage `json:"decision,omitempty"`
}

// AttackRecord is a variant record extended with adversarial-attack
// metadata. SectionFound is the confidence flag: false means the payload
// position was estimated, not located, and downstream analysis should
// treat the row accordingly.
type AttackRecord struct {
	VariantRecord
	AttackType     string `json:"attack_type"`
	AttackPosition string `json:"attack_position"`
	AttackText     string `json:"attack_text,omitempty"`
	SectionFound   *bool  `json:"section_found,omitempty"`
	DatasetSplit   string `json:"dataset_split,omitempty"`
}
