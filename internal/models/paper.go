// Package models defines core data structures for papers, mutation
// variants, attack records, and review results.
package models

import "encoding/json"

// Paper is a source paper loaded from a JSONL dataset. Text is the full
// plain-text rendering, already extracted from upstream formats.
type Paper struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	// OriginalPath records where the paper came from ("file.jsonl:42").
	OriginalPath string `json:"original_path,omitempty"`
	// Rates and Decision are passthrough review metadata from the source
	// dataset; their shape varies per corpus so they stay untyped.
	Rates    json.RawMessage `json:"rates,omitempty"`
	Decision json.RawMessage `json:"decision,omitempty"`
}

// RawPaper mirrors the heterogeneous JSONL shapes seen in the wild. The
// loader normalizes it into a Paper.
type RawPaper struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Text     string          `json:"text"`
	Latex    string          `json:"latex"`
	Content  string          `json:"content"`
	PaperTxt string          `json:"paper_text"`
	FullText string          `json:"full_text"`
	Body     string          `json:"body"`
	Messages []Message       `json:"messages"`
	Sections []RawSection    `json:"sections"`
	Rates    json.RawMessage `json:"rates"`
	Decision json.RawMessage `json:"decision"`
}

// Message is one turn of a conversation-style dataset record.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RawSection is a section entry in datasets that ship pre-split papers.
// Either a plain string or an object with text/content.
type RawSection struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts both the string form and the object form.
func (s *RawSection) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Text = str
		return nil
	}
	type alias RawSection
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = RawSection(obj)
	return nil
}
