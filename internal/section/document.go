package section

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmptyDocument is returned when a document has no text, or the text is
// not valid UTF-8. The heuristics refuse to run on such input.
var ErrEmptyDocument = errors.New("document is empty or not text")

// Document is an immutable line-split view of a paper's plain text.
// Joining Lines with "\n" reproduces Text exactly, so line indices and
// character offsets describe the same buffer.
type Document struct {
	Text  string
	Lines []string

	// starts[i] is the character offset of the first byte of Lines[i].
	starts []int
}

// NewDocument splits text into lines and builds the line-offset index.
// Returns ErrEmptyDocument for empty or non-UTF-8 input.
func NewDocument(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
		return nil, ErrEmptyDocument
	}
	lines := strings.Split(text, "\n")
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1 // +1 for the newline consumed by Split
	}
	return &Document{Text: text, Lines: lines, starts: starts}, nil
}

// LineStart returns the character offset of the start of line i. An index
// equal to len(Lines) addresses one past the final line, clamped to the
// text length (the last line carries no trailing newline).
func (d *Document) LineStart(i int) int {
	if i >= len(d.Lines) {
		return len(d.Text)
	}
	return d.starts[i]
}

// Len returns the total character length of the document.
func (d *Document) Len() int {
	return len(d.Text)
}

// Join re-assembles lines into text. Inverse of the split in NewDocument.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}
