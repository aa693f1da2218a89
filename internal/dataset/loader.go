// Package dataset loads paper corpora from JSONL, samples them, and builds
// the ablation-variant and adversarial-attack datasets around the mutation
// engine. File writing is funneled through a single Writer so concurrent
// producers never interleave lines.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/shinsa/internal/models"
	"go.uber.org/zap"
)

// maxLineBytes caps scanner lines; papers routinely exceed the default
// token size, and a full LaTeX dump can run to tens of megabytes.
const maxLineBytes = 64 * 1024 * 1024

// LoadPapers reads papers from a JSONL file, one JSON object per line.
// Records vary across corpora, so the text is recovered from whichever
// field carries it; lines that fail to parse are skipped with a warning.
// Papers without an id are assigned one.
func LoadPapers(path string, logger *zap.Logger) ([]*models.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var papers []*models.Paper
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw models.RawPaper
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			logger.Warn("skipping unparseable line",
				zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		paper := &models.Paper{
			ID:           raw.ID,
			Title:        raw.Title,
			Text:         ExtractText(&raw),
			OriginalPath: fmt.Sprintf("%s:%d", path, lineNo),
			Rates:        raw.Rates,
			Decision:     raw.Decision,
		}
		if paper.Title == "" {
			if paper.ID != "" {
				paper.Title = paper.ID
			} else {
				paper.Title = fmt.Sprintf("paper_%d", lineNo)
			}
		}
		if paper.ID == "" {
			paper.ID = uuid.New().String()
		}
		papers = append(papers, paper)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return papers, nil
}

// ExtractText recovers the full paper text from a heterogeneous record.
// Priority: text, latex, conversation messages, then the various body
// fields, then pre-split sections joined by blank lines.
func ExtractText(raw *models.RawPaper) string {
	if raw.Text != "" {
		return raw.Text
	}
	if raw.Latex != "" {
		return raw.Latex
	}
	if text := textFromMessages(raw.Messages); text != "" {
		return text
	}
	for _, s := range []string{raw.Content, raw.PaperTxt, raw.FullText, raw.Body} {
		if s != "" {
			return s
		}
	}
	if len(raw.Sections) > 0 {
		parts := make([]string, 0, len(raw.Sections))
		for _, sec := range raw.Sections {
			if sec.Text != "" {
				parts = append(parts, sec.Text)
			} else if sec.Content != "" {
				parts = append(parts, sec.Content)
			}
		}
		return strings.Join(parts, "\n\n")
	}
	return ""
}

// textFromMessages finds the paper body inside conversation-style records.
// The paper is usually a long user message opening with a title line or an
// ABSTRACT/INTRODUCTION heading; failing that, the longest message wins.
func textFromMessages(messages []models.Message) string {
	for _, msg := range messages {
		content := msg.Content
		if len(content) <= 1000 {
			continue
		}
		head := strings.ToUpper(content[:min(500, len(content))])
		if strings.Contains(head, "ABSTRACT") ||
			strings.Contains(head, "INTRODUCTION") ||
			strings.HasPrefix(strings.TrimSpace(content), "Title:") {
			return content
		}
	}
	longest := ""
	for _, msg := range messages {
		if len(msg.Content) > len(longest) {
			longest = msg.Content
		}
	}
	return longest
}
