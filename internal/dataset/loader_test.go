package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/shinsa/internal/models"
	"go.uber.org/zap"
)

func writeTempJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPapers(t *testing.T) {
	path := writeTempJSONL(t,
		`{"id":"p1","title":"Paper One","text":"ABSTRACT\nbody","rates":[5,6],"decision":"Accept"}`,
		``,
		`this is not json`,
		`{"title":"Latex Paper","latex":"\\documentclass{article}"}`,
		`{"id":"p3","text":"no title"}`,
	)

	papers, err := LoadPapers(path, zap.NewNop())
	if err != nil {
		t.Fatalf("LoadPapers: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("loaded %d papers, want 3", len(papers))
	}
	if papers[0].ID != "p1" || papers[0].Text != "ABSTRACT\nbody" {
		t.Errorf("unexpected first paper: %+v", papers[0])
	}
	if string(papers[0].Rates) != "[5,6]" {
		t.Errorf("rates passthrough = %s", papers[0].Rates)
	}
	if papers[1].Text != "\\documentclass{article}" {
		t.Errorf("latex fallback text = %q", papers[1].Text)
	}
	if papers[1].ID == "" {
		t.Error("missing id should be assigned")
	}
	if papers[2].Title != "p3" {
		t.Errorf("missing title should fall back to id, got %q", papers[2].Title)
	}
	if !strings.HasSuffix(papers[0].OriginalPath, ":1") {
		t.Errorf("OriginalPath = %q, want line-suffixed path", papers[0].OriginalPath)
	}
}

func TestLoadPapers_Missing(t *testing.T) {
	if _, err := LoadPapers(filepath.Join(t.TempDir(), "nope.jsonl"), zap.NewNop()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractText(t *testing.T) {
	long := strings.Repeat("ABSTRACT body text ", 100) // >1000 chars, mentions ABSTRACT early

	tests := []struct {
		name string
		raw  models.RawPaper
		want string
	}{
		{"text field wins", models.RawPaper{Text: "t", Latex: "l"}, "t"},
		{"latex fallback", models.RawPaper{Latex: "l", Content: "c"}, "l"},
		{"content fallback", models.RawPaper{Content: "c", Body: "b"}, "c"},
		{"body fallback", models.RawPaper{Body: "b"}, "b"},
		{
			"messages paper content",
			models.RawPaper{Messages: []models.Message{
				{Role: "system", Content: "You are a reviewer."},
				{Role: "user", Content: long},
			}},
			long,
		},
		{
			"messages longest fallback",
			models.RawPaper{Messages: []models.Message{
				{Role: "system", Content: "short"},
				{Role: "user", Content: "a slightly longer message"},
			}},
			"a slightly longer message",
		},
		{
			"sections joined",
			models.RawPaper{Sections: []models.RawSection{{Text: "one"}, {Content: "two"}}},
			"one\n\ntwo",
		},
		{"nothing", models.RawPaper{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(&tt.raw); got != tt.want {
				t.Errorf("ExtractText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRawSection_UnmarshalBothForms(t *testing.T) {
	var raw models.RawPaper
	data := `{"sections":["plain string", {"text":"object form"}]}`
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := ExtractText(&raw); got != "plain string\n\nobject form" {
		t.Errorf("ExtractText = %q", got)
	}
}
