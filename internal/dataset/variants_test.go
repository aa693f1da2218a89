package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/shinsa/internal/models"
	"github.com/hyperjump/shinsa/internal/mutate"
	"github.com/hyperjump/shinsa/internal/section"
)

// fullPaperText contains every section the default catalog ablates, with
// bodies long enough to clear the degenerate threshold.
const fullPaperText = "Title: Structural Robustness of Automated Review\n" +
	"ABSTRACT\n" +
	"We measure how review scores shift when paper structure is perturbed in controlled ways.\n" +
	"1 INTRODUCTION\n" +
	"Automated reviewing systems promise scale but their failure modes are poorly understood.\n" +
	"2 METHODS\n" +
	"We generate ablation variants by deleting one section at a time from each paper.\n" +
	"3 EXPERIMENTS\n" +
	"Across the corpus, removing the methods section shifts scores the most.\n" +
	"4 CONCLUSION\n" +
	"Review models lean heavily on surface structure.\n" +
	"REFERENCES\n" +
	"[1] Earlier robustness studies."

func testPaper(text string) *models.Paper {
	return &models.Paper{ID: "p1", Title: "Robustness Paper", Text: text}
}

func newGen(opts ...GeneratorOption) *Generator {
	return NewGenerator(mutate.NewEngine(section.NewRegistry()), opts...)
}

func TestGenerator_VariantsForPaper(t *testing.T) {
	g := newGen()
	records, ok := g.VariantsForPaper(testPaper(fullPaperText))
	if !ok {
		t.Fatal("expected all variants to succeed")
	}
	if len(records) != 6 {
		t.Fatalf("got %d records, want 6", len(records))
	}

	byType := make(map[string]*models.VariantRecord)
	for _, r := range records {
		byType[r.VariantType] = r
	}

	orig := byType["original"]
	if orig == nil || orig.Text != fullPaperText {
		t.Fatal("original variant should carry unmodified text")
	}
	if orig.ID != "p1_original" {
		t.Errorf("original id = %q, want p1_original", orig.ID)
	}
	if orig.Title != "Robustness Paper [original]" {
		t.Errorf("original title = %q", orig.Title)
	}

	for _, vt := range []string{"no_abstract", "no_introduction", "no_conclusion", "no_experiments", "no_methods"} {
		rec := byType[vt]
		if rec == nil {
			t.Errorf("missing variant %s", vt)
			continue
		}
		if len(rec.Text) >= len(fullPaperText) {
			t.Errorf("%s text did not shrink", vt)
		}
		if rec.ID != "p1_"+vt {
			t.Errorf("%s id = %q", vt, rec.ID)
		}
		if rec.OriginalTitle != "Robustness Paper" || rec.OriginalID != "p1" {
			t.Errorf("%s lost source identity: %+v", vt, rec)
		}
	}
	if !strings.Contains(byType["no_abstract"].Text, "1 INTRODUCTION") {
		t.Error("no_abstract should keep the introduction")
	}
	if strings.Contains(byType["no_conclusion"].Text, "surface structure") {
		t.Error("no_conclusion should drop the conclusion body")
	}
}

func TestGenerator_StrictDiscardsPaper(t *testing.T) {
	// No METHODS section: strict mode must discard all variants.
	text := "ABSTRACT\nA body long enough to not be degenerate for this particular test case.\n1 INTRODUCTION\nMore body text that adds plausible length to the document under test."
	g := newGen()
	records, ok := g.VariantsForPaper(testPaper(text))
	if ok || records != nil {
		t.Errorf("strict mode: got (%d records, ok=%v), want (nil, false)", len(records), ok)
	}
}

func TestGenerator_LenientKeepsPartial(t *testing.T) {
	text := "ABSTRACT\nA body long enough to not be degenerate for this particular test case.\n1 INTRODUCTION\nMore body text that adds plausible length to the document under test."
	g := newGen(WithStrict(false), WithVariants([]string{"original", "no_abstract", "no_methods"}))
	records, ok := g.VariantsForPaper(testPaper(text))
	if ok {
		t.Error("ok should be false when any variant failed")
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (original + no_abstract)", len(records))
	}
}

func TestGenerator_EmptyText(t *testing.T) {
	g := newGen()
	if records, ok := g.VariantsForPaper(testPaper("")); ok || records != nil {
		t.Error("empty text should fail outright")
	}
}

func TestGenerator_UnknownVariant(t *testing.T) {
	g := newGen(WithVariants([]string{"original", "no_such_thing"}))
	if _, ok := g.VariantsForPaper(testPaper(fullPaperText)); ok {
		t.Error("unknown variant type should fail")
	}
}

func TestGenerator_GenerateVariantsBackfill(t *testing.T) {
	good := func(id string) *models.Paper {
		return &models.Paper{ID: id, Title: id, Text: fullPaperText}
	}
	bad := &models.Paper{ID: "bad", Title: "bad", Text: "ABSTRACT\nonly an abstract, so most ablations cannot find their target section here."}

	all := []*models.Paper{good("a"), bad, good("b"), good("c")}
	sampled := []*models.Paper{good("a"), bad}

	g := newGen()
	records := g.GenerateVariants(sampled, all, 2, 7)

	// Two successful papers, six variants each; the bad paper was
	// replaced from the pool.
	if len(records) != 12 {
		t.Fatalf("got %d records, want 12", len(records))
	}
	for _, r := range records {
		if r.OriginalID == "bad" {
			t.Error("discarded paper leaked into output")
		}
	}
}

func TestGenerator_GenerateVariantsDeterministic(t *testing.T) {
	var all []*models.Paper
	for i := 0; i < 6; i++ {
		all = append(all, &models.Paper{ID: fmt.Sprintf("p%d", i), Title: "t", Text: fullPaperText})
	}
	g := newGen()
	a := g.GenerateVariants(all[:3], all, 3, 99)
	b := g.GenerateVariants(all[:3], all, 3, 99)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic record count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("non-deterministic order at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestVariantTypes(t *testing.T) {
	types := VariantTypes()
	if types[0] != VariantOriginal {
		t.Error("control variant should come first")
	}
	for _, vt := range types[1:] {
		if _, ok := variantTags[vt]; !ok {
			t.Errorf("variant %s has no tag mapping", vt)
		}
	}
}
