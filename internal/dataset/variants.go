package dataset

import (
	"fmt"
	"math/rand"

	"github.com/hyperjump/shinsa/internal/models"
	"github.com/hyperjump/shinsa/internal/mutate"
	"github.com/hyperjump/shinsa/internal/section"
	"go.uber.org/zap"
)

// VariantOriginal is the untouched control variant present in every run.
const VariantOriginal = "original"

// variantTags maps variant type names to the section tag they remove.
var variantTags = map[string]section.Tag{
	"no_abstract":     section.Abstract,
	"no_introduction": section.Introduction,
	"no_methods":      section.Methods,
	"no_experiments":  section.Experiments,
	"no_conclusion":   section.Conclusion,
	"no_references":   section.References,
	"no_formulas":     section.Formulas,
	"no_figures":      section.Figures,
}

// VariantTypes lists every supported variant type name, control first.
func VariantTypes() []string {
	return []string{
		VariantOriginal,
		"no_abstract", "no_introduction", "no_methods", "no_experiments",
		"no_conclusion", "no_references", "no_formulas", "no_figures",
	}
}

// Generator builds variant and attack datasets from papers using a
// mutation engine.
type Generator struct {
	engine     *mutate.Engine
	variants   []string
	strict     bool
	maxRetries int
	minTextLen int
	logger     *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithVariants sets the variant catalog to generate. Unknown names are
// rejected by Generate at call time.
func WithVariants(names []string) GeneratorOption {
	return func(g *Generator) {
		if len(names) > 0 {
			g.variants = names
		}
	}
}

// WithStrict sets strict mode: when any variant of a paper fails, all of
// that paper's variants are discarded and a replacement paper is drawn.
func WithStrict(strict bool) GeneratorOption {
	return func(g *Generator) { g.strict = strict }
}

// WithMaxRetries bounds backfill sampling when strict failures discard papers.
func WithMaxRetries(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxRetries = n
		}
	}
}

// WithMinTextLen sets the minimum text length for attack generation.
func WithMinTextLen(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.minTextLen = n
		}
	}
}

// WithLogger sets a logger for skip/progress events.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a generator over engine. Defaults: the six-variant
// catalog (control plus the five heading ablations), strict mode, 100
// backfill attempts, 500-char attack minimum.
func NewGenerator(engine *mutate.Engine, opts ...GeneratorOption) *Generator {
	g := &Generator{
		engine: engine,
		variants: []string{
			VariantOriginal,
			"no_abstract", "no_introduction", "no_conclusion",
			"no_experiments", "no_methods",
		},
		strict:     true,
		maxRetries: 100,
		minTextLen: 500,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Variants returns the configured variant catalog.
func (g *Generator) Variants() []string {
	out := make([]string, len(g.variants))
	copy(out, g.variants)
	return out
}

// VariantsForPaper generates every configured variant of one paper.
// Returns the records and whether all variants succeeded. In strict mode a
// single failure returns (nil, false); otherwise failed variants are
// skipped and the rest returned.
func (g *Generator) VariantsForPaper(paper *models.Paper) ([]*models.VariantRecord, bool) {
	doc, err := section.NewDocument(paper.Text)
	if err != nil {
		g.logger.Warn("paper has empty or invalid text, skipping",
			zap.String("title", paper.Title))
		return nil, false
	}

	var records []*models.VariantRecord
	allOK := true
	for _, name := range g.variants {
		text, err := g.applyVariant(doc, name)
		if err != nil {
			g.logger.Warn("variant generation failed",
				zap.String("variant", name),
				zap.String("title", paper.Title),
				zap.Error(err))
			allOK = false
			if g.strict {
				g.logger.Info("strict mode: paper discarded",
					zap.String("title", paper.Title),
					zap.String("failed_variant", name))
				return nil, false
			}
			continue
		}
		records = append(records, buildVariantRecord(paper, name, text))
	}
	return records, allOK
}

// applyVariant produces the text for one variant type.
func (g *Generator) applyVariant(doc *section.Document, name string) (string, error) {
	if name == VariantOriginal {
		return doc.Text, nil
	}
	tag, ok := variantTags[name]
	if !ok {
		return "", fmt.Errorf("unknown variant type: %q", name)
	}
	res, err := g.engine.Delete(doc, tag)
	if err != nil {
		return "", err
	}
	// Content tags report no-match through the flag rather than an error.
	if !res.SectionFound {
		return "", mutate.ErrSectionNotFound
	}
	return res.Text, nil
}

// buildVariantRecord assembles the output row for one (paper, variant)
// pair: deterministic id, tagged title, passthrough metadata.
func buildVariantRecord(paper *models.Paper, variantType, text string) *models.VariantRecord {
	return &models.VariantRecord{
		ID:            fmt.Sprintf("%s_%s", paper.ID, variantType),
		Title:         fmt.Sprintf("%s [%s]", paper.Title, variantType),
		OriginalTitle: paper.Title,
		VariantType:   variantType,
		Text:          text,
		OriginalID:    paper.ID,
		OriginalPath:  paper.OriginalPath,
		Rates:         paper.Rates,
		Decision:      paper.Decision,
	}
}

// GenerateVariants processes sampled papers toward target successful
// papers, drawing replacements from the unused remainder of all when
// strict failures discard a paper. Backfill draws are deterministic for a
// given seed and bounded by the retry limit.
func (g *Generator) GenerateVariants(sampled, all []*models.Paper, target int, seed int64) []*models.VariantRecord {
	rnd := rand.New(rand.NewSource(seed))

	used := make(map[string]bool, len(sampled))
	for _, p := range sampled {
		used[p.ID] = true
	}
	var pool []*models.Paper
	for _, p := range all {
		if !used[p.ID] {
			pool = append(pool, p)
		}
	}

	queue := make([]*models.Paper, len(sampled))
	copy(queue, sampled)

	var records []*models.VariantRecord
	successful := 0
	retries := 0
	processed := 0

	for successful < target && retries < g.maxRetries {
		if len(queue) == 0 {
			if len(pool) == 0 {
				g.logger.Warn("candidate pool exhausted",
					zap.Int("successful", successful), zap.Int("target", target))
				break
			}
			i := rnd.Intn(len(pool))
			queue = append(queue, pool[i])
			pool = append(pool[:i], pool[i+1:]...)
			retries++
		}

		paper := queue[0]
		queue = queue[1:]
		processed++
		if processed%100 == 0 {
			g.logger.Info("variant generation progress",
				zap.Int("processed", processed), zap.Int("successful", successful))
		}

		recs, ok := g.VariantsForPaper(paper)
		if g.strict && !ok {
			continue
		}
		if len(recs) > 0 {
			records = append(records, recs...)
			successful++
		}
	}

	if successful < target {
		g.logger.Warn("fewer successful papers than target",
			zap.Int("successful", successful), zap.Int("target", target))
	}
	return records
}
