package analysis

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/shinsa/internal/models"
)

// VariantEffect summarizes how one variant type shifted review scores
// relative to the paired originals.
type VariantEffect struct {
	VariantType  string  `json:"variant_type"`
	Pairs        int     `json:"pairs"`
	MeanOriginal float64 `json:"mean_original"`
	MeanVariant  float64 `json:"mean_variant"`
	MeanDelta    float64 `json:"mean_delta"`
	TStat        float64 `json:"t_stat"`
	TPValue      float64 `json:"t_p_value"`
	WilcoxonW    float64 `json:"wilcoxon_w"`
	WilcoxonP    float64 `json:"wilcoxon_p"`
	TestSkipped  bool    `json:"test_skipped,omitempty"`
}

// AttackEffect summarizes one attack type or position bucket.
type AttackEffect struct {
	Key              string  `json:"key"`
	Pairs            int     `json:"pairs"`
	MeanDelta        float64 `json:"mean_delta"`
	LiftRate         float64 `json:"lift_rate"`
	SectionFoundRate float64 `json:"section_found_rate"`
}

// Report is the full analysis output.
type Report struct {
	Results    int             `json:"results"`
	Scored     int             `json:"scored"`
	Originals  int             `json:"originals"`
	Variants   []VariantEffect `json:"variants,omitempty"`
	ByAttack   []AttackEffect  `json:"by_attack,omitempty"`
	ByPosition []AttackEffect  `json:"by_position,omitempty"`
}

type scoredPair struct {
	original float64
	variant  float64
	found    *bool
}

// Analyzer pairs variant results with their originals and builds a Report.
type Analyzer struct {
	logger *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds a Report from evaluation results. Results without a
// parseable score, and variants whose original was never scored, are
// counted but excluded from the paired statistics.
func (a *Analyzer) Analyze(results []*models.EvaluationResult) *Report {
	report := &Report{Results: len(results)}

	// Index original scores by paper id.
	originals := make(map[string]float64)
	for _, r := range results {
		if r.VariantType != "original" || r.Review == nil {
			continue
		}
		if score, ok := r.Review.Score(); ok {
			originals[r.OriginalID] = score
			report.Scored++
		}
	}
	report.Originals = len(originals)

	byVariant := make(map[string][]scoredPair)
	byAttack := make(map[string][]scoredPair)
	byPosition := make(map[string][]scoredPair)
	for _, r := range results {
		if r.VariantType == "original" || r.Review == nil {
			continue
		}
		score, ok := r.Review.Score()
		if !ok {
			a.logger.Debug("result has no score", zap.String("variant_id", r.VariantID))
			continue
		}
		report.Scored++
		orig, ok := originals[r.OriginalID]
		if !ok {
			a.logger.Debug("unpaired variant", zap.String("variant_id", r.VariantID))
			continue
		}
		pair := scoredPair{original: orig, variant: score, found: r.SectionFound}
		byVariant[r.VariantType] = append(byVariant[r.VariantType], pair)
		if r.AttackType != "" && r.AttackType != "none" {
			byAttack[r.AttackType] = append(byAttack[r.AttackType], pair)
			byPosition[r.AttackPosition] = append(byPosition[r.AttackPosition], pair)
		}
	}

	for _, name := range sortedKeys(byVariant) {
		report.Variants = append(report.Variants, buildVariantEffect(name, byVariant[name]))
	}
	for _, name := range sortedKeys(byAttack) {
		report.ByAttack = append(report.ByAttack, buildAttackEffect(name, byAttack[name]))
	}
	for _, name := range sortedKeys(byPosition) {
		report.ByPosition = append(report.ByPosition, buildAttackEffect(name, byPosition[name]))
	}
	return report
}

func buildVariantEffect(name string, pairs []scoredPair) VariantEffect {
	orig := make([]float64, len(pairs))
	vari := make([]float64, len(pairs))
	for i, p := range pairs {
		orig[i] = p.original
		vari[i] = p.variant
	}
	eff := VariantEffect{
		VariantType:  name,
		Pairs:        len(pairs),
		MeanOriginal: Mean(orig),
		MeanVariant:  Mean(vari),
		MeanDelta:    Mean(vari) - Mean(orig),
	}
	if t, p, err := PairedTTest(vari, orig); err == nil {
		eff.TStat, eff.TPValue = t, p
	} else {
		eff.TestSkipped = true
	}
	if w, p, err := WilcoxonSignedRank(vari, orig); err == nil {
		eff.WilcoxonW, eff.WilcoxonP = w, p
	} else {
		eff.TestSkipped = true
	}
	return eff
}

func buildAttackEffect(key string, pairs []scoredPair) AttackEffect {
	eff := AttackEffect{Key: key, Pairs: len(pairs)}
	var deltaSum float64
	var lifted, found, withFlag int
	for _, p := range pairs {
		d := p.variant - p.original
		deltaSum += d
		if d > 0 {
			lifted++
		}
		if p.found != nil {
			withFlag++
			if *p.found {
				found++
			}
		}
	}
	eff.MeanDelta = deltaSum / float64(len(pairs))
	eff.LiftRate = float64(lifted) / float64(len(pairs))
	if withFlag > 0 {
		eff.SectionFoundRate = float64(found) / float64(withFlag)
	}
	return eff
}

func sortedKeys(m map[string][]scoredPair) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
