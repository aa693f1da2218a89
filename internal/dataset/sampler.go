package dataset

import (
	"math/rand"

	"github.com/hyperjump/shinsa/internal/models"
)

// SampleRatio returns a deterministic random sample of ratio*len(papers)
// papers (at least one) for a given seed. The input slice is not modified.
func SampleRatio(papers []*models.Paper, ratio float64, seed int64) []*models.Paper {
	n := int(float64(len(papers)) * ratio)
	if n < 1 {
		n = 1
	}
	return SampleN(papers, n, seed)
}

// SampleN returns up to n papers drawn without replacement, deterministic
// for a given seed.
func SampleN(papers []*models.Paper, n int, seed int64) []*models.Paper {
	if n >= len(papers) {
		out := make([]*models.Paper, len(papers))
		copy(out, papers)
		return out
	}
	rnd := rand.New(rand.NewSource(seed))
	idx := rnd.Perm(len(papers))
	out := make([]*models.Paper, n)
	for i := 0; i < n; i++ {
		out[i] = papers[idx[i]]
	}
	return out
}
