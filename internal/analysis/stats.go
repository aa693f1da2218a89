// Package analysis summarizes evaluation results: per-variant score
// shifts against the original papers, paired significance tests, and
// attack effectiveness breakdowns.
package analysis

import (
	"errors"
	"math"
	"sort"
)

// ErrTooFewPairs is returned when a test needs more paired observations.
var ErrTooFewPairs = errors.New("too few paired observations")

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleVariance returns the unbiased sample variance.
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss / float64(len(xs)-1)
}

// PairedTTest runs a two-sided paired t-test on equal-length samples.
// Returns the t statistic and p-value.
func PairedTTest(x, y []float64) (t, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, errors.New("paired samples must have equal length")
	}
	n := len(x)
	if n < 2 {
		return 0, 0, ErrTooFewPairs
	}
	diffs := make([]float64, n)
	for i := range x {
		diffs[i] = x[i] - y[i]
	}
	sd := math.Sqrt(sampleVariance(diffs))
	if sd == 0 {
		if Mean(diffs) == 0 {
			return 0, 1, nil
		}
		return math.Inf(sign(Mean(diffs))), 0, nil
	}
	t = Mean(diffs) / (sd / math.Sqrt(float64(n)))
	p = studentTPValue(t, float64(n-1))
	return t, p, nil
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// studentTPValue returns the two-sided p-value for t with df degrees of
// freedom, via the regularized incomplete beta function.
func studentTPValue(t, df float64) float64 {
	x := df / (df + t*t)
	return regIncBeta(df/2, 0.5, x)
}

// regIncBeta computes the regularized incomplete beta function I_x(a, b)
// using the continued fraction expansion.
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lbeta, _ := math.Lgamma(a + b)
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	front := math.Exp(lbeta - la - lb + a*math.Log(x) + b*math.Log(1-x))
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF is the Lentz continued fraction for the incomplete beta function.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		tiny    = 1e-30
	)
	qab, qap, qam := a+b, a+1, a-1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		num := fm * (b - fm) * x / ((qam + 2*fm) * (a + 2*fm))
		d = 1 + num*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + num/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c
		num = -(a + fm) * (qab + fm) * x / ((a + 2*fm) * (qap + 2*fm))
		d = 1 + num*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + num/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

// WilcoxonSignedRank runs a two-sided Wilcoxon signed-rank test on paired
// samples, using the normal approximation with tie correction. Zero
// differences are dropped, as in the standard formulation.
func WilcoxonSignedRank(x, y []float64) (w, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, errors.New("paired samples must have equal length")
	}
	type obs struct {
		abs  float64
		sign float64
	}
	var diffs []obs
	for i := range x {
		d := x[i] - y[i]
		if d == 0 {
			continue
		}
		o := obs{abs: math.Abs(d), sign: 1}
		if d < 0 {
			o.sign = -1
		}
		diffs = append(diffs, o)
	}
	n := len(diffs)
	if n < 5 {
		return 0, 0, ErrTooFewPairs
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].abs < diffs[j].abs })

	// Assign mid-ranks to ties; accumulate the tie correction term.
	ranks := make([]float64, n)
	var tieTerm float64
	for i := 0; i < n; {
		j := i
		for j < n && diffs[j].abs == diffs[i].abs {
			j++
		}
		mid := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[k] = mid
		}
		if c := float64(j - i); c > 1 {
			tieTerm += c*c*c - c
		}
		i = j
	}

	var wPlus float64
	for i, o := range diffs {
		if o.sign > 0 {
			wPlus += ranks[i]
		}
	}

	nf := float64(n)
	mean := nf * (nf + 1) / 4
	variance := nf*(nf+1)*(2*nf+1)/24 - tieTerm/48
	if variance <= 0 {
		return wPlus, 1, nil
	}
	z := (wPlus - mean) / math.Sqrt(variance)
	p = math.Erfc(math.Abs(z) / math.Sqrt2)
	return wPlus, p, nil
}
