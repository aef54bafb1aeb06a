package stats

import (
	"errors"
	"math"
	"sort"

	gstat "gonum.org/v1/gonum/stat"
)

var errSampleTooSmall = errors.New("fewer than two observations in a group")

// kolmogorovSmirnov computes the two-sample two-sided KS test. The D
// statistic comes from gonum; the p-value is the asymptotic Kolmogorov
// distribution with the usual effective-sample-size correction, since
// neither gonum nor go-moremath exposes a two-sample KS p-value.
func kolmogorovSmirnov(x, y []float64) (float64, float64, error) {
	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)
	sort.Float64s(xs)
	sort.Float64s(ys)

	d := gstat.KolmogorovSmirnov(xs, nil, ys, nil)

	n1 := float64(len(xs))
	n2 := float64(len(ys))
	ne := n1 * n2 / (n1 + n2)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * d
	return d, kolmogorovQ(lambda), nil
}

// kolmogorovQ evaluates Q(lambda) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 lambda^2),
// the limiting tail probability of the KS statistic. The alternating series
// converges fast for lambda of interest; when it does not converge the tail
// is indistinguishable from 1.
func kolmogorovQ(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}

	const (
		maxTerms = 100
		eps1     = 1e-6  // relative to previous term
		eps2     = 1e-12 // relative to running sum
	)
	sum := 0.0
	sign := 1.0
	prev := 0.0
	for j := 1; j <= maxTerms; j++ {
		term := sign * 2 * math.Exp(-2*float64(j)*float64(j)*lambda*lambda)
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			if sum < 0 {
				return 0
			}
			if sum > 1 {
				return 1
			}
			return sum
		}
		prev = math.Abs(term)
		sign = -sign
	}
	return 1
}
