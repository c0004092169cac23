// Package lognormal converts a point estimate into completion times at
// chosen confidence levels. The estimate is taken as the median of a
// lognormal distribution with shape σ = 1, so t(p) = Y · exp(Φ⁻¹(p)).
package lognormal

import (
	"math"

	"github.com/alexanderramin/mediantree/internal/domain"
)

// TimeToCertainty returns t such that P[T ≤ t] = p for
// T ~ LogNormal(median = y, σ = 1).
func TimeToCertainty(p, y float64) (float64, error) {
	if !validMedian(y) {
		return 0, invalidMedian(y)
	}
	z, err := Quantile(p)
	if err != nil {
		return 0, err
	}
	return y * math.Exp(z), nil
}

// Certainty is the inverse of TimeToCertainty: the probability that work
// with median y finishes within t hours.
func Certainty(t, y float64) (float64, error) {
	if !validMedian(y) {
		return 0, invalidMedian(y)
	}
	if math.IsNaN(t) || t < 0 {
		return 0, &InvalidInputError{Arg: "t", Value: t, Reason: "must be non-negative"}
	}
	if t == 0 {
		return 0, nil
	}
	if math.IsInf(t, 1) {
		return 1, nil
	}
	return NormalCDF(math.Log(t / y)), nil
}

// ForHours returns the p70/p95/p99 triple for a node's effort, or nil when
// the effort carries no estimate (zero, negative, or non-finite).
func ForHours(y float64) *domain.Estimate {
	if !validMedian(y) {
		return nil
	}
	// Errors are impossible past the guard above: the levels are constants in (0,1).
	p70, _ := TimeToCertainty(domain.ConfidenceP70, y)
	p95, _ := TimeToCertainty(domain.ConfidenceP95, y)
	p99, _ := TimeToCertainty(domain.ConfidenceP99, y)
	return &domain.Estimate{P70: p70, P95: p95, P99: p99}
}

// Levels evaluates TimeToCertainty for each p, in order.
func Levels(y float64, ps ...float64) ([]float64, error) {
	out := make([]float64, 0, len(ps))
	for _, p := range ps {
		t, err := TimeToCertainty(p, y)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func validMedian(y float64) bool {
	return y > 0 && !math.IsInf(y, 1)
}
