package lognormal

import "math"

// Coefficients of Acklam's rational approximation to the standard-normal
// quantile function.
var (
	acklamA = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	acklamB = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	acklamC = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	acklamD = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

// tailBreak separates the central rational approximation from the
// sqrt(-2 ln p) tail approximations.
const tailBreak = 0.02425

// Quantile returns Φ⁻¹(p), the z-score whose standard-normal CDF is p.
//
// The upper half is evaluated as -Φ⁻¹(1-p); 1-p is exact there, and the
// refinement residual Φ(x)-p only keeps its precision while x ≤ 0. The
// initial approximation is piecewise (central region plus the lower tail)
// with relative error below 1.15e-9; a single Halley step against
// math.Erfc brings it to full double precision.
func Quantile(p float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, invalidProbability(p)
	}
	if p > 0.5 {
		return -lowerQuantile(1 - p), nil
	}
	return lowerQuantile(p), nil
}

// lowerQuantile computes Φ⁻¹(p) for p in (0, 0.5].
func lowerQuantile(p float64) float64 {
	x := acklam(p)

	// Halley refinement.
	e := 0.5*math.Erfc(-x/math.Sqrt2) - p
	u := e * math.Sqrt(2*math.Pi) * math.Exp(x*x/2)
	return x - u/(1+x*u/2)
}

func acklam(p float64) float64 {
	a, b, c, d := acklamA, acklamB, acklamC, acklamD

	if p < tailBreak {
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
	q := p - 0.5
	r := q * q
	return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
		(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
}

// NormalCDF returns Φ(z).
func NormalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
