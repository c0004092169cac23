package lognormal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile_KnownValues(t *testing.T) {
	cases := []struct {
		p    float64
		want float64
	}{
		{0.5, 0},
		{0.70, 0.5244005127080407},
		{0.95, 1.6448536269514722},
		{0.975, 1.959963984540054},
		{0.99, 2.3263478740408408},
		{0.05, -1.6448536269514722},
		{0.01, -2.3263478740408408},
		{1e-6, -4.753424308822899},
		{0.999999, 4.753424308822899},
	}
	for _, tc := range cases {
		z, err := Quantile(tc.p)
		require.NoError(t, err, "p=%v", tc.p)
		assert.InDelta(t, tc.want, z, 1e-8, "p=%v", tc.p)
	}
}

func TestQuantile_RoundTripsThroughCDF(t *testing.T) {
	ps := []float64{1e-12, 1e-9, 1e-6, 0.001, 0.02, 0.02425, 0.0243, 0.1, 0.3, 0.5,
		0.7, 0.9, 0.97, 0.97575, 0.976, 0.999, 0.999999}
	for _, p := range ps {
		z, err := Quantile(p)
		require.NoError(t, err)
		assert.InEpsilon(t, p, NormalCDF(z), 1e-9, "p=%v", p)
	}
}

func TestQuantile_Symmetric(t *testing.T) {
	// q is chosen so 1-q is exact and both calls see the same tail mass.
	for _, q := range []float64{0.6, 0.8, 0.975, 0.99, 1 - 1e-8, 1 - 1e-10, 1 - 1e-12, 1 - 1e-15} {
		hi, err := Quantile(q)
		require.NoError(t, err)
		lo, err := Quantile(1 - q)
		require.NoError(t, err)
		assert.InDelta(t, -lo, hi, 1e-12, "q=%v", q)
	}
}

func TestQuantile_UpperTailMatchesComplement(t *testing.T) {
	for _, q := range []float64{0.99, 1 - 1e-6, 1 - 1e-10, 1 - 1e-15} {
		z, err := Quantile(q)
		require.NoError(t, err)
		assert.InEpsilon(t, 1-q, 0.5*math.Erfc(z/math.Sqrt2), 1e-11, "q=%v", q)
	}
}

func TestQuantile_RejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, -0.1, 1.5, math.NaN(), math.Inf(1)} {
		_, err := Quantile(p)
		require.Error(t, err, "p=%v", p)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestTimeToCertainty_MedianRecoversInput(t *testing.T) {
	for _, y := range []float64{0.25, 1, 3, 10, 1234.5} {
		got, err := TimeToCertainty(0.5, y)
		require.NoError(t, err)
		assert.InEpsilon(t, y, got, 1e-6)
	}
}

func TestTimeToCertainty_MatchesClosedForm(t *testing.T) {
	got, err := TimeToCertainty(0.95, 10)
	require.NoError(t, err)
	assert.InEpsilon(t, 10*math.Exp(1.6448536269514722), got, 1e-9)
}

func TestTimeToCertainty_OrderedAndPositive(t *testing.T) {
	for _, y := range []float64{0.01, 1, 7, 40, 1e6} {
		p70, err := TimeToCertainty(0.70, y)
		require.NoError(t, err)
		p95, err := TimeToCertainty(0.95, y)
		require.NoError(t, err)
		p99, err := TimeToCertainty(0.99, y)
		require.NoError(t, err)

		assert.Greater(t, p70, 0.0)
		assert.LessOrEqual(t, p70, p95)
		assert.LessOrEqual(t, p95, p99)
	}
}

func TestTimeToCertainty_StrictlyIncreasingInP(t *testing.T) {
	ps := []float64{1e-6, 0.001, 0.01, 0.02425, 0.03, 0.2, 0.5, 0.7, 0.95, 0.97575, 0.98, 0.99, 0.999999}
	prev := 0.0
	for _, p := range ps {
		got, err := TimeToCertainty(p, 8)
		require.NoError(t, err)
		assert.Greater(t, got, prev, "p=%v", p)
		prev = got
	}
}

func TestTimeToCertainty_StrictlyIncreasingInMedian(t *testing.T) {
	prev := 0.0
	for _, y := range []float64{0.1, 0.5, 1, 2, 8, 100} {
		got, err := TimeToCertainty(0.95, y)
		require.NoError(t, err)
		assert.Greater(t, got, prev, "y=%v", y)
		prev = got
	}
}

func TestTimeToCertainty_ExtremeTails(t *testing.T) {
	lo, err := TimeToCertainty(0.000001, 5)
	require.NoError(t, err)
	hi, err := TimeToCertainty(0.999999, 5)
	require.NoError(t, err)

	assert.False(t, math.IsInf(lo, 0) || math.IsNaN(lo))
	assert.False(t, math.IsInf(hi, 0) || math.IsNaN(hi))
	assert.Greater(t, lo, 0.0)
	assert.Less(t, lo, 5.0)
	assert.Greater(t, hi, 5.0)
	assert.InEpsilon(t, 25/lo, hi, 1e-9, "tails are reciprocal around the median")
}

func TestTimeToCertainty_InvalidInput(t *testing.T) {
	_, err := TimeToCertainty(0.95, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	var inv *InvalidInputError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "median", inv.Arg)

	_, err = TimeToCertainty(0, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "p", inv.Arg)
	assert.Contains(t, err.Error(), "(0,1)")

	_, err = TimeToCertainty(0.5, -3)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = TimeToCertainty(0.5, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTimeToCertainty_Deterministic(t *testing.T) {
	a, err := TimeToCertainty(0.99, 13.7)
	require.NoError(t, err)
	b, err := TimeToCertainty(0.99, 13.7)
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(a), math.Float64bits(b))
}

func TestCertainty_InvertsTimeToCertainty(t *testing.T) {
	for _, p := range []float64{0.01, 0.3, 0.7, 0.95, 0.99} {
		tt, err := TimeToCertainty(p, 6)
		require.NoError(t, err)
		got, err := Certainty(tt, 6)
		require.NoError(t, err)
		assert.InDelta(t, p, got, 1e-9)
	}

	zero, err := Certainty(0, 6)
	require.NoError(t, err)
	assert.Equal(t, 0.0, zero)

	_, err = Certainty(-1, 6)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = Certainty(1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestForHours(t *testing.T) {
	est := ForHours(10)
	require.NotNil(t, est)
	assert.LessOrEqual(t, est.P70, est.P95)
	assert.LessOrEqual(t, est.P95, est.P99)
	assert.InEpsilon(t, 10*math.Exp(0.5244005127080407), est.P70, 1e-9)

	assert.Nil(t, ForHours(0))
	assert.Nil(t, ForHours(-2))
	assert.Nil(t, ForHours(math.NaN()))
	assert.Nil(t, ForHours(math.Inf(1)))
}

func TestLevels(t *testing.T) {
	got, err := Levels(4, 0.5, 0.9)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InEpsilon(t, 4, got[0], 1e-12)

	_, err = Levels(4, 0.5, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
