package interpolate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	dx := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + float64(i)*dx
	}
	return xs
}

func TestSplineAtNodes(t *testing.T) {
	xs := []float64{0, 0.5, 1, 1.75, 2, 3}
	ys := []float64{1, -1, 4, 4, 0, 2}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for i := range xs {
		v, err := sp.Eval(xs[i])
		require.NoError(t, err)
		assert.InDelta(t, ys[i], v, 1e-12, "node %d", i)
	}
}

func TestSplineLinearData(t *testing.T) {
	// A natural spline through collinear points reproduces the line exactly.
	xs := linspace(0, 2, 9)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*x - 1
	}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for _, x := range []float64{0, 0.13, 0.5, 1.11, 1.99, 2} {
		v, err := sp.Eval(x)
		require.NoError(t, err)
		assert.InDelta(t, 3*x-1, v, 1e-12)

		d, err := sp.Diff(x)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, d, 1e-12)
	}
}

func TestSplineDecreasingX(t *testing.T) {
	// Ratio curves are often evaluated against a decreasing x axis, so
	// decreasing tables must work without reordering.
	xs := []float64{4, 3, 2, 1, 0}
	ys := []float64{9, 7, 5, 3, 1}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	assert.Equal(t, 0.0, sp.Min())
	assert.Equal(t, 4.0, sp.Max())

	for _, x := range []float64{0, 0.5, 1.5, 3.3, 4} {
		v, err := sp.Eval(x)
		require.NoError(t, err)
		assert.InDelta(t, 2*x+1, v, 1e-12)
	}
}

func TestSplineSmooth(t *testing.T) {
	// A dense sampling of a smooth function should interpolate to within a
	// small tolerance of the function between nodes.
	xs := linspace(0, math.Pi, 50)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Sin(x)
	}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for _, x := range linspace(0.01, math.Pi-0.01, 200) {
		v, err := sp.Eval(x)
		require.NoError(t, err)
		assert.InDelta(t, math.Sin(x), v, 1e-5)
	}
}

func TestSplineOutOfBounds(t *testing.T) {
	sp, err := NewSpline([]float64{0, 1, 2}, []float64{0, 1, 4})
	require.NoError(t, err)

	_, err = sp.Eval(-0.001)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = sp.Eval(2.001)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = sp.Eval(math.NaN())
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// The exact endpoints are in bounds.
	_, err = sp.Eval(0)
	assert.NoError(t, err)
	_, err = sp.Eval(2)
	assert.NoError(t, err)
}

func TestSplineBadTable(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
	}{
		{"length mismatch", []float64{0, 1}, []float64{0}},
		{"too short", []float64{0}, []float64{0}},
		{"not monotonic", []float64{0, 2, 1}, []float64{0, 1, 2}},
		{"duplicate x", []float64{0, 1, 1, 2}, []float64{0, 1, 2, 3}},
		{"non-finite x", []float64{0, math.NaN(), 1}, []float64{0, 1, 2}},
	}
	for _, test := range tests {
		_, err := NewSpline(test.xs, test.ys)
		assert.ErrorIs(t, err, ErrBadTable, test.name)
	}
}

func TestSplineEvalAll(t *testing.T) {
	xs := linspace(0, 1, 5)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2 * x
	}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	out, err := sp.EvalAll([]float64{0, 0.25, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 2}, out, 1e-12)

	_, err = sp.EvalAll([]float64{0, 5})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
