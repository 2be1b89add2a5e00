package interpolate

import (
	"fmt"
	"math"
)

// Spline represents a 1D natural cubic spline which can be used to
// interpolate between points.
type Spline struct {
	xs, ys, y2s, sqrs []float64

	incr bool

	// Usually the input data is uniform. This is our estimate of the point
	// spacing.
	dx float64
}

// NewSpline creates a spline based off a table of x and y values. The x
// values must be strictly increasing or strictly decreasing; otherwise an
// error wrapping ErrBadTable is returned.
//
// xs and ys must not be modified throughout the lifetime of the Spline.
func NewSpline(xs, ys []float64) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf(
			"%w: len(xs) = %d but len(ys) = %d", ErrBadTable, len(xs), len(ys),
		)
	} else if len(xs) <= 1 {
		return nil, fmt.Errorf(
			"%w: table of length %d", ErrBadTable, len(xs),
		)
	}
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: non-finite x value %g", ErrBadTable, x)
		}
	}

	sp := new(Spline)

	sp.xs, sp.ys = xs, ys
	sp.y2s = make([]float64, len(xs))
	sp.sqrs = make([]float64, len(xs)-1)

	if xs[0] < xs[1] {
		sp.incr = true
		for i := 0; i < len(xs)-1; i++ {
			if xs[i+1] <= xs[i] {
				return nil, fmt.Errorf(
					"%w: x values not strictly monotonic at index %d",
					ErrBadTable, i+1,
				)
			}
		}
	} else {
		sp.incr = false
		for i := 0; i < len(xs)-1; i++ {
			if xs[i+1] >= xs[i] {
				return nil, fmt.Errorf(
					"%w: x values not strictly monotonic at index %d",
					ErrBadTable, i+1,
				)
			}
		}
	}

	sp.dx = (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)

	sp.secondDerivative()
	for i := range sp.sqrs {
		sp.sqrs[i] = (xs[i+1] - xs[i]) * (xs[i+1] - xs[i])
	}

	return sp, nil
}

// Eval interpolates the table of x and y values given in NewSpline to the
// point x.
//
// x must be within the range of x values given to NewSpline.
func (sp *Spline) Eval(x float64) (float64, error) {
	lo, hi, err := sp.segment(x)
	if err != nil {
		return 0, err
	}

	A := (sp.xs[hi] - x) / (sp.xs[hi] - sp.xs[lo])
	B := 1 - A
	C := (A*A*A - A) * sp.sqrs[lo] / 6
	D := (B*B*B - B) * sp.sqrs[lo] / 6
	return A*sp.ys[lo] + B*sp.ys[hi] + C*sp.y2s[lo] + D*sp.y2s[hi], nil
}

// Diff computes the first derivative of the spline at the point x.
//
// x must be within the range of x values given to NewSpline.
func (sp *Spline) Diff(x float64) (float64, error) {
	lo, hi, err := sp.segment(x)
	if err != nil {
		return 0, err
	}

	h := sp.xs[hi] - sp.xs[lo]
	A := (sp.xs[hi] - x) / h
	B := 1 - A
	return (sp.ys[hi]-sp.ys[lo])/h -
		(3*A*A - 1) / 6 * h * sp.y2s[lo] +
		(3*B*B - 1) / 6 * h * sp.y2s[hi], nil
}

// EvalAll evaluates the spline at all the given x values. If an output array
// is given, the output is written to that array (the array is still returned
// as a convenience).
//
// If more than one output array is provided, only the first is used.
func (sp *Spline) EvalAll(xs []float64, out ...[]float64) ([]float64, error) {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i, x := range xs {
		v, err := sp.Eval(x)
		if err != nil {
			return nil, err
		}
		out[0][i] = v
	}
	return out[0], nil
}

// Min and Max return the bounds of the range the spline may be evaluated
// over.
func (sp *Spline) Min() float64 {
	if sp.incr {
		return sp.xs[0]
	}
	return sp.xs[len(sp.xs)-1]
}

func (sp *Spline) Max() float64 {
	if sp.incr {
		return sp.xs[len(sp.xs)-1]
	}
	return sp.xs[0]
}

// segment returns the indices bracketing x within the table.
func (sp *Spline) segment(x float64) (lo, hi int, err error) {
	in := sp.incr && x >= sp.xs[0] && x <= sp.xs[len(sp.xs)-1] ||
		!sp.incr && x <= sp.xs[0] && x >= sp.xs[len(sp.xs)-1]
	if !in {
		return 0, 0, fmt.Errorf(
			"%w: %g outside [%g, %g]", ErrOutOfBounds, x, sp.Min(), sp.Max(),
		)
	}

	lo = sp.bsearch(x)
	if lo < 0 {
		lo = 0
	}
	hi = lo + 1
	if hi == len(sp.xs) {
		hi = len(sp.xs) - 1
	}
	return lo, hi, nil
}

// bsearch returns the index of the largest element in xs which is smaller
// than x (largest which is bigger, for decreasing tables).
func (sp *Spline) bsearch(x float64) int {
	// Guess under the assumption of uniform spacing.
	guess := int((x - sp.xs[0]) / sp.dx)
	if guess >= 0 && guess < len(sp.xs)-1 &&
		(sp.xs[guess] <= x == sp.incr) &&
		(sp.xs[guess+1] >= x == sp.incr) {

		return guess
	}

	// Binary search.
	lo, hi := 0, len(sp.xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if sp.incr == (x >= sp.xs[mid]) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// secondDerivative computes the second derivative at every point in the
// table given in NewSpline.
func (sp *Spline) secondDerivative() {
	n := len(sp.xs)
	sp.y2s[0], sp.y2s[n-1] = 0, 0
	if n == 2 {
		// Two points pin down a line, not a curve.
		return
	}

	// These arrays do not escape to the heap.
	as, bs := make([]float64, n-2), make([]float64, n-2)
	cs, rs := make([]float64, n-2), make([]float64, n-2)

	// Solve for everything but the boundaries. The boundaries were set to
	// zero above. Better yet, they could be set to something computed via
	// finite differences.
	xs, ys := sp.xs, sp.ys
	for i := range rs {
		// j indexes into xs and ys.
		j := i + 1

		as[i] = (xs[j] - xs[j-1]) / 6
		bs[i] = (xs[j+1] - xs[j-1]) / 3
		cs[i] = (xs[j+1] - xs[j]) / 6
		rs[i] = ((ys[j+1] - ys[j]) / (xs[j+1] - xs[j])) -
			((ys[j] - ys[j-1]) / (xs[j] - xs[j-1]))
	}

	TriDiagAt(as, bs, cs, rs, sp.y2s[1:n-1])
}
