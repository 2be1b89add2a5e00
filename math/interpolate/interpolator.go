/*Package interpolate implements the interpolators used for device table
lookups: a 1D cubic spline and a multilinear interpolator over a rectilinear
grid with four axes.

None of the interpolators extrapolate. Evaluating outside the range spanned
by the input points fails with ErrOutOfBounds.
*/
package interpolate

import (
	"errors"
)

// ErrOutOfBounds indicates an evaluation point outside the range spanned by
// the interpolator's input points.
var ErrOutOfBounds = errors.New("interpolate: point outside interpolation bounds")

// ErrBadTable indicates an input table which no interpolator can be built
// from, e.g. one whose x values are not strictly monotonic.
var ErrBadTable = errors.New("interpolate: invalid interpolation table")

// Interpolator is a 1D interpolator.
type Interpolator interface {
	// Eval evaluates the interpolator at x.
	Eval(x float64) (float64, error)
	// EvalAll evaluates a sequence of values and returns the result. An
	// optional output array can be supplied to prevent unneeded heap
	// allocations.
	EvalAll(xs []float64, out ...[]float64) ([]float64, error)
}

var (
	_ Interpolator = &Spline{}
)

// QuadInterpolator is a 4D interpolator.
type QuadInterpolator interface {
	// Eval evaluates the interpolator at a point.
	Eval(x, y, z, w float64) (float64, error)
	// EvalAll evaluates a sequence of points given as parallel slices and
	// returns the result. An optional output array can be supplied to
	// prevent unneeded heap allocations.
	EvalAll(xs, ys, zs, ws []float64, out ...[]float64) ([]float64, error)
}

var (
	_ QuadInterpolator = &QuadLinear{}
)
