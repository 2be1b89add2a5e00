package interpolate

import (
	"fmt"
)

// searcher locates the grid cell which contains a point on a strictly
// increasing axis.
type searcher struct {
	xs []float64

	// Usually the input data is uniform. This is our estimate of the point
	// spacing, used to guess the cell index before falling back to a binary
	// search.
	x0, dx float64
}

func (s *searcher) init(xs []float64) {
	if len(xs) == 0 {
		panic("Empty axis given to searcher.")
	}
	for i := 0; i < len(xs)-1; i++ {
		if xs[i+1] <= xs[i] {
			panic(fmt.Sprintf(
				"Axis given to searcher not strictly increasing at index %d.", i,
			))
		}
	}

	s.xs = xs
	s.x0 = xs[0]
	if len(xs) > 1 {
		s.dx = (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)
	}
}

func (s *searcher) min() float64 { return s.xs[0] }
func (s *searcher) max() float64 { return s.xs[len(s.xs)-1] }

// bracket returns the index of the cell containing x along with the
// fractional position of x inside that cell. ok is false when x is outside
// the axis range (this includes NaN).
//
// Axes of length one are valid: the only in-bounds x is the single axis
// value, bracketed as cell 0 with fraction 0.
func (s *searcher) bracket(x float64) (i int, t float64, ok bool) {
	n := len(s.xs)
	if !(x >= s.xs[0] && x <= s.xs[n-1]) {
		return 0, 0, false
	}
	if n == 1 {
		return 0, 0, true
	}

	// Guess under the assumption of uniform spacing.
	if g := int((x - s.x0) / s.dx); g >= 0 && g < n-1 &&
		s.xs[g] <= x && x <= s.xs[g+1] {

		i = g
	} else {
		// Binary search.
		lo, hi := 0, n-1
		for hi-lo > 1 {
			mid := (lo + hi) / 2
			if x >= s.xs[mid] {
				lo = mid
			} else {
				hi = mid
			}
		}
		i = lo
	}

	return i, (x - s.xs[i]) / (s.xs[i+1] - s.xs[i]), true
}
