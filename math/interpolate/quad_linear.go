package interpolate

import (
	"fmt"
)

// QuadLinear is a multilinear interpolator over a rectilinear grid with four
// axes. A point in the interior of the grid is interpolated from the 16
// surrounding grid nodes.
type QuadLinear struct {
	xs, ys, zs, ws searcher
	vals           []float64
	ny, nz, nw     int
}

// NewQuadLinear creates a multilinear interpolator for the grid spanned by
// the four strictly increasing axes xs, ys, zs, and ws, taking on the values
// given by vals. vals is laid out in row-major order: the value at node
// (i, j, k, m) is vals[((i*len(ys)+j)*len(zs)+k)*len(ws)+m].
//
// Axes of length one are allowed. The corresponding coordinate of every
// evaluation point must then equal the single axis value exactly.
//
// The axes and vals must not be modified throughout the lifetime of the
// interpolator.
func NewQuadLinear(xs, ys, zs, ws, vals []float64) *QuadLinear {
	if len(xs)*len(ys)*len(zs)*len(ws) != len(vals) {
		panic(fmt.Sprintf(
			"len(vals) = %d, but len(xs) = %d, len(ys) = %d, "+
				"len(zs) = %d, and len(ws) = %d",
			len(vals), len(xs), len(ys), len(zs), len(ws),
		))
	}

	q := &QuadLinear{}
	q.xs.init(xs)
	q.ys.init(ys)
	q.zs.init(zs)
	q.ws.init(ws)
	q.ny, q.nz, q.nw = len(ys), len(zs), len(ws)
	q.vals = vals

	return q
}

// Eval returns the interpolated value at (x, y, z, w).
//
// Eval fails with an error wrapping ErrOutOfBounds if the point is outside
// the grid on any axis. There is no extrapolation.
func (q *QuadLinear) Eval(x, y, z, w float64) (float64, error) {
	ix, tx, ok := q.xs.bracket(x)
	if !ok {
		return 0, fmt.Errorf("%w: x = %g outside [%g, %g]",
			ErrOutOfBounds, x, q.xs.min(), q.xs.max())
	}
	iy, ty, ok := q.ys.bracket(y)
	if !ok {
		return 0, fmt.Errorf("%w: y = %g outside [%g, %g]",
			ErrOutOfBounds, y, q.ys.min(), q.ys.max())
	}
	iz, tz, ok := q.zs.bracket(z)
	if !ok {
		return 0, fmt.Errorf("%w: z = %g outside [%g, %g]",
			ErrOutOfBounds, z, q.zs.min(), q.zs.max())
	}
	iw, tw, ok := q.ws.bracket(w)
	if !ok {
		return 0, fmt.Errorf("%w: w = %g outside [%g, %g]",
			ErrOutOfBounds, w, q.ws.min(), q.ws.max())
	}

	// Upper cell corners, clamped so that length-one axes stay in range.
	// Their weights are zero in that case, so the clamp cannot change the
	// result.
	jx, jy, jz, jw := ix+1, iy+1, iz+1, iw+1
	if jx == len(q.xs.xs) {
		jx = ix
	}
	if jy == q.ny {
		jy = iy
	}
	if jz == q.nz {
		jz = iz
	}
	if jw == q.nw {
		jw = iw
	}

	v := 0.0
	for c := 0; c < 16; c++ {
		gx, wx := ix, 1-tx
		if c&1 != 0 {
			gx, wx = jx, tx
		}
		gy, wy := iy, 1-ty
		if c&2 != 0 {
			gy, wy = jy, ty
		}
		gz, wz := iz, 1-tz
		if c&4 != 0 {
			gz, wz = jz, tz
		}
		gw, ww := iw, 1-tw
		if c&8 != 0 {
			gw, ww = jw, tw
		}

		wgt := wx * wy * wz * ww
		if wgt == 0 {
			continue
		}
		v += wgt * q.vals[((gx*q.ny+gy)*q.nz+gz)*q.nw+gw]
	}
	return v, nil
}

// EvalAll evaluates the interpolator at all the points given by the parallel
// slices xs, ys, zs, and ws. If an output array is given, the output is
// written to that array (the array is still returned as a convenience).
//
// If more than one output array is provided, only the first is used.
func (q *QuadLinear) EvalAll(
	xs, ys, zs, ws []float64, out ...[]float64,
) ([]float64, error) {
	if len(xs) != len(ys) || len(xs) != len(zs) || len(xs) != len(ws) {
		panic(fmt.Sprintf(
			"Point slice lengths %d, %d, %d, %d given to EvalAll are unequal.",
			len(xs), len(ys), len(zs), len(ws),
		))
	}
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i := range xs {
		v, err := q.Eval(xs[i], ys[i], zs[i], ws[i])
		if err != nil {
			return nil, err
		}
		out[0][i] = v
	}
	return out[0], nil
}
