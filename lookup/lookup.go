/*Package lookup implements gm/Id-style queries against a device
characterization table: forward interpolation of tabulated quantities and
their ratios over arbitrary sweeps, and inverse lookups which recover the
bias achieving a target ratio.

All operations are pure functions over an immutable table.Table, so a single
table may serve any number of concurrent lookups.
*/
package lookup

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/gmid/table"
)

var (
	// ErrInvalidInput indicates a malformed query: an empty or non-finite
	// sweep, an unknown quantity name, or a branch restriction that leaves
	// nothing to invert over.
	ErrInvalidInput = errors.New("lookup: invalid input")
	// ErrUnachievable indicates an inversion target outside the range the
	// ratio curve reaches anywhere on the tabulated VGS sweep.
	ErrUnachievable = errors.New("lookup: target not achievable over VGS sweep")
)

// Basic evaluates the named quantity at every combination of the swept axis
// values and returns the resulting tensor with all length-one axes squeezed
// away. The full result is indexed as (L, VGS, VDS, VSB).
//
// A name of the form "NUM_DEN" evaluates the two named quantities and
// divides them elementwise. Division follows IEEE-754 semantics: a zero
// denominator yields an infinity or NaN rather than an error.
//
// Querying outside the tabulated grid on any axis fails with an error
// wrapping interpolate.ErrOutOfBounds.
func Basic(tbl *table.Table, quantity string, q Query) (*Tensor, error) {
	qty, err := table.ParseQuantity(quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ls, vgss, vdss, vsbs, err := q.resolve(tbl)
	if err != nil {
		return nil, err
	}
	out, err := evalFull(tbl, qty, ls, vgss, vdss, vsbs)
	if err != nil {
		return nil, err
	}
	return out.Squeeze(), nil
}

// evalFull evaluates qty over the outer product of the four (already
// normalized) sweeps and returns the dense rank-4 result.
func evalFull(
	tbl *table.Table, qty table.Quantity, l, vgs, vds, vsb []float64,
) (*Tensor, error) {
	out := newTensor(len(l), len(vgs), len(vds), len(vsb))

	if err := evalVar(tbl, qty.Num, l, vgs, vds, vsb, out.data); err != nil {
		return nil, err
	}
	if qty.IsRatio() {
		den := make([]float64, len(out.data))
		if err := evalVar(tbl, qty.Den, l, vgs, vds, vsb, den); err != nil {
			return nil, err
		}
		for i := range out.data {
			out.data[i] /= den[i]
		}
	}
	return out, nil
}

// evalVar evaluates a single tabulated variable at every combination of the
// sweeps, writing results to out in row-major order. Every combination is
// evaluated, not just a diagonal zip.
func evalVar(
	tbl *table.Table, name string, l, vgs, vds, vsb []float64, out []float64,
) error {
	in, ok := tbl.Interp(name)
	if !ok {
		return fmt.Errorf("%w: no tabulated variable %q", ErrInvalidInput, name)
	}

	idx := 0
	for _, lv := range l {
		for _, gv := range vgs {
			for _, dv := range vds {
				for _, bv := range vsb {
					v, err := in.Eval(lv, gv, dv, bv)
					if err != nil {
						return err
					}
					out[idx] = v
					idx++
				}
			}
		}
	}
	return nil
}
