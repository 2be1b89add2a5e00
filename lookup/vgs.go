package lookup

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/gmid/math/interpolate"
	"github.com/phil-mansfield/gmid/table"
)

// VGSVsGmID recovers, per (L, VDS, VSB) combination, the VGS at which GM/ID
// equals each target. Unlike VsGmID it inverts the (GM/ID, VGS) pairs
// directly with no branch restriction, assuming the full tabulated GM/ID
// curve is already monotonic.
//
// The result tensor is indexed as (L, VDS, VSB, target), squeezed.
func VGSVsGmID(tbl *table.Table, targets []float64, q Query) (*Tensor, error) {
	if q.VGS.isSet() {
		return nil, fmt.Errorf(
			"%w: VGS cannot be supplied to an inverse lookup; "+
				"the full tabulated VGS axis is the search domain",
			ErrInvalidInput,
		)
	}
	if err := checkTargets(targets); err != nil {
		return nil, err
	}
	l, vgs, vds, vsb, err := q.resolve(tbl)
	if err != nil {
		return nil, err
	}
	gmID := table.Quantity{Num: "GM", Den: "ID"}

	out := newTensor(len(l), len(vds), len(vsb), len(targets))
	row := 0
	for _, lv := range l {
		for _, dv := range vds {
			for _, bv := range vsb {
				calc, err := evalFull(tbl, gmID,
					[]float64{lv}, vgs, []float64{dv}, []float64{bv})
				if err != nil {
					return nil, err
				}

				sp, err := interpolate.NewSpline(calc.data, vgs)
				if err != nil {
					return nil, fmt.Errorf(
						"%w: GM_ID is not monotonic over the VGS sweep (%v)",
						ErrInvalidInput, err,
					)
				}
				for i, target := range targets {
					v, err := sp.Eval(target)
					if errors.Is(err, interpolate.ErrOutOfBounds) {
						return nil, fmt.Errorf(
							"%w: GM_ID spans [%g, %g] at L = %g, VDS = %g, "+
								"VSB = %g",
							ErrUnachievable, sp.Min(), sp.Max(), lv, dv, bv,
						)
					} else if err != nil {
						return nil, err
					}
					out.data[row+i] = v
				}
				row += len(targets)
			}
		}
	}
	return out.Squeeze(), nil
}
