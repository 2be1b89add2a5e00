package lookup

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/gmid/math/interpolate"
	"github.com/phil-mansfield/gmid/table"
)

// Branch selects the monotonic segment of a non-monotonic ratio curve used
// for inversion. Ratio curves like GM/CGG rise to a single peak over VGS and
// fall again, so a side of the peak must be chosen before the curve can be
// inverted.
type Branch int

const (
	// BranchNone uses the whole curve, which must already be monotonic.
	BranchNone Branch = iota
	// BranchLeft restricts the curve to VGS values up to and including the
	// curve's maximum.
	BranchLeft
	// BranchRight restricts the curve to VGS values from the curve's maximum
	// onward.
	BranchRight
)

// VsGmID finds, per (L, VDS, VSB) combination, the VGS at which GM/ID equals
// each target and reports the named quantity there. GM/ID falls with VGS
// past its peak, so inversion runs on the right-of-peak segment: the
// high-efficiency operating region swept in low-power design.
//
// The result tensor is indexed as (L, VDS, VSB, target), squeezed. VGS may
// not be supplied: the full tabulated VGS axis is always the search domain.
func VsGmID(tbl *table.Table, quantity string, targets []float64, q Query) (*Tensor, error) {
	return invertSwept(tbl, quantity, "GM_ID", targets, q, BranchRight)
}

// VsGmCgg is VsGmID with GM/CGG (transit-frequency-like) targets. GM/CGG
// peaks inside the VGS sweep and the left-of-peak side is the useful one.
func VsGmCgg(tbl *table.Table, quantity string, targets []float64, q Query) (*Tensor, error) {
	return invertSwept(tbl, quantity, "GM_CGG", targets, q, BranchLeft)
}

// VsIDW is VsGmID with current-density ID/W targets, which rise
// monotonically with VGS, so no branch restriction is applied.
func VsIDW(tbl *table.Table, quantity string, targets []float64, q Query) (*Tensor, error) {
	return invertSwept(tbl, quantity, "ID_W", targets, q, BranchNone)
}

// InvertRatio is the general form of VsGmID: it inverts the xQuantity-vs-VGS
// curve at each swept (L, VDS, VSB) point and evaluates quantity at the
// recovered VGS values.
func InvertRatio(
	tbl *table.Table, quantity, xQuantity string, targets []float64,
	q Query, branch Branch,
) (*Tensor, error) {
	return invertSwept(tbl, quantity, xQuantity, targets, q, branch)
}

func invertSwept(
	tbl *table.Table, yName, xName string, targets []float64,
	q Query, branch Branch,
) (*Tensor, error) {
	yQty, err := table.ParseQuantity(yName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	xQty, err := table.ParseQuantity(xName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
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
	l, _, vds, vsb, err := q.resolve(tbl)
	if err != nil {
		return nil, err
	}

	out := newTensor(len(l), len(vds), len(vsb), len(targets))
	row := 0
	for _, lv := range l {
		for _, dv := range vds {
			for _, bv := range vsb {
				ys, err := invertAt(tbl, yQty, xQty, targets, dv, bv, lv, branch)
				if err != nil {
					return nil, err
				}
				copy(out.data[row:row+len(targets)], ys)
				row += len(targets)
			}
		}
	}
	return out.Squeeze(), nil
}

// invertAt inverts the xQty-vs-VGS curve at a single fixed (L, VDS, VSB)
// point and reports yQty at the recovered VGS values, one per target.
func invertAt(
	tbl *table.Table, yQty, xQty table.Quantity, targets []float64,
	vds, vsb, l float64, branch Branch,
) ([]float64, error) {
	xCalc, yCalc, err := curves(tbl, yQty, xQty, vds, vsb, l)
	if err != nil {
		return nil, err
	}

	// The physical curve must reach every target somewhere on the sweep.
	if floats.Min(targets) < floats.Min(xCalc) ||
		floats.Max(targets) > floats.Max(xCalc) {

		return nil, fmt.Errorf(
			"%w: %s spans [%g, %g] at L = %g, VDS = %g, VSB = %g",
			ErrUnachievable, xQty, floats.Min(xCalc), floats.Max(xCalc),
			l, vds, vsb,
		)
	}

	xCalc, yCalc, err = restrict(xCalc, yCalc, branch)
	if err != nil {
		return nil, err
	}

	sp, err := interpolate.NewSpline(xCalc, yCalc)
	if err != nil {
		// The selected branch is still not invertible, e.g. a multi-modal
		// curve inverted with BranchNone.
		return nil, fmt.Errorf(
			"%w: %s is not monotonic over the selected branch (%v)",
			ErrInvalidInput, xQty, err,
		)
	}

	out := make([]float64, len(targets))
	for i, target := range targets {
		v, err := sp.Eval(target)
		if errors.Is(err, interpolate.ErrOutOfBounds) {
			// Achievable on the full curve, but not on the selected branch.
			return nil, fmt.Errorf(
				"%w: %s reaches %g only outside the selected branch",
				ErrUnachievable, xQty, target,
			)
		} else if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// curves evaluates the x and y quantities over the full VGS axis at a fixed
// (L, VDS, VSB) point, returning paired VGS-ascending samples.
func curves(
	tbl *table.Table, yQty, xQty table.Quantity, vds, vsb, l float64,
) (xCalc, yCalc []float64, err error) {
	ls, vgs := []float64{l}, tbl.VGS()
	vdss, vsbs := []float64{vds}, []float64{vsb}

	xT, err := evalFull(tbl, xQty, ls, vgs, vdss, vsbs)
	if err != nil {
		return nil, nil, err
	}
	yT, err := evalFull(tbl, yQty, ls, vgs, vdss, vsbs)
	if err != nil {
		return nil, nil, err
	}
	// All axes but VGS are singletons, so the flat data is the curve.
	return xT.data, yT.data, nil
}

// restrict cuts the paired curve down to the requested monotonic branch
// around the maximum of xCalc.
func restrict(xCalc, yCalc []float64, branch Branch) ([]float64, []float64, error) {
	switch branch {
	case BranchNone:
		return xCalc, yCalc, nil
	case BranchLeft:
		peak := floats.MaxIdx(xCalc)
		xCalc, yCalc = xCalc[:peak+1], yCalc[:peak+1]
	case BranchRight:
		peak := floats.MaxIdx(xCalc)
		xCalc, yCalc = xCalc[peak:], yCalc[peak:]
	default:
		return nil, nil, fmt.Errorf("%w: unknown branch %d",
			ErrInvalidInput, branch)
	}
	if len(xCalc) < 2 {
		return nil, nil, fmt.Errorf(
			"%w: branch restriction leaves %d samples; "+
				"the curve has no interior maximum on that side",
			ErrInvalidInput, len(xCalc),
		)
	}
	return xCalc, yCalc, nil
}

func checkTargets(targets []float64) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no target values", ErrInvalidInput)
	}
	for _, v := range targets {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite target %g", ErrInvalidInput, v)
		}
	}
	return nil
}
