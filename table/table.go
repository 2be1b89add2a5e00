/*Package table maintains pre-simulated transistor characterization data on a
regular grid over channel length and the three terminal voltages, and builds
the grid interpolators which the lookup package queries.

A Table is immutable once built and may be shared freely between goroutines.
*/
package table

import (
	"errors"
	"fmt"
	"math"

	"github.com/phil-mansfield/gmid/math/interpolate"
)

var (
	// ErrBadAxis indicates a sweep axis which is empty, non-finite, or not
	// strictly increasing.
	ErrBadAxis = errors.New("table: invalid sweep axis")
	// ErrBadData indicates output variable data which is missing or whose
	// shape does not match the sweep axes.
	ErrBadData = errors.New("table: invalid output variable data")
)

// OutVars lists the tabulated output variables, in canonical order.
var OutVars = []string{
	"W", "ID", "VT", "IGD", "IGS", "GM", "GMB", "GDS",
	"CGG", "CGS", "CGD", "CDG", "CGB", "CDD", "CSS", "STH", "SFL",
}

// InVars lists the swept input variables, in axis order.
var InVars = []string{"L", "VGS", "VDS", "VSB"}

// IsOutVar reports whether name is one of the tabulated output variables.
func IsOutVar(name string) bool {
	for _, v := range OutVars {
		if v == name {
			return true
		}
	}
	return false
}

// Info holds the ancillary fields carried alongside the characterization
// data. They are passed through untouched and never used by lookups.
type Info struct {
	Desc   string
	Corner string
	Temp   float64
	NFing  float64
}

// Table holds the characterization data for a single device: the four sweep
// axes and one grid interpolator per output variable. All output variables
// share the same grid.
type Table struct {
	l, vgs, vds, vsb []float64
	interps          map[string]*interpolate.QuadLinear

	Info Info
}

// New builds a Table from the four sweep axes and the raw output variable
// data. Each axis must be strictly increasing. data must hold a value slice
// for every output variable in OutVars, laid out in row-major
// (L, VGS, VDS, VSB) order; keys outside OutVars are ignored. As a special
// case, W may be a single value or one value per VSB point, which is
// broadcast across the whole grid.
//
// The axes and value slices must not be modified after the call.
func New(l, vgs, vds, vsb []float64, data map[string][]float64, info Info) (*Table, error) {
	axes := [][]float64{l, vgs, vds, vsb}
	for i, axis := range axes {
		if err := checkAxis(InVars[i], axis); err != nil {
			return nil, err
		}
	}
	size := len(l) * len(vgs) * len(vds) * len(vsb)

	t := &Table{
		l: l, vgs: vgs, vds: vds, vsb: vsb,
		interps: make(map[string]*interpolate.QuadLinear, len(OutVars)),
		Info:    info,
	}

	for _, name := range OutVars {
		vals, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing", ErrBadData, name)
		}
		if name == "W" && len(vals) != size &&
			(len(vals) == 1 || len(vals) == len(vsb)) {

			vals = broadcast(vals, size)
		}
		if len(vals) != size {
			return nil, fmt.Errorf(
				"%w: %s has %d values, but the grid has %d nodes",
				ErrBadData, name, len(vals), size,
			)
		}
		t.interps[name] = interpolate.NewQuadLinear(l, vgs, vds, vsb, vals)
	}

	return t, nil
}

// L returns the channel length axis. The returned slice must not be
// modified. The remaining axis accessors behave the same way.
func (t *Table) L() []float64 { return t.l }

// VGS returns the gate-source voltage axis.
func (t *Table) VGS() []float64 { return t.vgs }

// VDS returns the drain-source voltage axis.
func (t *Table) VDS() []float64 { return t.vds }

// VSB returns the source-body voltage axis.
func (t *Table) VSB() []float64 { return t.vsb }

// Interp returns the grid interpolator for the named output variable.
func (t *Table) Interp(name string) (*interpolate.QuadLinear, bool) {
	in, ok := t.interps[name]
	return in, ok
}

func checkAxis(name string, axis []float64) error {
	if len(axis) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrBadAxis, name)
	}
	for i, x := range axis {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s contains non-finite value %g",
				ErrBadAxis, name, x)
		}
		if i > 0 && axis[i-1] >= x {
			return fmt.Errorf("%w: %s not strictly increasing at index %d",
				ErrBadAxis, name, i)
		}
	}
	return nil
}

// broadcast tiles vs across a grid of n nodes. The grid's trailing axis is
// VSB, so tiling a per-VSB vector repeats it at every (L, VGS, VDS) node.
func broadcast(vs []float64, n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = vs[i%len(vs)]
	}
	return vals
}
