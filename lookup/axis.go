package lookup

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/gmid/table"
)

// Axis is an optional sweep over one of the lookup inputs. The zero Axis
// requests the table-derived default for whichever input it is used as:
// the smallest tabulated L, the full tabulated VGS axis, half the largest
// tabulated VDS, and VSB = 0.
type Axis struct {
	vals []float64
}

// Fixed returns an Axis holding the single value v.
func Fixed(v float64) Axis {
	return Axis{vals: []float64{v}}
}

// Sweep returns an Axis sweeping over the given values in order. The values
// do not need to be sorted.
func Sweep(vals ...float64) Axis {
	out := make([]float64, len(vals))
	copy(out, vals)
	return Axis{vals: out}
}

func (a Axis) isSet() bool { return a.vals != nil }

// resolve normalizes a to a non-empty slice of finite values, substituting
// def when a is the zero Axis. Every axis on every entry point goes through
// this same normalization.
func (a Axis) resolve(name string, def []float64) ([]float64, error) {
	if !a.isSet() {
		return def, nil
	}
	if len(a.vals) == 0 {
		return nil, fmt.Errorf("%w: empty %s sweep", ErrInvalidInput, name)
	}
	for _, v := range a.vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite %s value %g",
				ErrInvalidInput, name, v)
		}
	}
	return a.vals, nil
}

// Query bundles the four optional sweep axes accepted by every lookup entry
// point. Leave an axis as its zero value to use the table default.
type Query struct {
	VGS, VDS, VSB, L Axis
}

// resolve normalizes all four axes against tbl's defaults.
func (q Query) resolve(tbl *table.Table) (l, vgs, vds, vsb []float64, err error) {
	if l, err = q.L.resolve("L", []float64{floats.Min(tbl.L())}); err != nil {
		return nil, nil, nil, nil, err
	}
	if vgs, err = q.VGS.resolve("VGS", tbl.VGS()); err != nil {
		return nil, nil, nil, nil, err
	}
	if vds, err = q.VDS.resolve("VDS", []float64{floats.Max(tbl.VDS()) / 2}); err != nil {
		return nil, nil, nil, nil, err
	}
	if vsb, err = q.VSB.resolve("VSB", []float64{0}); err != nil {
		return nil, nil, nil, nil, err
	}
	return l, vgs, vds, vsb, nil
}
