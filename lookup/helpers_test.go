package lookup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gmid/table"
)

type gridFunc func(l, vgs, vds, vsb float64) float64

// buildTable synthesizes a characterization table whose output variables are
// given by analytic functions. Variables without an entry in fns fall back
// to a positive multilinear default, which multilinear interpolation
// reproduces exactly.
func buildTable(
	t *testing.T, l, vgs, vds, vsb []float64, fns map[string]gridFunc,
) *table.Table {
	t.Helper()

	def := func(l, g, d, b float64) float64 { return 1 + l + g + d + b }

	data := map[string][]float64{}
	for _, name := range table.OutVars {
		fn, ok := fns[name]
		if !ok {
			fn = def
		}
		vals := make([]float64, 0, len(l)*len(vgs)*len(vds)*len(vsb))
		for _, lv := range l {
			for _, gv := range vgs {
				for _, dv := range vds {
					for _, bv := range vsb {
						vals = append(vals, fn(lv, gv, dv, bv))
					}
				}
			}
		}
		data[name] = vals
	}

	tbl, err := table.New(l, vgs, vds, vsb, data, table.Info{})
	require.NoError(t, err)
	return tbl
}

func span(lo, hi, step float64) []float64 {
	var xs []float64
	for i := 0; ; i++ {
		x := lo + float64(i)*step
		if x > hi+step/2 {
			break
		}
		xs = append(xs, x)
	}
	return xs
}
