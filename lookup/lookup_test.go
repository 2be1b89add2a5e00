package lookup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gmid/math/interpolate"
)

// A single-length table with ID monotonic in VGS. Looking
// up at a grid node returns the tabulated value exactly.
func TestBasicGridNode(t *testing.T) {
	id := func(l, g, d, b float64) float64 { return 1e-3 * g * (1 + d) }
	tbl := buildTable(t,
		[]float64{0.18}, span(0, 1, 0.1), []float64{0, 0.5, 1}, []float64{0, 0.5},
		map[string]gridFunc{"ID": id},
	)

	// Defaults pin L = 0.18, VDS = max/2 = 0.5, VSB = 0, all grid values.
	out, err := Basic(tbl, "ID", Query{VGS: Fixed(0.5)})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Rank())
	assert.InDelta(t, id(0.18, 0.5, 0.5, 0), out.Scalar(), 1e-15)
}

func TestBasicDefaultVGSIsFullAxis(t *testing.T) {
	vgs := span(0, 1, 0.1)
	id := func(l, g, d, b float64) float64 { return 1e-3 * g * (1 + d) }
	tbl := buildTable(t,
		[]float64{0.18}, vgs, []float64{0, 0.5, 1}, []float64{0, 0.5},
		map[string]gridFunc{"ID": id},
	)

	out, err := Basic(tbl, "ID", Query{})
	require.NoError(t, err)

	require.Equal(t, []int{len(vgs)}, out.Shape())
	for i, g := range vgs {
		assert.InDelta(t, id(0.18, g, 0.5, 0), out.At(i), 1e-15, "vgs = %g", g)
	}
}

func TestBasicOuterProduct(t *testing.T) {
	gm := func(l, g, d, b float64) float64 { return 2*g + d + 3*l + b }
	tbl := buildTable(t,
		[]float64{0.18, 0.36}, span(0, 1, 0.1), span(0, 1, 0.25), []float64{0, 0.5},
		map[string]gridFunc{"GM": gm},
	)

	// Sweep order is preserved, not sorted.
	gSweep := []float64{0.7, 0.1, 0.4}
	dSweep := []float64{0.9, 0.3}
	out, err := Basic(tbl, "GM", Query{
		L:   Fixed(0.36),
		VGS: Sweep(gSweep...),
		VDS: Sweep(dSweep...),
		VSB: Fixed(0.25),
	})
	require.NoError(t, err)

	// Every combination of the swept values is evaluated.
	require.Equal(t, []int{3, 2}, out.Shape())
	for i, g := range gSweep {
		for j, d := range dSweep {
			assert.InDelta(t, gm(0.36, g, d, 0.25), out.At(i, j), 1e-12)
		}
	}
}

func TestBasicRatioIsElementwiseQuotient(t *testing.T) {
	tbl := buildTable(t,
		[]float64{0.18, 0.36}, span(0, 1, 0.1), []float64{0, 0.5, 1}, []float64{0, 0.5},
		map[string]gridFunc{
			"GM": func(l, g, d, b float64) float64 { return 1 + g*g + d },
			"ID": func(l, g, d, b float64) float64 { return 2 + g + b },
		},
	)

	q := Query{VGS: Sweep(0.13, 0.5, 0.77), VDS: Sweep(0.2, 0.9)}
	ratio, err := Basic(tbl, "GM_ID", q)
	require.NoError(t, err)
	num, err := Basic(tbl, "GM", q)
	require.NoError(t, err)
	den, err := Basic(tbl, "ID", q)
	require.NoError(t, err)

	require.Equal(t, num.Shape(), ratio.Shape())
	for i := range ratio.Data() {
		assert.InDelta(t, num.Data()[i]/den.Data()[i], ratio.Data()[i], 1e-15)
	}
}

func TestBasicRatioZeroDenominator(t *testing.T) {
	tbl := buildTable(t,
		[]float64{0.18}, span(0, 1, 0.1), []float64{0, 0.5, 1}, []float64{0, 0.5},
		map[string]gridFunc{
			"ID": func(l, g, d, b float64) float64 { return g },
		},
	)

	// ID = 0 at VGS = 0: the quotient follows IEEE-754 semantics rather
	// than failing.
	out, err := Basic(tbl, "GM_ID", Query{VGS: Fixed(0)})
	require.NoError(t, err)
	assert.True(t, math.IsInf(out.Scalar(), 1))
}

func TestBasicOutOfDomain(t *testing.T) {
	tbl := buildTable(t,
		[]float64{0.18}, span(0.1, 1, 0.1), []float64{0, 1}, []float64{0, 0.5},
		nil,
	)

	// Below the smallest simulated VGS: an error, never extrapolation.
	_, err := Basic(tbl, "ID", Query{VGS: Fixed(0.05)})
	assert.ErrorIs(t, err, interpolate.ErrOutOfBounds)

	_, err = Basic(tbl, "ID", Query{L: Fixed(0.5)})
	assert.ErrorIs(t, err, interpolate.ErrOutOfBounds)

	// Axis endpoints are inside the domain.
	_, err = Basic(tbl, "ID", Query{VGS: Fixed(0.1)})
	assert.NoError(t, err)
	_, err = Basic(tbl, "ID", Query{VGS: Fixed(1)})
	assert.NoError(t, err)
}

func TestBasicInvalidInput(t *testing.T) {
	tbl := buildTable(t,
		[]float64{0.18}, span(0, 1, 0.1), []float64{0, 1}, []float64{0, 0.5},
		nil,
	)

	_, err := Basic(tbl, "VDSAT", Query{})
	assert.ErrorIs(t, err, ErrInvalidInput, "unknown quantity")

	_, err = Basic(tbl, "ID", Query{VGS: Sweep()})
	assert.ErrorIs(t, err, ErrInvalidInput, "empty sweep")

	_, err = Basic(tbl, "ID", Query{VDS: Fixed(math.NaN())})
	assert.ErrorIs(t, err, ErrInvalidInput, "NaN input")
}
