package io

import (
	"fmt"
	"math"
	"sort"

	ptable "github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gmid/table"
)

// textCols is the column order of the flat text format: the four sweep
// axes followed by every output variable.
var textCols = append([]string{"L", "VGS", "VDS", "VSB"}, table.OutVars...)

// ReadText imports a device characterization table from a flat text file.
// Each non-comment row holds one grid node as whitespace-separated columns
// in textCols order. Rows may appear in any order, but every node of the
// four-axis outer product must appear exactly once.
func ReadText(path string) (*table.Table, error) {
	colIdxs := make([]int, len(textCols))
	for i := range colIdxs {
		colIdxs[i] = i
	}
	cols, err := ptable.ReadTable(path, colIdxs, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(cols[0]) == 0 {
		return nil, fmt.Errorf("%w: file contains no data rows", ErrFormat)
	}

	l := uniqueSorted(cols[0])
	vgs := uniqueSorted(cols[1])
	vds := uniqueSorted(cols[2])
	vsb := uniqueSorted(cols[3])

	size := len(l) * len(vgs) * len(vds) * len(vsb)
	if len(cols[0]) != size {
		return nil, fmt.Errorf(
			"%w: file has %d rows, but its axes span a grid of %d nodes",
			ErrFormat, len(cols[0]), size,
		)
	}

	data := make(map[string][]float64, len(table.OutVars))
	for _, name := range table.OutVars {
		data[name] = make([]float64, size)
	}
	seen := make([]bool, size)

	for row := 0; row < size; row++ {
		il, ok1 := axisIndex(l, cols[0][row])
		ig, ok2 := axisIndex(vgs, cols[1][row])
		id, ok3 := axisIndex(vds, cols[2][row])
		ib, ok4 := axisIndex(vsb, cols[3][row])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, fmt.Errorf("%w: row %d does not lie on the grid",
				ErrFormat, row)
		}

		idx := ((il*len(vgs)+ig)*len(vds)+id)*len(vsb) + ib
		if seen[idx] {
			return nil, fmt.Errorf(
				"%w: duplicate row for node (L, VGS, VDS, VSB) = "+
					"(%g, %g, %g, %g)",
				ErrFormat, l[il], vgs[ig], vds[id], vsb[ib],
			)
		}
		seen[idx] = true

		for i, name := range table.OutVars {
			data[name][idx] = cols[4+i][row]
		}
	}

	tbl, err := table.New(l, vgs, vds, vsb, data, table.Info{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return tbl, nil
}

func uniqueSorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)

	n := 0
	for i, x := range out {
		if i == 0 || x != out[n-1] {
			out[n] = x
			n++
		}
	}
	return out[:n]
}

// axisIndex finds x in the sorted axis. Axis values come from the same
// parsed floats as the rows themselves, so equality is exact, but a small
// tolerance guards against values which are bitwise distinct yet print the
// same.
func axisIndex(axis []float64, x float64) (int, bool) {
	i := sort.SearchFloat64s(axis, x)
	if i < len(axis) && axis[i] == x {
		return i, true
	}
	for j := i - 1; j <= i; j++ {
		if j >= 0 && j < len(axis) &&
			math.Abs(axis[j]-x) <= 1e-12*math.Max(1, math.Abs(x)) {
			return j, true
		}
	}
	return 0, false
}
