package interpolate

// TriDiagAt solves the system of equations
//
// | b0 c0 ..    |   | out0 |   | r0 |
// | a1 b1 c1 .. |   | out1 |   | r1 |
// | ..          | * | ..   | = | .. |
// | ..    an bn |   | outn |   | rn |
//
// for out0 .. outn in place in the given slice.
func TriDiagAt(as, bs, cs, rs, out []float64) {
	if len(as) != len(bs) || len(as) != len(cs) ||
		len(as) != len(out) || len(as) != len(rs) {

		panic("Lengths of arguments to TriDiagAt are unequal.")
	}

	tmp := make([]float64, len(as))

	beta := bs[0]
	if beta == 0 {
		panic("TriDiagAt cannot solve given system.")
	}
	out[0] = rs[0] / beta

	for i := 1; i < len(out); i++ {
		tmp[i] = cs[i-1] / beta
		beta = bs[i] - as[i]*tmp[i]
		if beta == 0 {
			panic("TriDiagAt cannot solve given system.")
		}
		out[i] = (rs[i] - as[i]*out[i-1]) / beta
	}

	for i := len(out) - 2; i >= 0; i-- {
		out[i] -= tmp[i+1] * out[i+1]
	}
}

// TriDiag solves the same system of equations as TriDiagAt, but returns the
// solution in a newly allocated slice.
func TriDiag(as, bs, cs, rs []float64) []float64 {
	us := make([]float64, len(as))
	TriDiagAt(as, bs, cs, rs, us)
	return us
}
