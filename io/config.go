package io

import (
	"strconv"
	"strings"
)

const (
	ExampleLookupFile = `[Lookup]

#######################
# Required Parameters #
#######################

# Path to the characterization table. MAT-files written by the Matlab/HSPICE
# characterization scripts and the flat text format are both supported, and
# the format is guessed from the file extension (.mat -> MAT). Set Format
# explicitly if the guess is wrong.
Table = path/to/nch.mat

# The quantity to evaluate. This is either a single tabulated variable,
# [ W | ID | VT | IGD | IGS | GM | GMB | GDS |
#   CGG | CGS | CGD | CDG | CGB | CDD | CSS | STH | SFL ]
# or a ratio of two of them written NUM_DEN, e.g. GM_ID or GM_CGG.
Quantity = GM_ID

#######################
# Optional Parameters #
#######################

# Format must be one of [ MAT | Text ].
# Format = MAT

# Sweep points for each axis, as space-separated voltages (or gate lengths,
# for L). An axis left unset falls back to its default: the full VGS axis,
# the minimum tabulated L, half the maximum tabulated VDS, and VSB = 0.
# VGS = 0.4 0.5 0.6
# VDS = 0.6
# VSB = 0
# L = 0.18

# When Targets is set the lookup runs in reverse: Quantity must be a ratio,
# and for each target the tool reports the value of Solve at the gate bias
# where the ratio crosses the target. Solve defaults to VGS; set it to a
# second quantity (e.g. ID_W) to read that quantity off at the crossing
# instead. VGS must be left unset in this mode.
# Targets = 5 10 15
# Solve = ID_W

# Branch selects which side of the ratio's peak is searched when inverting.
# Must be one of [ Auto | None | Left | Right ]. Auto picks the conventional
# branch for the known ratios (right of the peak for GM_ID, left for GM_CGG,
# the full monotonic curve for ID_W).
# Branch = Auto

# Write results to a file instead of stdout.
# Output = path/to/results.txt`
)

// LookupConfig is the body of a [Lookup] section. The sweep axes and
// targets are kept as strings because gcfg has no list syntax; Floats
// parses them.
type LookupConfig struct {
	// Required
	Table    string
	Quantity string

	// Optional
	Format  string
	VGS     string
	VDS     string
	VSB     string
	L       string
	Targets string
	Solve   string
	Branch  string
	Output  string
}

type LookupWrapper struct {
	Lookup LookupConfig
}

func DefaultLookupWrapper() *LookupWrapper {
	con := LookupConfig{}
	con.Branch = "Auto"
	return &LookupWrapper{con}
}

func (con *LookupConfig) ValidTable() bool {
	return con.Table != ""
}
func (con *LookupConfig) ValidQuantity() bool {
	return con.Quantity != ""
}
func (con *LookupConfig) ValidFormat() bool {
	switch strings.ToLower(con.Format) {
	case "", "mat", "text":
		return true
	}
	return false
}
func (con *LookupConfig) ValidBranch() bool {
	switch strings.ToLower(con.Branch) {
	case "", "auto", "none", "left", "right":
		return true
	}
	return false
}
func (con *LookupConfig) ValidOutput() bool {
	return con.Output != ""
}

// MATFormat reports whether the table should be read as a MAT-file, either
// because Format says so or because the file name ends in .mat.
func (con *LookupConfig) MATFormat() bool {
	if con.Format != "" {
		return strings.EqualFold(con.Format, "MAT")
	}
	return strings.HasSuffix(strings.ToLower(con.Table), ".mat")
}

// Floats parses a space-separated list field. An empty field parses to a
// nil slice, which the lookup layer reads as "use the default".
func Floats(field string) ([]float64, error) {
	toks := strings.Fields(field)
	if len(toks) == 0 {
		return nil, nil
	}
	out := make([]float64, len(toks))
	for i, tok := range toks {
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
