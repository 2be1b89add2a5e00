package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gmid/io"
	"github.com/phil-mansfield/gmid/lookup"
	"github.com/phil-mansfield/gmid/table"
)

func main() {
	// The main function manages input sanitization and hands off to the
	// secondary main function for each mode. The code tries to fail with a
	// descriptive message whenever the user provides incorrect input.

	var (
		lookupStr     string
		exampleConfig string
	)
	vars := map[string]*string{
		"Lookup":        &lookupStr,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&lookupStr, "Lookup", "",
		"Configuration file for [Lookup] mode.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. 'Lookup' is the only accepted argument.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Lookup":
		wrap := io.DefaultLookupWrapper()
		err := gcfg.ReadFileInto(wrap, lookupStr)
		if err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Lookup

		if !con.ValidTable() {
			log.Fatal("Invalid/non-existent 'Table' value.")
		} else if !con.ValidQuantity() {
			log.Fatal("Invalid/non-existent 'Quantity' value.")
		} else if !con.ValidFormat() {
			log.Fatal("Invalid 'Format' value. Must be 'MAT' or 'Text'.")
		} else if !con.ValidBranch() {
			log.Fatal("Invalid 'Branch' value. Must be one of " +
				"'Auto', 'None', 'Left', and 'Right'.")
		}

		lookupMain(con)

	case "ExampleConfig":
		switch exampleConfig {
		case "Lookup":
			fmt.Println(io.ExampleLookupFile)
		default:
			log.Fatal("Unrecognized 'ExampleConfig' argument. 'Lookup' is " +
				"the only recognized argument.")
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive
// error if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gmid only accepts one "+
				"flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func lookupMain(con *io.LookupConfig) {
	var (
		tbl *table.Table
		err error
	)
	if con.MATFormat() {
		tbl, err = io.ReadMAT(con.Table)
	} else {
		tbl, err = io.ReadText(con.Table)
	}
	if err != nil {
		log.Fatal(err.Error())
	}

	q, err := configQuery(con)
	if err != nil {
		log.Fatal(err.Error())
	}
	targets, err := io.Floats(con.Targets)
	if err != nil {
		log.Fatalf("Invalid 'Targets' value: %s", err.Error())
	}

	var res *lookup.Tensor
	switch {
	case targets == nil:
		res, err = lookup.Basic(tbl, con.Quantity, q)
	case con.Solve == "" || strings.EqualFold(con.Solve, "VGS"):
		if !strings.EqualFold(con.Quantity, "GM_ID") {
			log.Fatal("Solving for VGS is only supported with " +
				"Quantity = GM_ID.")
		}
		res, err = lookup.VGSVsGmID(tbl, targets, q)
	default:
		branch, ok := configBranch(con)
		if !ok {
			log.Fatalf("No conventional branch is known for %q: set "+
				"'Branch' explicitly.", con.Quantity)
		}
		res, err = lookup.InvertRatio(
			tbl, con.Solve, con.Quantity, targets, q, branch)
	}
	if err != nil {
		log.Fatal(err.Error())
	}

	out := os.Stdout
	if con.ValidOutput() {
		out, err = os.Create(con.Output)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer out.Close()
	}
	printTensor(out, res)
}

func configQuery(con *io.LookupConfig) (lookup.Query, error) {
	q := lookup.Query{}

	axes := []struct {
		name, field string
		dst         *lookup.Axis
	}{
		{"VGS", con.VGS, &q.VGS},
		{"VDS", con.VDS, &q.VDS},
		{"VSB", con.VSB, &q.VSB},
		{"L", con.L, &q.L},
	}
	for _, ax := range axes {
		vals, err := io.Floats(ax.field)
		if err != nil {
			return q, fmt.Errorf("Invalid '%s' value: %s", ax.name, err.Error())
		}
		if vals != nil {
			*ax.dst = lookup.Sweep(vals...)
		}
	}
	return q, nil
}

// configBranch maps the Branch field to a lookup.Branch. Auto resolves to
// the conventional branch of the known ratios and reports !ok otherwise.
func configBranch(con *io.LookupConfig) (lookup.Branch, bool) {
	switch strings.ToLower(con.Branch) {
	case "none":
		return lookup.BranchNone, true
	case "left":
		return lookup.BranchLeft, true
	case "right":
		return lookup.BranchRight, true
	}

	switch strings.ToUpper(con.Quantity) {
	case "GM_ID":
		return lookup.BranchRight, true
	case "GM_CGG":
		return lookup.BranchLeft, true
	case "ID_W":
		return lookup.BranchNone, true
	}
	return lookup.BranchNone, false
}

// printTensor writes a squeezed result tensor: scalars as a bare value,
// vectors one value per line, and higher ranks as an explicit index
// alongside each value.
func printTensor(out *os.File, res *lookup.Tensor) {
	switch res.Rank() {
	case 0:
		fmt.Fprintf(out, "%g\n", res.Scalar())
	case 1:
		for _, v := range res.Data() {
			fmt.Fprintf(out, "%g\n", v)
		}
	default:
		idx := make([]int, res.Rank())
		for _, v := range res.Data() {
			strIdx := make([]string, len(idx))
			for i, j := range idx {
				strIdx[i] = fmt.Sprint(j)
			}
			fmt.Fprintf(out, "(%s) %g\n", strings.Join(strIdx, ", "), v)

			for i := len(idx) - 1; i >= 0; i-- {
				idx[i]++
				if idx[i] < res.Shape()[i] {
					break
				}
				idx[i] = 0
			}
		}
	}
}
