package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownQuantity indicates a quantity name which does not follow the
// "VAR" or "NUM_DEN" naming convention, or which references an output
// variable that is not in the table.
var ErrUnknownQuantity = errors.New("table: unknown quantity")

// Quantity names either a single tabulated output variable or the
// elementwise ratio of two of them. The zero Den marks a simple quantity.
type Quantity struct {
	Num, Den string
}

// IsRatio reports whether q denotes a ratio of two output variables.
func (q Quantity) IsRatio() bool { return q.Den != "" }

func (q Quantity) String() string {
	if q.IsRatio() {
		return q.Num + "_" + q.Den
	}
	return q.Num
}

// ParseQuantity parses a quantity name. A name containing an underscore
// denotes a ratio: "GM_ID" is GM divided by ID. Both halves (or the whole
// name, for a simple quantity) must be tabulated output variables.
func ParseQuantity(name string) (Quantity, error) {
	parts := strings.Split(name, "_")
	switch len(parts) {
	case 1:
		if !IsOutVar(parts[0]) {
			return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownQuantity, name)
		}
		return Quantity{Num: parts[0]}, nil
	case 2:
		if !IsOutVar(parts[0]) || !IsOutVar(parts[1]) {
			return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownQuantity, name)
		}
		return Quantity{Num: parts[0], Den: parts[1]}, nil
	default:
		return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownQuantity, name)
	}
}
