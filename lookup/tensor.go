package lookup

import (
	"fmt"
)

// Tensor is a dense result array indexed by the swept lookup axes in
// row-major order. A Tensor of rank zero holds a single scalar.
type Tensor struct {
	shape []int
	data  []float64
}

func newTensor(shape ...int) *Tensor {
	size := 1
	for _, n := range shape {
		size *= n
	}
	return &Tensor{shape: shape, data: make([]float64, size)}
}

// Shape returns the tensor's axis lengths. The returned slice must not be
// modified.
func (t *Tensor) Shape() []int { return t.shape }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Size returns the total number of elements.
func (t *Tensor) Size() int { return len(t.data) }

// Data returns the underlying row-major element slice. The returned slice
// must not be modified.
func (t *Tensor) Data() []float64 { return t.data }

// At returns the element at the given index, which must supply one value per
// axis.
func (t *Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf(
			"%d indices given to At on a rank %d tensor.",
			len(idx), len(t.shape),
		))
	}
	flat := 0
	for i, n := range t.shape {
		if idx[i] < 0 || idx[i] >= n {
			panic(fmt.Sprintf(
				"Index %d out of range for axis %d of length %d.",
				idx[i], i, n,
			))
		}
		flat = flat*n + idx[i]
	}
	return t.data[flat]
}

// Scalar returns the single element of a one-element tensor.
func (t *Tensor) Scalar() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("Scalar called on a tensor with %d elements.",
			len(t.data)))
	}
	return t.data[0]
}

// Vector returns the elements of a tensor of rank one or lower. The returned
// slice must not be modified.
func (t *Tensor) Vector() []float64 {
	if len(t.shape) > 1 {
		panic(fmt.Sprintf("Vector called on a rank %d tensor.", len(t.shape)))
	}
	return t.data
}

// Squeeze returns a tensor sharing t's data with every length-one axis
// removed, so scalar-like lookups collapse to rank zero and single sweeps
// collapse to plain vectors.
func (t *Tensor) Squeeze() *Tensor {
	shape := make([]int, 0, len(t.shape))
	for _, n := range t.shape {
		if n != 1 {
			shape = append(shape, n)
		}
	}
	return &Tensor{shape: shape, data: t.data}
}
