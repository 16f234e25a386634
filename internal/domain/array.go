package domain

import "fmt"

// Array is an immutable dense numeric array of arbitrary rank. A zero-rank
// Array is a scalar. It is the unit of data flowing through the sun-angle
// pipeline: inputs are never mutated, every transformation allocates a new
// Array.
//
// Broadcasting is deliberately strict: two Arrays are compatible only when
// their shapes are identical or when at least one of them is a scalar.
// There is no ragged or per-axis broadcasting.
type Array struct {
	shape []int
	data  []float64
}

// Scalar wraps a single value as a rank-zero Array.
func Scalar(v float64) Array {
	return Array{shape: nil, data: []float64{v}}
}

// Vector wraps a slice as a rank-one Array. The slice is copied.
func Vector(values []float64) Array {
	data := make([]float64, len(values))
	copy(data, values)
	return Array{shape: []int{len(values)}, data: data}
}

// NewArray builds an Array with the given shape from row-major data.
func NewArray(shape []int, data []float64) (Array, error) {
	n := 1
	for _, dim := range shape {
		if dim <= 0 {
			return Array{}, fmt.Errorf("invalid array shape %v: dimensions must be positive", shape)
		}
		n *= dim
	}
	if len(data) != n {
		return Array{}, fmt.Errorf("array shape %v requires %d elements, got %d", shape, n, len(data))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	d := make([]float64, len(data))
	copy(d, data)
	return Array{shape: s, data: d}, nil
}

// IsScalar reports whether the Array holds a single rank-zero value.
func (a Array) IsScalar() bool {
	return len(a.shape) == 0
}

// Len returns the total number of elements.
func (a Array) Len() int {
	return len(a.data)
}

// Shape returns a copy of the array's dimensions. Scalars return nil.
func (a Array) Shape() []int {
	if a.shape == nil {
		return nil
	}
	s := make([]int, len(a.shape))
	copy(s, a.shape)
	return s
}

// Values returns a copy of the underlying row-major data.
func (a Array) Values() []float64 {
	d := make([]float64, len(a.data))
	copy(d, a.data)
	return d
}

// At returns the i-th element in row-major order.
func (a Array) At(i int) float64 {
	return a.data[i]
}

// sameShape reports whether two arrays have identical shapes.
func sameShape(a, b Array) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// expandTo returns a copy of a scalar spread across the given shape.
func (a Array) expandTo(shape []int, size int) Array {
	data := make([]float64, size)
	v := a.data[0]
	for i := range data {
		data[i] = v
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return Array{shape: s, data: data}
}

// Broadcast reconciles two arrays to a common shape. At most one of the two
// may be non-scalar; identical shapes pass through untouched. Anything else
// is a shape conflict.
func Broadcast(a, b Array) (Array, Array, error) {
	switch {
	case sameShape(a, b):
		return a, b, nil
	case a.IsScalar():
		return a.expandTo(b.shape, len(b.data)), b, nil
	case b.IsScalar():
		return a, b.expandTo(a.shape, len(a.data)), nil
	default:
		return Array{}, Array{}, fmt.Errorf("incompatible array shapes %v and %v", a.shape, b.shape)
	}
}

// conformTo expands a scalar to the target shape, or verifies that the
// array already has exactly that shape. Used for the parameters that are
// not allowed to partially broadcast against the observer grid.
func (a Array) conformTo(shape []int, size int) (Array, bool) {
	if a.IsScalar() {
		return a.expandTo(shape, size), true
	}
	if len(a.shape) != len(shape) {
		return Array{}, false
	}
	for i := range shape {
		if a.shape[i] != shape[i] {
			return Array{}, false
		}
	}
	return a, true
}

// mapUnary applies f elementwise, producing a new Array of the same shape.
func (a Array) mapUnary(f func(float64) float64) Array {
	data := make([]float64, len(a.data))
	for i, v := range a.data {
		data[i] = f(v)
	}
	return Array{shape: a.shape, data: data}
}
