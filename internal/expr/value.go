package expr

import "fmt"

// Value is a dense numeric matrix stored column-major. Complex storage covers
// both element types; real nodes simply never hold a non-zero imaginary part.
type Value struct {
	shape Shape
	data  []complex128 // column-major, len == shape.Len()
}

// NewValue builds a value from column-major data.
func NewValue(shape Shape, data []complex128) (*Value, error) {
	if len(data) != shape.Len() {
		return nil, NewShapeMismatchError(shape, Shape{Rows: len(data), Cols: 1})
	}
	out := make([]complex128, len(data))
	copy(out, data)
	return &Value{shape: shape, data: out}, nil
}

// Convert coerces supported Go values into a *Value, inferring the shape:
// scalars become 1x1, one-dimensional sequences become column vectors, and
// two-dimensional data keeps its row/column extent.
func Convert(v any) (*Value, error) {
	switch x := v.(type) {
	case *Value:
		return x, nil
	case float64:
		return &Value{shape: Scalar, data: []complex128{complex(x, 0)}}, nil
	case int:
		return &Value{shape: Scalar, data: []complex128{complex(float64(x), 0)}}, nil
	case complex128:
		return &Value{shape: Scalar, data: []complex128{x}}, nil
	case []float64:
		data := make([]complex128, len(x))
		for i, f := range x {
			data[i] = complex(f, 0)
		}
		return &Value{shape: Shape{Rows: len(x), Cols: 1}, data: data}, nil
	case []complex128:
		data := make([]complex128, len(x))
		copy(data, x)
		return &Value{shape: Shape{Rows: len(x), Cols: 1}, data: data}, nil
	case [][]float64:
		return convertRows(x, func(f float64) complex128 { return complex(f, 0) })
	case [][]complex128:
		return convertRows(x, func(c complex128) complex128 { return c })
	default:
		return nil, NewTypeConversionError(fmt.Sprintf("unsupported value type %T", v))
	}
}

func convertRows[T any](rows [][]T, lift func(T) complex128) (*Value, error) {
	if len(rows) == 0 {
		return nil, NewTypeConversionError("empty matrix")
	}
	cols := len(rows[0])
	data := make([]complex128, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, NewTypeConversionError("ragged matrix rows")
		}
		for j, v := range row {
			data[j*len(rows)+i] = lift(v)
		}
	}
	return &Value{shape: Shape{Rows: len(rows), Cols: cols}, data: data}, nil
}

func (v *Value) Shape() Shape { return v.shape }
func (v *Value) Rows() int    { return v.shape.Rows }
func (v *Value) Cols() int    { return v.shape.Cols }

// At returns the element at (row, col).
func (v *Value) At(row, col int) complex128 {
	return v.data[col*v.shape.Rows+row]
}

// IsReal reports whether every element has a zero imaginary part.
func (v *Value) IsReal() bool {
	for _, c := range v.data {
		if imag(c) != 0 {
			return false
		}
	}
	return true
}

// ColumnMajor returns a copy of the flattened column-major data.
func (v *Value) ColumnMajor() []complex128 {
	out := make([]complex128, len(v.data))
	copy(out, v.data)
	return out
}

// FlattenRe returns the real parts of the column-major flattening.
func (v *Value) FlattenRe() []float64 {
	out := make([]float64, len(v.data))
	for i, c := range v.data {
		out[i] = real(c)
	}
	return out
}

// FlattenIm returns the imaginary parts of the column-major flattening.
func (v *Value) FlattenIm() []float64 {
	out := make([]float64, len(v.data))
	for i, c := range v.data {
		out[i] = imag(c)
	}
	return out
}

// Equal reports element-wise equality of shape and data.
func (v *Value) Equal(other *Value) bool {
	if v.shape != other.shape {
		return false
	}
	for i := range v.data {
		if v.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
