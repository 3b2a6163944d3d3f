// Package sparse implements the triplet (coordinate) sparse matrices used to
// carry conic coefficients. Only the operations the stuffing pipeline needs
// are provided; this is not a general linear algebra library.
package sparse

import "fmt"

// Triplet is a single explicit entry of a sparse matrix.
type Triplet struct {
	Row int
	Col int
	Val float64
}

// Matrix is a real sparse matrix in triplet form. Entries with the same
// coordinates are implicitly summed, as in the usual COO convention.
type Matrix struct {
	rows    int
	cols    int
	entries []Triplet
}

// New returns an all-zero rows×cols matrix.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("sparse: invalid dimensions %dx%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	return ScaledIdentity(n, 1)
}

// ScaledIdentity returns s times the n×n identity matrix.
func ScaledIdentity(n int, s float64) *Matrix {
	m := New(n, n)
	if s == 0 {
		return m
	}
	m.entries = make([]Triplet, 0, n)
	for i := 0; i < n; i++ {
		m.entries = append(m.entries, Triplet{Row: i, Col: i, Val: s})
	}
	return m
}

// FromColumn returns an n×1 matrix holding the given column.
func FromColumn(col []float64) *Matrix {
	m := New(len(col), 1)
	for i, v := range col {
		if v != 0 {
			m.entries = append(m.entries, Triplet{Row: i, Val: v})
		}
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// NNZ returns the number of explicit entries.
func (m *Matrix) NNZ() int { return len(m.entries) }

// IsZero reports whether the matrix has no explicit entries.
func (m *Matrix) IsZero() bool { return len(m.entries) == 0 }

// Set appends an explicit entry. Out-of-range coordinates panic: coefficient
// placement bugs must not silently grow the matrix.
func (m *Matrix) Set(row, col int, val float64) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("sparse: entry (%d,%d) outside %dx%d matrix", row, col, m.rows, m.cols))
	}
	if val == 0 {
		return
	}
	m.entries = append(m.entries, Triplet{Row: row, Col: col, Val: val})
}

// Triplets returns the explicit entries. The slice is shared; callers must
// not mutate it.
func (m *Matrix) Triplets() []Triplet { return m.entries }

// Scale returns s*m as a new matrix.
func (m *Matrix) Scale(s float64) *Matrix {
	out := New(m.rows, m.cols)
	if s == 0 {
		return out
	}
	out.entries = make([]Triplet, len(m.entries))
	for i, e := range m.entries {
		out.entries[i] = Triplet{Row: e.Row, Col: e.Col, Val: e.Val * s}
	}
	return out
}

// Add returns m+other as a new matrix. Shapes must agree.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, fmt.Errorf("sparse: cannot add %dx%d and %dx%d", m.rows, m.cols, other.rows, other.cols)
	}
	out := New(m.rows, m.cols)
	out.entries = make([]Triplet, 0, len(m.entries)+len(other.entries))
	out.entries = append(out.entries, m.entries...)
	out.entries = append(out.entries, other.entries...)
	return out, nil
}

// VStack stacks the given matrices vertically. All must share a column count.
func VStack(mats ...*Matrix) (*Matrix, error) {
	if len(mats) == 0 {
		return New(0, 0), nil
	}
	cols := mats[0].cols
	rows := 0
	for _, m := range mats {
		if m.cols != cols {
			return nil, fmt.Errorf("sparse: vstack column mismatch: %d vs %d", cols, m.cols)
		}
		rows += m.rows
	}
	out := New(rows, cols)
	offset := 0
	for _, m := range mats {
		for _, e := range m.entries {
			out.entries = append(out.entries, Triplet{Row: e.Row + offset, Col: e.Col, Val: e.Val})
		}
		offset += m.rows
	}
	return out, nil
}

// MulVec returns m*x as a dense vector. len(x) must equal Cols().
func (m *Matrix) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.cols {
		return nil, fmt.Errorf("sparse: vector length %d does not match %d columns", len(x), m.cols)
	}
	out := make([]float64, m.rows)
	for _, e := range m.entries {
		out[e.Row] += e.Val * x[e.Col]
	}
	return out, nil
}

// Dense expands the matrix row-major. Intended for tests and small outputs.
func (m *Matrix) Dense() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
	}
	for _, e := range m.entries {
		out[e.Row][e.Col] += e.Val
	}
	return out
}
