package expr

import (
	"testing"
)

func TestConvertShapes(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		rows  int
		cols  int
		fails bool
	}{
		{name: "float scalar", in: 2.5, rows: 1, cols: 1},
		{name: "int scalar", in: 4, rows: 1, cols: 1},
		{name: "complex scalar", in: complex(1, 1), rows: 1, cols: 1},
		{name: "float column", in: []float64{1, 2, 3}, rows: 3, cols: 1},
		{name: "complex column", in: []complex128{1, 2}, rows: 2, cols: 1},
		{name: "matrix", in: [][]float64{{1, 2, 3}, {4, 5, 6}}, rows: 2, cols: 3},
		{name: "ragged matrix", in: [][]float64{{1, 2}, {3}}, fails: true},
		{name: "unsupported type", in: "nope", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Convert(tt.in)
			if tt.fails {
				if err == nil {
					t.Fatalf("Convert(%v) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if v.Rows() != tt.rows || v.Cols() != tt.cols {
				t.Errorf("shape = %s, want %dx%d", v.Shape(), tt.rows, tt.cols)
			}
		})
	}
}

func TestConvertColumnMajorLayout(t *testing.T) {
	v, err := Convert([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	// [[1 2] [3 4]] column-major is 1 3 2 4.
	got := v.ColumnMajor()
	want := []complex128{1, 3, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column-major = %v, want %v", got, want)
		}
	}
	if v.At(0, 1) != 2 || v.At(1, 0) != 3 {
		t.Errorf("At() disagrees with row-major input")
	}
}

func TestFlattenParts(t *testing.T) {
	v, err := Convert([]complex128{complex(1, -1), complex(0, 2)})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	re, im := v.FlattenRe(), v.FlattenIm()
	if re[0] != 1 || re[1] != 0 {
		t.Errorf("FlattenRe = %v", re)
	}
	if im[0] != -1 || im[1] != 2 {
		t.Errorf("FlattenIm = %v", im)
	}
	if v.IsReal() {
		t.Errorf("IsReal = true for complex data")
	}
}

func TestNewValueLengthCheck(t *testing.T) {
	if _, err := NewValue(Shape{Rows: 2, Cols: 2}, []complex128{1, 2, 3}); err == nil {
		t.Errorf("NewValue with short data should fail")
	}
	v, err := NewValue(Shape{Rows: 2, Cols: 1}, []complex128{1, 2})
	if err != nil {
		t.Fatalf("NewValue failed: %v", err)
	}
	if !v.Equal(v) {
		t.Errorf("value should equal itself")
	}
}
