package expr

import (
	"errors"
	"testing"

	"github.com/cvxgo/cvxgo/internal/vexity"
)

func TestVariableConstruction(t *testing.T) {
	a := NewArena()
	x := NewVariable(a, Shape{Rows: 3, Cols: 1}, vexity.NoSign, vexity.Continuous)
	y := NewVariable(a, Scalar, vexity.Positive, vexity.Integer)

	if x.ID() == y.ID() {
		t.Fatalf("two variables share identity %d", x.ID())
	}
	if x.ID() == ConstantID || y.ID() == ConstantID {
		t.Errorf("arena assigned the reserved constant identity")
	}
	if x.Vexity() != vexity.Affine {
		t.Errorf("fresh variable curvature = %s, want affine", x.Vexity())
	}
	if _, ok := x.Value(); ok {
		t.Errorf("fresh variable should have no value")
	}
	if y.Kind() != vexity.Integer {
		t.Errorf("kind = %s, want integer", y.Kind())
	}
	if got, ok := a.Node(x.ID()); !ok || got != Node(x) {
		t.Errorf("arena lookup did not return the registered variable")
	}

	if x.SignConstraint() != nil {
		t.Errorf("unsigned variable should carry no sign constraint")
	}
	if sc := y.SignConstraint(); sc == nil || sc.Cone() != ConeNonNegative {
		t.Errorf("positive variable should carry a nonneg sign constraint")
	}
}

func TestSetValueShapeInvariant(t *testing.T) {
	tests := []struct {
		name      string
		shape     Shape
		value     any
		wantErr   bool
		wantShape Shape
	}{
		{name: "scalar from float", shape: Scalar, value: 5.0, wantShape: Scalar},
		{name: "scalar from int", shape: Scalar, value: 3, wantShape: Scalar},
		{name: "column from slice", shape: Shape{Rows: 3, Cols: 1}, value: []float64{1, 2, 3}, wantShape: Shape{Rows: 3, Cols: 1}},
		{name: "column length mismatch", shape: Shape{Rows: 3, Cols: 1}, value: []float64{1, 2}, wantErr: true},
		{name: "scalar from slice", shape: Scalar, value: []float64{1, 2}, wantErr: true},
		{name: "matrix", shape: Shape{Rows: 2, Cols: 2}, value: [][]float64{{1, 2}, {3, 4}}, wantShape: Shape{Rows: 2, Cols: 2}},
		{name: "matrix shape mismatch", shape: Shape{Rows: 2, Cols: 2}, value: [][]float64{{1, 2, 3}, {4, 5, 6}}, wantErr: true},
		{name: "row variable rejects flat slice", shape: Shape{Rows: 1, Cols: 3}, value: []float64{1, 2, 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena()
			x := NewVariable(a, tt.shape, vexity.NoSign, vexity.Continuous)
			err := x.SetValue(tt.value)
			if tt.wantErr {
				var shapeErr *ShapeMismatchError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("SetValue error = %v, want ShapeMismatchError", err)
				}
				if _, ok := x.Value(); ok {
					t.Errorf("value should be unchanged after failed SetValue")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetValue failed: %v", err)
			}
			v, ok := x.Value()
			if !ok {
				t.Fatalf("value missing after successful SetValue")
			}
			if v.Shape() != tt.wantShape {
				t.Errorf("stored shape = %s, want %s", v.Shape(), tt.wantShape)
			}
		})
	}
}

func TestSetValueFailureKeepsOldValue(t *testing.T) {
	a := NewArena()
	x := NewVariable(a, Scalar, vexity.NoSign, vexity.Continuous)
	if err := x.SetValue(1.5); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := x.SetValue([]float64{1, 2}); err == nil {
		t.Fatalf("mismatched SetValue should fail")
	}
	v, _ := x.Value()
	if v.At(0, 0) != complex(1.5, 0) {
		t.Errorf("old value clobbered by failed SetValue: %v", v.At(0, 0))
	}
}

func TestSetValueElementType(t *testing.T) {
	a := NewArena()
	x := NewVariable(a, Scalar, vexity.NoSign, vexity.Continuous)
	err := x.SetValue(complex(1, 2))
	var convErr *TypeConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("complex into real variable: error = %v, want TypeConversionError", err)
	}
	// A complex value with zero imaginary part is representable.
	if err := x.SetValue(complex(1, 0)); err != nil {
		t.Errorf("real-valued complex literal rejected: %v", err)
	}

	z := NewVariable(a, Scalar, vexity.ComplexSign, vexity.Continuous)
	if err := z.SetValue(complex(1, 2)); err != nil {
		t.Errorf("complex variable rejected complex value: %v", err)
	}
}

func TestFixFreeRoundTrip(t *testing.T) {
	a := NewArena()
	x := NewVariable(a, Scalar, vexity.NoSign, vexity.Continuous)

	err := x.Fix()
	var notSet *ValueNotSetError
	if !errors.As(err, &notSet) {
		t.Fatalf("Fix on unset variable: error = %v, want ValueNotSetError", err)
	}

	if err := x.SetValue(2.0); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := x.Fix(); err != nil {
		t.Fatalf("Fix failed: %v", err)
	}
	if x.Vexity() != vexity.Constant {
		t.Errorf("fixed variable curvature = %s, want constant", x.Vexity())
	}

	// Free is unconditional and idempotent, and keeps the value.
	x.Free()
	if x.Vexity() != vexity.Affine {
		t.Errorf("freed variable curvature = %s, want affine", x.Vexity())
	}
	x.Free()
	if x.Vexity() != vexity.Affine {
		t.Errorf("double Free changed curvature to %s", x.Vexity())
	}
	if _, ok := x.Value(); !ok {
		t.Errorf("Free cleared the stored value")
	}
}

func TestFixTo(t *testing.T) {
	a := NewArena()
	x := NewVariable(a, Shape{Rows: 2, Cols: 1}, vexity.NoSign, vexity.Continuous)
	if err := x.FixTo([]float64{1, 2}); err != nil {
		t.Fatalf("FixTo failed: %v", err)
	}
	if x.Vexity() != vexity.Constant {
		t.Errorf("FixTo left curvature %s", x.Vexity())
	}
	if err := x.FixTo([]float64{1, 2, 3}); err == nil {
		t.Errorf("FixTo with wrong shape should fail")
	}
}

func TestEvaluateContract(t *testing.T) {
	a := NewArena()
	x := NewVariable(a, Scalar, vexity.NoSign, vexity.Continuous)

	_, err := x.Evaluate()
	var notSet *ValueNotSetError
	if !errors.As(err, &notSet) {
		t.Fatalf("Evaluate on unset variable: error = %v, want ValueNotSetError", err)
	}

	if err := x.SetValue(7.0); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	v, err := x.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if v.At(0, 0) != complex(7, 0) {
		t.Errorf("Evaluate = %v, want 7", v.At(0, 0))
	}
}

func TestSemidefiniteConstructors(t *testing.T) {
	a := NewArena()

	p, err := NewSemidefinite(a, 3, 3)
	if err != nil {
		t.Fatalf("NewSemidefinite(3,3) failed: %v", err)
	}
	if len(p.Constraints()) != 1 {
		t.Fatalf("semidefinite variable has %d attached constraints, want 1", len(p.Constraints()))
	}
	c := p.Constraints()[0]
	if c.Cone() != ConeSemidefinite {
		t.Errorf("attached cone = %s, want psd", c.Cone())
	}
	if c.Expr() != Node(p) {
		t.Errorf("attached constraint does not reference its own variable")
	}

	_, err = NewSemidefinite(a, 2, 3)
	var invalid *InvalidShapeError
	if !errors.As(err, &invalid) {
		t.Fatalf("NewSemidefinite(2,3): error = %v, want InvalidShapeError", err)
	}

	h, err := NewHermitianSemidefinite(a, 2)
	if err != nil {
		t.Fatalf("NewHermitianSemidefinite(2) failed: %v", err)
	}
	if h.Sign() != vexity.ComplexSign {
		t.Errorf("hermitian variable sign = %s, want complex", h.Sign())
	}
	if len(h.Constraints()) != 1 {
		t.Errorf("hermitian variable has %d attached constraints, want 1", len(h.Constraints()))
	}
}

func TestConstantSignInference(t *testing.T) {
	tests := []struct {
		name string
		data any
		want vexity.Sign
	}{
		{"all positive", []float64{1, 2}, vexity.Positive},
		{"all negative", []float64{-1, -2}, vexity.Negative},
		{"mixed", []float64{-1, 2}, vexity.NoSign},
		{"zero is both-compatible", []float64{0, 0}, vexity.Positive},
		{"complex", []complex128{complex(0, 1)}, vexity.ComplexSign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena()
			v, err := Convert(tt.data)
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			c := NewConstant(a, v)
			if c.Sign() != tt.want {
				t.Errorf("sign = %s, want %s", c.Sign(), tt.want)
			}
			if !c.Vexity().IsConstant() {
				t.Errorf("constant node curvature = %s", c.Vexity())
			}
			got, err := c.Evaluate()
			if err != nil || !got.Equal(v) {
				t.Errorf("Evaluate did not return the stored value (err=%v)", err)
			}
		})
	}
}
