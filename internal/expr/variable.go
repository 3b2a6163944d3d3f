package expr

import (
	"github.com/google/uuid"

	"github.com/cvxgo/cvxgo/internal/vexity"
)

// Variable is the decision-variable leaf of the expression DAG.
//
// Shape, sign and kind are fixed at construction. Curvature is Affine for a
// free variable and Constant while fixed. The value is assigned by the user
// or by the post-solve scatter step.
type Variable struct {
	id        NodeID
	session   uuid.UUID
	shape     Shape
	sign      vexity.Sign
	kind      vexity.VarKind
	curvature vexity.Curvature
	value     *Value

	// signConstraint is the derived cone constraint for a Positive or
	// Negative variable; nil otherwise. Compiled ahead of the attached list.
	signConstraint Constraint
	attached       []Constraint
}

// NewVariable allocates a fresh identity in the arena, registers the
// variable, then runs each constraint builder against it. The returned
// variable is immediately usable in expressions.
func NewVariable(a *Arena, shape Shape, sign vexity.Sign, kind vexity.VarKind, builders ...ConstraintBuilder) *Variable {
	v := &Variable{
		id:        a.NextID(),
		session:   a.Session(),
		shape:     shape,
		sign:      sign,
		kind:      kind,
		curvature: vexity.Affine,
	}
	a.Put(v)
	switch sign {
	case vexity.Positive:
		v.signConstraint = NewSignConstraint(a, v, ConeNonNegative)
	case vexity.Negative:
		v.signConstraint = NewSignConstraint(a, v, ConeNonPositive)
	}
	for _, build := range builders {
		v.attached = append(v.attached, build(v))
	}
	return v
}

// NewSemidefinite builds a variable carrying a positive-semidefinite side
// constraint. The requested shape must be square.
func NewSemidefinite(a *Arena, rows, cols int) (*Variable, error) {
	shape := Shape{Rows: rows, Cols: cols}
	if !shape.IsSquare() {
		return nil, NewInvalidShapeError(shape, "semidefinite variable must be square")
	}
	return NewVariable(a, shape, vexity.NoSign, vexity.Continuous, func(x *Variable) Constraint {
		return NewSemidefiniteConstraint(a, x)
	}), nil
}

// NewHermitianSemidefinite builds a complex variable constrained to the cone
// of Hermitian positive-semidefinite matrices.
func NewHermitianSemidefinite(a *Arena, n int) (*Variable, error) {
	shape := Shape{Rows: n, Cols: n}
	if n < 1 {
		return nil, NewInvalidShapeError(shape, "hermitian semidefinite variable needs a positive side")
	}
	return NewVariable(a, shape, vexity.ComplexSign, vexity.Continuous, func(x *Variable) Constraint {
		return NewSemidefiniteConstraint(a, x)
	}), nil
}

func (v *Variable) ID() NodeID                { return v.id }
func (v *Variable) Session() uuid.UUID        { return v.session }
func (v *Variable) Shape() Shape              { return v.shape }
func (v *Variable) Vexity() vexity.Curvature  { return v.curvature }
func (v *Variable) Sign() vexity.Sign         { return v.sign }
func (v *Variable) Kind() vexity.VarKind      { return v.kind }
func (v *Variable) Constraints() []Constraint { return v.attached }

// SignConstraint returns the derived cone constraint for a signed variable,
// or nil when the sign imposes nothing (NoSign, ComplexSign).
func (v *Variable) SignConstraint() Constraint { return v.signConstraint }

// Value returns the stored value, if any.
func (v *Variable) Value() (*Value, bool) {
	if v.value == nil {
		return nil, false
	}
	return v.value, true
}

// SetValue converts val to the variable's element type and stores it. The
// converted shape must match exactly; a column-vector variable additionally
// accepts a one-dimensional sequence of matching length. On failure the
// stored value is left unchanged.
func (v *Variable) SetValue(val any) error {
	converted, err := Convert(val)
	if err != nil {
		return err
	}
	if converted.Shape() != v.shape {
		return NewShapeMismatchError(v.shape, converted.Shape())
	}
	if !v.sign.IsComplex() && !converted.IsReal() {
		return NewTypeConversionError("complex value assigned to a real variable")
	}
	v.value = converted
	return nil
}

// Fix holds the variable at its current value: curvature becomes Constant.
// Requires a previously set value.
func (v *Variable) Fix() error {
	if v.value == nil {
		return NewValueNotSetError(v.id)
	}
	v.curvature = vexity.Constant
	return nil
}

// FixTo assigns val and fixes the variable.
func (v *Variable) FixTo(val any) error {
	if err := v.SetValue(val); err != nil {
		return err
	}
	return v.Fix()
}

// Free resets curvature to Affine. Idempotent; the stored value is kept.
func (v *Variable) Free() {
	v.curvature = vexity.Affine
}

// Evaluate returns the stored value or fails with ValueNotSet.
func (v *Variable) Evaluate() (*Value, error) {
	if v.value == nil {
		return nil, NewValueNotSetError(v.id)
	}
	return v.value, nil
}
