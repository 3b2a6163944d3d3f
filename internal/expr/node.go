// Package expr defines the expression DAG the conic-form compiler walks:
// node identities, shapes, values, the Variable and Constant leaves, and the
// constraint objects a node may carry.
package expr

import (
	"fmt"

	"github.com/cvxgo/cvxgo/internal/vexity"
)

// NodeID is the integer handle of a node within its arena. IDs are the sole
// key into the memoization cache and the variable registry.
type NodeID int64

// ConstantID is the distinguished key a conic objective uses for its
// constant offset. Arenas never assign it to a node.
const ConstantID NodeID = 0

// Shape is the fixed (rows, cols) extent of a node. A scalar is 1x1, a
// column vector n x 1.
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Rows, s.Cols) }

// Len returns the flattened length rows*cols.
func (s Shape) Len() int { return s.Rows * s.Cols }

func (s Shape) IsSquare() bool { return s.Rows == s.Cols }

// Scalar is the shape of a scalar expression.
var Scalar = Shape{Rows: 1, Cols: 1}

// Node is the capability set the conic-form compiler requires of every
// expression. Variable and Constant are the leaf cases; composite atoms add
// child lists and their own curvature composition on top of this interface.
type Node interface {
	ID() NodeID
	Shape() Shape
	Vexity() vexity.Curvature
	Sign() vexity.Sign

	// Evaluate returns the node's numeric value. For nodes with Constant
	// curvature this must not fail for want of a value.
	Evaluate() (*Value, error)

	// Constraints returns the side constraints imposed whenever the node
	// appears in a problem, in attachment order.
	Constraints() []Constraint
}

// ConeKind names the cone a constraint restricts its expression to.
type ConeKind int

const (
	ConeNonNegative ConeKind = iota
	ConeNonPositive
	ConeZero
	ConeSemidefinite
)

func (k ConeKind) String() string {
	switch k {
	case ConeNonNegative:
		return "nonneg"
	case ConeNonPositive:
		return "nonpos"
	case ConeZero:
		return "zero"
	case ConeSemidefinite:
		return "psd"
	default:
		return "invalid"
	}
}

// Constraint restricts an expression to a cone. Constraints carry their own
// identity so the compiler can deduplicate them within a pass.
type Constraint interface {
	ID() NodeID
	Expr() Node
	Cone() ConeKind
}

// ConstraintBuilder produces a constraint against a variable under
// construction. It runs exactly once, after the variable's identity and
// shape are finalized but before the constructor returns.
type ConstraintBuilder func(*Variable) Constraint
