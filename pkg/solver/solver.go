// Package solver defines the boundary between the modeling core and an
// external conic solver: the standard-form cone program handed over, the
// result handed back, and a dynamic gRPC client for remote solver services.
package solver

import (
	"context"

	"github.com/google/uuid"
)

// Coefficient is one explicit entry of the stacked constraint matrix.
type Coefficient struct {
	Row int
	Col int
	Val float64
}

// Cone is one block of the product cone the constraint rows live in, in row
// order.
type Cone struct {
	// Kind is the cone name: "nonneg", "nonpos", "zero" or "psd".
	Kind string
	// Dim is the number of rows the block spans.
	Dim int
	// Side is the matrix side length for "psd" blocks, zero otherwise.
	Side int
}

// Span is a variable's column block within the stacked decision vector.
type Span struct {
	Start int
	Len   int
}

// ConeProgram is the conic-standard-form problem
//
//	minimize  c'x + d
//	s.t.      Ax + b ∈ K
//
// with K the product of Cones. It is pure data: nothing here assumes a
// particular solver identity or capability.
type ConeProgram struct {
	// ID ties the program back to the session that stuffed it.
	ID uuid.UUID

	NumVars         int
	Objective       []float64 // c, length NumVars
	ObjectiveOffset float64   // d

	A      []Coefficient
	Offset []float64 // b
	Cones  []Cone

	// Columns maps variable identity (arena index) to its column block,
	// for scattering a solution back through the registry.
	Columns map[int64]Span

	// Integers and Binaries list column indices with integrality
	// requirements.
	Integers []int
	Binaries []int
}

// Rows returns the total number of constraint rows.
func (p *ConeProgram) Rows() int { return len(p.Offset) }

// Status is the disposition an external solver reports.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// ParseStatus maps a solver-reported status string onto Status. Unrecognized
// strings map to StatusUnknown rather than failing; the caller decides how
// much to trust the solver.
func ParseStatus(s string) Status {
	switch s {
	case "optimal", "OPTIMAL", "solved":
		return StatusOptimal
	case "infeasible", "INFEASIBLE":
		return StatusInfeasible
	case "unbounded", "UNBOUNDED":
		return StatusUnbounded
	default:
		return StatusUnknown
	}
}

// Result is a solver's answer to one ConeProgram.
type Result struct {
	Status    Status
	Objective float64
	// X is the primal solution, length ConeProgram.NumVars.
	X []float64
}

// Solver hands a stuffed program to an external conic solver.
type Solver interface {
	Solve(ctx context.Context, p *ConeProgram) (*Result, error)
}
