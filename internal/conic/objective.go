// Package conic lowers verified expression DAGs into sparse linear maps from
// decision variables to conic coefficients, memoizing per-node results so
// shared subexpressions are compiled once per pass.
package conic

import (
	"fmt"

	"github.com/cvxgo/cvxgo/internal/expr"
	"github.com/cvxgo/cvxgo/internal/sparse"
)

// Entry is one variable's contribution to an objective: a pair of sparse
// matrices, the real and imaginary parts of the coefficient block. Both are
// (expression length × variable length); the constant entry is a column.
type Entry struct {
	Re *sparse.Matrix
	Im *sparse.Matrix
}

// Objective is the linear contribution of one expression: how its flattened
// value depends affinely on each variable, plus a constant offset under
// expr.ConstantID. Entries are written once and never mutated.
type Objective struct {
	length int
	terms  map[expr.NodeID]Entry
}

func NewObjective(length int) *Objective {
	return &Objective{length: length, terms: make(map[expr.NodeID]Entry)}
}

// Length is the flattened length of the expression this objective describes.
func (o *Objective) Length() int { return o.length }

// Set writes the entry for id. Rewriting an existing entry is a compiler bug.
func (o *Objective) Set(id expr.NodeID, e Entry) {
	if _, ok := o.terms[id]; ok {
		panic(fmt.Sprintf("conic: objective entry for node %d written twice", id))
	}
	if e.Re.Rows() != o.length || e.Im.Rows() != o.length {
		panic(fmt.Sprintf("conic: entry for node %d has %d/%d rows, objective length %d",
			id, e.Re.Rows(), e.Im.Rows(), o.length))
	}
	o.terms[id] = e
}

// Entry returns the stored contribution for id.
func (o *Objective) Entry(id expr.NodeID) (Entry, bool) {
	e, ok := o.terms[id]
	return e, ok
}

// Terms returns the contribution table. Callers must treat it as read-only.
func (o *Objective) Terms() map[expr.NodeID]Entry { return o.terms }

// VariableIDs returns the contributing variable identities, excluding the
// constant key, in unspecified order.
func (o *Objective) VariableIDs() []expr.NodeID {
	ids := make([]expr.NodeID, 0, len(o.terms))
	for id := range o.terms {
		if id != expr.ConstantID {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsConstant reports whether the objective has no variable contributions.
func (o *Objective) IsConstant() bool {
	return len(o.VariableIDs()) == 0
}
