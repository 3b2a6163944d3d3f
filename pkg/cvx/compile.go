package cvx

import (
	"fmt"
	"sort"

	"github.com/cvxgo/cvxgo/internal/conic"
	"github.com/cvxgo/cvxgo/internal/expr"
	"github.com/cvxgo/cvxgo/internal/vexity"
	"github.com/cvxgo/cvxgo/pkg/solver"
)

// Compile lowers a scalar objective and any explicit constraints into a
// conic-standard-form program. Each call uses a fresh cache, so Fix/Free
// mutations between calls are always observed.
//
// Only real-valued programs are exported: reformulating complex conic data
// into solver-native real cones is a bridging concern outside this layer.
func (s *Session) Compile(objective Node, constraints ...Constraint) (*solver.ConeProgram, error) {
	if objective.Shape() != expr.Scalar {
		return nil, expr.NewInvalidShapeError(objective.Shape(), "objective must be scalar")
	}
	if !objective.Vexity().IsConvex() {
		return nil, fmt.Errorf("objective curvature %s violates the DCP rules for minimization", objective.Vexity())
	}

	cache := conic.NewCache(s.id)
	obj, err := conic.Compile(objective, cache)
	if err != nil {
		return nil, err
	}
	for _, c := range constraints {
		if err := conic.CompileConstraint(c, cache); err != nil {
			return nil, err
		}
	}

	columns, numVars, err := s.assignColumns(obj, cache.Constraints())
	if err != nil {
		return nil, err
	}

	prog := &solver.ConeProgram{
		ID:        s.id,
		NumVars:   numVars,
		Objective: make([]float64, numVars),
		Columns:   make(map[int64]solver.Span, len(columns)),
	}
	for id, span := range columns {
		prog.Columns[int64(id)] = span
	}

	if err := fillObjective(prog, obj, columns); err != nil {
		return nil, err
	}
	if err := fillConstraints(prog, cache.Constraints(), columns); err != nil {
		return nil, err
	}
	s.markIntegrality(prog, columns)
	return prog, nil
}

// assignColumns gives every contributing free variable a column block,
// ordered by identity for determinism.
func (s *Session) assignColumns(obj *conic.Objective, sides []*conic.ConicConstraint) (map[expr.NodeID]solver.Span, int, error) {
	seen := make(map[expr.NodeID]bool)
	for _, id := range obj.VariableIDs() {
		seen[id] = true
	}
	for _, side := range sides {
		for _, id := range side.Objective.VariableIDs() {
			seen[id] = true
		}
	}

	ids := make([]expr.NodeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	columns := make(map[expr.NodeID]solver.Span, len(ids))
	offset := 0
	for _, id := range ids {
		v, ok := s.Lookup(id)
		if !ok {
			return nil, 0, fmt.Errorf("node %d contributed to the program but is not in this session's registry", id)
		}
		n := v.Shape().Len()
		columns[id] = solver.Span{Start: offset, Len: n}
		offset += n
	}
	return columns, offset, nil
}

func fillObjective(prog *solver.ConeProgram, obj *conic.Objective, columns map[expr.NodeID]solver.Span) error {
	for id, entry := range obj.Terms() {
		if !entry.Im.IsZero() {
			return fmt.Errorf("complex objective contributions are not exportable without a bridge")
		}
		if id == expr.ConstantID {
			for _, t := range entry.Re.Triplets() {
				prog.ObjectiveOffset += t.Val
			}
			continue
		}
		span := columns[id]
		for _, t := range entry.Re.Triplets() {
			prog.Objective[span.Start+t.Col] += t.Val
		}
	}
	return nil
}

func fillConstraints(prog *solver.ConeProgram, sides []*conic.ConicConstraint, columns map[expr.NodeID]solver.Span) error {
	rowOffset := 0
	for _, side := range sides {
		m := side.Objective.Length()
		prog.Offset = append(prog.Offset, make([]float64, m)...)
		for id, entry := range side.Objective.Terms() {
			if !entry.Im.IsZero() {
				return fmt.Errorf("complex %s constraint is not exportable without a bridge", side.Cone)
			}
			if id == expr.ConstantID {
				for _, t := range entry.Re.Triplets() {
					prog.Offset[rowOffset+t.Row] += t.Val
				}
				continue
			}
			span := columns[id]
			for _, t := range entry.Re.Triplets() {
				prog.A = append(prog.A, solver.Coefficient{
					Row: rowOffset + t.Row,
					Col: span.Start + t.Col,
					Val: t.Val,
				})
			}
		}

		cone := solver.Cone{Kind: side.Cone.String(), Dim: m}
		if side.Cone == expr.ConeSemidefinite {
			cone.Side = side.Shape.Rows
		}
		prog.Cones = append(prog.Cones, cone)
		rowOffset += m
	}
	return nil
}

func (s *Session) markIntegrality(prog *solver.ConeProgram, columns map[expr.NodeID]solver.Span) {
	for id, span := range columns {
		v, ok := s.Lookup(id)
		if !ok {
			continue
		}
		switch v.Kind() {
		case vexity.Integer:
			for col := span.Start; col < span.Start+span.Len; col++ {
				prog.Integers = append(prog.Integers, col)
			}
		case vexity.Binary:
			for col := span.Start; col < span.Start+span.Len; col++ {
				prog.Binaries = append(prog.Binaries, col)
			}
		}
	}
	sort.Ints(prog.Integers)
	sort.Ints(prog.Binaries)
}
