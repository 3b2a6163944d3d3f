package cvx

import (
	"fmt"

	"github.com/cvxgo/cvxgo/internal/expr"
	"github.com/cvxgo/cvxgo/pkg/solver"
)

// Apply scatters a solver result back onto this session's variables: for
// every column block of the program, the matching slice of the primal vector
// is reshaped and stored through the registry.
func (s *Session) Apply(prog *solver.ConeProgram, res *solver.Result) error {
	if prog.ID != s.id {
		return fmt.Errorf("program %s was stuffed by another session", prog.ID)
	}
	if len(res.X) != prog.NumVars {
		return fmt.Errorf("solution length %d does not match %d program columns", len(res.X), prog.NumVars)
	}

	for raw, span := range prog.Columns {
		v, ok := s.Lookup(expr.NodeID(raw))
		if !ok {
			return fmt.Errorf("variable %d is not in this session's registry", raw)
		}
		data := make([]complex128, span.Len)
		for i := 0; i < span.Len; i++ {
			data[i] = complex(res.X[span.Start+i], 0)
		}
		val, err := expr.NewValue(v.Shape(), data)
		if err != nil {
			return err
		}
		if err := v.SetValue(val); err != nil {
			return fmt.Errorf("scattering onto variable %d: %w", raw, err)
		}
	}
	return nil
}
