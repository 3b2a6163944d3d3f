package expr

import (
	"github.com/google/uuid"

	"github.com/cvxgo/cvxgo/internal/vexity"
)

// Constant is the literal leaf of the expression DAG.
type Constant struct {
	id      NodeID
	session uuid.UUID
	value   *Value
	sign    vexity.Sign
}

// NewConstant registers a literal in the arena. The sign is inferred from
// the data: complex if any imaginary part is non-zero, positive or negative
// when every element agrees, NoSign otherwise.
func NewConstant(a *Arena, value *Value) *Constant {
	c := &Constant{id: a.NextID(), session: a.Session(), value: value, sign: inferSign(value)}
	a.Put(c)
	return c
}

func inferSign(v *Value) vexity.Sign {
	if !v.IsReal() {
		return vexity.ComplexSign
	}
	allNonNeg, allNonPos := true, true
	for _, re := range v.FlattenRe() {
		if re < 0 {
			allNonNeg = false
		}
		if re > 0 {
			allNonPos = false
		}
	}
	switch {
	case allNonNeg:
		return vexity.Positive
	case allNonPos:
		return vexity.Negative
	default:
		return vexity.NoSign
	}
}

func (c *Constant) ID() NodeID                { return c.id }
func (c *Constant) Session() uuid.UUID        { return c.session }
func (c *Constant) Shape() Shape              { return c.value.Shape() }
func (c *Constant) Vexity() vexity.Curvature  { return vexity.Constant }
func (c *Constant) Sign() vexity.Sign         { return c.sign }
func (c *Constant) Constraints() []Constraint { return nil }

func (c *Constant) Evaluate() (*Value, error) { return c.value, nil }
