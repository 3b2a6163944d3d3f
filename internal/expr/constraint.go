package expr

// coneConstraint restricts an expression to a single cone. All of the
// concrete constraint kinds below share it.
type coneConstraint struct {
	id   NodeID
	expr Node
	cone ConeKind
}

func (c *coneConstraint) ID() NodeID     { return c.id }
func (c *coneConstraint) Expr() Node     { return c.expr }
func (c *coneConstraint) Cone() ConeKind { return c.cone }

// NewSignConstraint restricts x element-wise to the non-negative or
// non-positive orthant. Derived from Positive/Negative variable signs and
// also usable as an explicit problem constraint.
func NewSignConstraint(a *Arena, x Node, cone ConeKind) Constraint {
	return &coneConstraint{id: a.NextID(), expr: x, cone: cone}
}

// NewZeroConstraint restricts x element-wise to zero (an equality
// constraint in conic standard form).
func NewZeroConstraint(a *Arena, x Node) Constraint {
	return &coneConstraint{id: a.NextID(), expr: x, cone: ConeZero}
}

// NewSemidefiniteConstraint restricts a square expression to the
// positive-semidefinite cone.
func NewSemidefiniteConstraint(a *Arena, x Node) Constraint {
	return &coneConstraint{id: a.NextID(), expr: x, cone: ConeSemidefinite}
}
