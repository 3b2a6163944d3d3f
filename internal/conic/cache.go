package conic

import (
	"github.com/google/uuid"

	"github.com/cvxgo/cvxgo/internal/expr"
)

// ConicConstraint is a compiled side constraint: the objective of the
// constrained expression and the cone it must lie in. Shape is retained so
// problem assembly can recover matrix cones.
type ConicConstraint struct {
	Objective *Objective
	Cone      expr.ConeKind
	Shape     expr.Shape
}

// Cache memoizes one compilation pass. It maps node identity to the node's
// computed objective and accumulates the side constraints discovered during
// the walk. A cache must not outlive its pass: reusing one after a Fix or
// Free mutation returns stale contributions, and sharing one across
// goroutines is undefined.
type Cache struct {
	session     uuid.UUID
	forms       map[expr.NodeID]*Objective
	constraints []*ConicConstraint
	compiled    map[expr.NodeID]bool // constraint identities already lowered
}

// NewCache builds an empty cache tagged with the owning session's identity.
func NewCache(session uuid.UUID) *Cache {
	return &Cache{
		session:  session,
		forms:    make(map[expr.NodeID]*Objective),
		compiled: make(map[expr.NodeID]bool),
	}
}

// Session returns the identity of the session this cache belongs to.
func (c *Cache) Session() uuid.UUID { return c.session }

// Lookup returns the memoized objective for a node, if present.
func (c *Cache) Lookup(id expr.NodeID) (*Objective, bool) {
	o, ok := c.forms[id]
	return o, ok
}

func (c *Cache) put(id expr.NodeID, o *Objective) {
	c.forms[id] = o
}

// Constraints returns the side constraints accumulated so far, in discovery
// order.
func (c *Cache) Constraints() []*ConicConstraint { return c.constraints }

// Len returns the number of memoized objectives.
func (c *Cache) Len() int { return len(c.forms) }

func (c *Cache) hasConstraint(id expr.NodeID) bool { return c.compiled[id] }

func (c *Cache) markConstraint(id expr.NodeID) { c.compiled[id] = true }

func (c *Cache) addConstraint(cc *ConicConstraint) { c.constraints = append(c.constraints, cc) }
